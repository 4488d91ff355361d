// Package nip29 implements the kind-dispatched NIP-29 group management
// side-effects: put/remove user, create/delete group, join, leave, and the
// metadata generators.
package nip29

import (
	"fmt"

	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
	"github.com/nostr-rly/relay/internal/wire"
)

// HandlePutUser handles kind:9000 -- add every p-tagged pubkey to the
// h-tagged group. Sender must already be an admin of that group.
func HandlePutUser(store group.Store, e *nostr.Event) []string {
	groupID, ok := e.GetTagValue("h")
	if !ok {
		return []string{wire.OK(e.ID, false, "missing h tag")}
	}

	isAdmin, err := store.IsAdmin(groupID, e.PubKey)
	if err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}
	if !isAdmin {
		return []string{wire.OK(e.ID, false, "not authorized")}
	}

	targets := e.TagValues("p")
	for _, pubkey := range targets {
		if err := store.AddMember(groupID, pubkey); err != nil {
			return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
		}
	}

	return []string{wire.OK(e.ID, true, "")}
}

// HandleRemoveUser handles kind:9001 -- remove every p-tagged pubkey from
// the h-tagged group. Sender must already be an admin of that group.
func HandleRemoveUser(store group.Store, e *nostr.Event) []string {
	groupID, ok := e.GetTagValue("h")
	if !ok {
		return []string{wire.OK(e.ID, false, "missing h tag")}
	}

	isAdmin, err := store.IsAdmin(groupID, e.PubKey)
	if err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}
	if !isAdmin {
		return []string{wire.OK(e.ID, false, "not authorized")}
	}

	targets := e.TagValues("p")
	for _, pubkey := range targets {
		if err := store.RemoveMember(groupID, pubkey); err != nil {
			return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
		}
	}

	return []string{wire.OK(e.ID, true, "")}
}
