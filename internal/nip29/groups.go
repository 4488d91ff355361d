package nip29

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
	"github.com/nostr-rly/relay/internal/wire"
)

// HandleCreateGroup handles kind:9007 -- create a group using the h-tag id,
// or a fresh unique id if absent; name comes from content; sender becomes
// creator/admin. No authorization is required to create a group.
func HandleCreateGroup(store group.Store, e *nostr.Event) []string {
	groupID, ok := e.GetTagValue("h")
	if !ok || groupID == "" {
		groupID = uuid.NewString()
	}

	if err := store.CreateGroup(groupID, e.Content, e.PubKey); err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}

	return []string{wire.OK(e.ID, true, "")}
}

// HandleDeleteGroup handles kind:9008 -- delete a group. Sender must be an
// admin of that group.
func HandleDeleteGroup(store group.Store, e *nostr.Event) []string {
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

	if err := store.DeleteGroup(groupID); err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}

	return []string{wire.OK(e.ID, true, "")}
}
