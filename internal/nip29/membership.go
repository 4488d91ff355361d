package nip29

import (
	"fmt"

	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
	"github.com/nostr-rly/relay/internal/wire"
)

// HandleJoinRequest handles kind:9021. Open groups auto-add the sender;
// closed groups acknowledge as pending without a durable request record;
// unknown groups are rejected.
func HandleJoinRequest(store group.Store, e *nostr.Event) []string {
	groupID, ok := e.GetTagValue("h")
	if !ok {
		return []string{wire.OK(e.ID, false, "missing h tag")}
	}

	g, err := store.GetGroup(groupID)
	if err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}
	if g == nil {
		return []string{wire.OK(e.ID, false, "group not found")}
	}

	if g.IsClosed {
		return []string{wire.OK(e.ID, true, "join request pending")}
	}

	if err := store.AddMember(groupID, e.PubKey); err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}
	return []string{wire.OK(e.ID, true, "")}
}

// HandleLeave handles kind:9022 -- remove the sender as a member of the
// h-tagged group. No authorization required.
func HandleLeave(store group.Store, e *nostr.Event) []string {
	groupID, ok := e.GetTagValue("h")
	if !ok {
		return []string{wire.OK(e.ID, false, "missing h tag")}
	}

	if err := store.RemoveMember(groupID, e.PubKey); err != nil {
		return []string{wire.OK(e.ID, false, fmt.Sprintf("error: %s", err))}
	}
	return []string{wire.OK(e.ID, true, "")}
}
