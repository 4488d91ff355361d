package nip29

import (
	"encoding/json"
	"fmt"

	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
)

// groupContent is the JSON payload carried in a kind:39000 event's content.
type groupContent struct {
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	About   string `json:"about,omitempty"`
}

// GenerateGroupMetadata produces a kind:39000 "group metadata" event
// signed under the relay identity, or nil if the group does not exist.
func GenerateGroupMetadata(store group.Store, identity *nostr.Identity, groupID string) (*nostr.Event, error) {
	g, err := store.GetGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return nil, nil
	}

	tags := [][]string{{"d", groupID}}
	if g.IsPrivate {
		tags = append(tags, []string{"private"})
	}
	if g.IsClosed {
		tags = append(tags, []string{"closed"})
	}

	content, err := json.Marshal(groupContent{Name: g.Name, Picture: g.Picture, About: g.About})
	if err != nil {
		return nil, fmt.Errorf("marshal group content: %w", err)
	}

	return identity.SignEvent(39000, tags, string(content))
}

// GenerateGroupAdmins produces a kind:39001 "group admins" event: one p-tag
// per admin pubkey.
func GenerateGroupAdmins(store group.Store, identity *nostr.Identity, groupID string) (*nostr.Event, error) {
	admins, err := store.GetAdmins(groupID)
	if err != nil {
		return nil, fmt.Errorf("get admins: %w", err)
	}

	tags := [][]string{{"d", groupID}}
	for _, pubkey := range admins {
		tags = append(tags, []string{"p", pubkey, "admin"})
	}

	return identity.SignEvent(39001, tags, "")
}

// GenerateGroupMembers produces a kind:39002 "group members" event: one
// p-tag per member pubkey.
func GenerateGroupMembers(store group.Store, identity *nostr.Identity, groupID string) (*nostr.Event, error) {
	members, err := store.GetMembers(groupID)
	if err != nil {
		return nil, fmt.Errorf("get members: %w", err)
	}

	tags := [][]string{{"d", groupID}}
	for _, pubkey := range members {
		tags = append(tags, []string{"p", pubkey})
	}

	return identity.SignEvent(39002, tags, "")
}
