package nip29

import (
	"encoding/json"
	"testing"

	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
)

// okAccepted unpacks an ["OK", id, accepted, message] frame's accepted flag.
func okAccepted(t *testing.T, frame string) bool {
	t.Helper()
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(frame), &parts); err != nil || len(parts) != 4 {
		t.Fatalf("malformed OK frame: %s", frame)
	}
	var accepted bool
	if err := json.Unmarshal(parts[2], &accepted); err != nil {
		t.Fatalf("malformed OK accepted field: %s", frame)
	}
	return accepted
}

func TestHandlePutUser_RequiresAdmin(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	s.AddMember("g1", "nonadmin1")

	e := &nostr.Event{ID: "ev1", PubKey: "nonadmin1", Tags: [][]string{{"h", "g1"}, {"p", "target1"}}}
	frames := HandlePutUser(s, e)
	if len(frames) != 1 || okAccepted(t, frames[0]) {
		t.Errorf("HandlePutUser by non-admin should be rejected, got %v", frames)
	}
}

func TestHandlePutUser_AddsMembers(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")

	e := &nostr.Event{ID: "ev1", PubKey: "admin1", Tags: [][]string{{"h", "g1"}, {"p", "target1"}, {"p", "target2"}}}
	frames := HandlePutUser(s, e)
	if len(frames) != 1 || !okAccepted(t, frames[0]) {
		t.Fatalf("HandlePutUser by admin should succeed, got %v", frames)
	}

	for _, pk := range []string{"target1", "target2"} {
		if isMember, _ := s.IsMember("g1", pk); !isMember {
			t.Errorf("%s should be a member after HandlePutUser", pk)
		}
	}
}

func TestHandlePutUser_MissingHTag(t *testing.T) {
	s := group.NewMemoryStore()
	e := &nostr.Event{ID: "ev1", PubKey: "admin1"}
	frames := HandlePutUser(s, e)
	if len(frames) != 1 || okAccepted(t, frames[0]) {
		t.Errorf("HandlePutUser without h tag should be rejected, got %v", frames)
	}
}

func TestHandleRemoveUser_RequiresAdmin(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	s.AddMember("g1", "target1")

	e := &nostr.Event{ID: "ev1", PubKey: "target1", Tags: [][]string{{"h", "g1"}, {"p", "target1"}}}
	frames := HandleRemoveUser(s, e)
	if len(frames) != 1 || okAccepted(t, frames[0]) {
		t.Errorf("HandleRemoveUser by non-admin should be rejected, got %v", frames)
	}
	if isMember, _ := s.IsMember("g1", "target1"); !isMember {
		t.Error("target1 should remain a member after a rejected removal")
	}
}

func TestHandleCreateGroup_GeneratesIDWhenMissing(t *testing.T) {
	s := group.NewMemoryStore()
	e := &nostr.Event{ID: "ev1", PubKey: "creator1", Content: "My Group"}
	frames := HandleCreateGroup(s, e)
	if len(frames) != 1 || !okAccepted(t, frames[0]) {
		t.Fatalf("HandleCreateGroup should succeed, got %v", frames)
	}
}

func TestHandleCreateGroup_UsesHTagWhenPresent(t *testing.T) {
	s := group.NewMemoryStore()
	e := &nostr.Event{ID: "ev1", PubKey: "creator1", Content: "My Group", Tags: [][]string{{"h", "fixed-id"}}}
	frames := HandleCreateGroup(s, e)
	if len(frames) != 1 || !okAccepted(t, frames[0]) {
		t.Fatalf("HandleCreateGroup should succeed, got %v", frames)
	}
	g, _ := s.GetGroup("fixed-id")
	if g == nil {
		t.Error("expected group stored under the provided h tag")
	}
	if isAdmin, _ := s.IsAdmin("fixed-id", "creator1"); !isAdmin {
		t.Error("creator should be admin of the new group")
	}
}

func TestHandleDeleteGroup_RequiresAdmin(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")

	e := &nostr.Event{ID: "ev1", PubKey: "intruder1", Tags: [][]string{{"h", "g1"}}}
	frames := HandleDeleteGroup(s, e)
	if len(frames) != 1 || okAccepted(t, frames[0]) {
		t.Errorf("HandleDeleteGroup by non-admin should be rejected, got %v", frames)
	}
	if g, _ := s.GetGroup("g1"); g == nil {
		t.Error("group should survive a rejected delete")
	}
}

func TestHandleJoinRequest_OpenGroupAddsMember(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")

	e := &nostr.Event{ID: "ev1", PubKey: "joiner1", Tags: [][]string{{"h", "g1"}}}
	frames := HandleJoinRequest(s, e)
	if len(frames) != 1 || !okAccepted(t, frames[0]) {
		t.Fatalf("HandleJoinRequest on open group should succeed, got %v", frames)
	}
	if isMember, _ := s.IsMember("g1", "joiner1"); !isMember {
		t.Error("joiner1 should be a member of an open group after joining")
	}
}

func TestHandleJoinRequest_ClosedGroupPendsWithoutMembership(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	s.SetGroupAttrs("g1", false, true)

	e := &nostr.Event{ID: "ev1", PubKey: "joiner1", Tags: [][]string{{"h", "g1"}}}
	frames := HandleJoinRequest(s, e)
	if len(frames) != 1 || !okAccepted(t, frames[0]) {
		t.Fatalf("HandleJoinRequest on closed group should still OK as pending, got %v", frames)
	}
	if isMember, _ := s.IsMember("g1", "joiner1"); isMember {
		t.Error("joiner1 should not be a member while a closed-group join is pending")
	}
}

func TestHandleJoinRequest_UnknownGroupRejected(t *testing.T) {
	s := group.NewMemoryStore()
	e := &nostr.Event{ID: "ev1", PubKey: "joiner1", Tags: [][]string{{"h", "nope"}}}
	frames := HandleJoinRequest(s, e)
	if len(frames) != 1 || okAccepted(t, frames[0]) {
		t.Errorf("HandleJoinRequest on unknown group should be rejected, got %v", frames)
	}
}

func TestHandleLeave_RemovesMembershipNoAuthRequired(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	s.AddMember("g1", "member1")

	e := &nostr.Event{ID: "ev1", PubKey: "member1", Tags: [][]string{{"h", "g1"}}}
	frames := HandleLeave(s, e)
	if len(frames) != 1 || !okAccepted(t, frames[0]) {
		t.Fatalf("HandleLeave should succeed, got %v", frames)
	}
	if isMember, _ := s.IsMember("g1", "member1"); isMember {
		t.Error("member1 should no longer be a member after leaving")
	}
}
