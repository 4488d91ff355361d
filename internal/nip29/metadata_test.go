package nip29

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
)

func testIdentity(t *testing.T) *nostr.Identity {
	t.Helper()
	id, err := nostr.NewIdentity("", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}
	return id
}

func TestGenerateGroupMetadata(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	s.SetGroupAttrs("g1", true, false)
	id := testIdentity(t)

	e, err := GenerateGroupMetadata(s, id, "g1")
	if err != nil {
		t.Fatalf("GenerateGroupMetadata: %v", err)
	}
	if e.Kind != 39000 {
		t.Errorf("Kind = %d, want 39000", e.Kind)
	}
	if !nostr.Verify(e) {
		t.Error("generated metadata event should verify under the relay identity")
	}
	if dTag, ok := e.GetTagValue("d"); !ok || dTag != "g1" {
		t.Errorf("d tag = %q, %v, want g1, true", dTag, ok)
	}
	hasPrivate := false
	for _, tag := range e.Tags {
		if len(tag) >= 1 && tag[0] == "private" {
			hasPrivate = true
		}
	}
	if !hasPrivate {
		t.Error("expected a private tag for a private group")
	}
}

func TestGenerateGroupMetadata_UnknownGroup(t *testing.T) {
	s := group.NewMemoryStore()
	id := testIdentity(t)

	e, err := GenerateGroupMetadata(s, id, "nope")
	if err != nil {
		t.Fatalf("GenerateGroupMetadata: %v", err)
	}
	if e != nil {
		t.Errorf("GenerateGroupMetadata(unknown) = %+v, want nil", e)
	}
}

func TestGenerateGroupAdmins(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	id := testIdentity(t)

	e, err := GenerateGroupAdmins(s, id, "g1")
	if err != nil {
		t.Fatalf("GenerateGroupAdmins: %v", err)
	}
	if e.Kind != 39001 {
		t.Errorf("Kind = %d, want 39001", e.Kind)
	}
	found := false
	for _, pk := range e.TagValues("p") {
		if pk == "admin1" {
			found = true
		}
	}
	if !found {
		t.Error("expected a p tag for admin1")
	}
}

func TestGenerateGroupMembers(t *testing.T) {
	s := group.NewMemoryStore()
	s.CreateGroup("g1", "My Group", "admin1")
	s.AddMember("g1", "member1")
	id := testIdentity(t)

	e, err := GenerateGroupMembers(s, id, "g1")
	if err != nil {
		t.Fatalf("GenerateGroupMembers: %v", err)
	}
	if e.Kind != 39002 {
		t.Errorf("Kind = %d, want 39002", e.Kind)
	}
	members := e.TagValues("p")
	if len(members) != 2 {
		t.Errorf("GenerateGroupMembers p tags = %v, want 2 entries", members)
	}
}
