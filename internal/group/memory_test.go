package group

import "testing"

func TestMemoryStore_CreateGroupMakesCreatorAdmin(t *testing.T) {
	s := NewMemoryStore()
	if err := s.CreateGroup("g1", "My Group", "creator1"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	isAdmin, err := s.IsAdmin("g1", "creator1")
	if err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if !isAdmin {
		t.Error("creator should be admin after CreateGroup")
	}

	isMember, err := s.IsMember("g1", "creator1")
	if err != nil {
		t.Fatalf("IsMember: %v", err)
	}
	if !isMember {
		t.Error("creator should be a member after CreateGroup")
	}
}

func TestMemoryStore_AddRemoveMember(t *testing.T) {
	s := NewMemoryStore()
	s.CreateGroup("g1", "My Group", "creator1")

	if err := s.AddMember("g1", "member1"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if isMember, _ := s.IsMember("g1", "member1"); !isMember {
		t.Error("member1 should be a member after AddMember")
	}

	if err := s.RemoveMember("g1", "member1"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if isMember, _ := s.IsMember("g1", "member1"); isMember {
		t.Error("member1 should not be a member after RemoveMember")
	}
}

func TestMemoryStore_RemoveMemberClearsRoles(t *testing.T) {
	s := NewMemoryStore()
	s.CreateGroup("g1", "My Group", "creator1")

	s.RemoveMember("g1", "creator1")
	if isAdmin, _ := s.IsAdmin("g1", "creator1"); isAdmin {
		t.Error("creator should lose admin role after RemoveMember")
	}
}

func TestMemoryStore_GetMembersAndAdmins(t *testing.T) {
	s := NewMemoryStore()
	s.CreateGroup("g1", "My Group", "creator1")
	s.AddMember("g1", "member1")

	members, err := s.GetMembers("g1")
	if err != nil {
		t.Fatalf("GetMembers: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("GetMembers() returned %d members, want 2", len(members))
	}

	admins, err := s.GetAdmins("g1")
	if err != nil {
		t.Fatalf("GetAdmins: %v", err)
	}
	if len(admins) != 1 || admins[0] != "creator1" {
		t.Errorf("GetAdmins() = %v, want [creator1]", admins)
	}
}

func TestMemoryStore_GetGroupMissing(t *testing.T) {
	s := NewMemoryStore()
	g, err := s.GetGroup("nope")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if g != nil {
		t.Errorf("GetGroup(missing) = %+v, want nil", g)
	}
}

func TestMemoryStore_DeleteGroup(t *testing.T) {
	s := NewMemoryStore()
	s.CreateGroup("g1", "My Group", "creator1")
	if err := s.DeleteGroup("g1"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}

	g, _ := s.GetGroup("g1")
	if g != nil {
		t.Error("group should be gone after DeleteGroup")
	}
	if isMember, _ := s.IsMember("g1", "creator1"); isMember {
		t.Error("membership should be gone after DeleteGroup")
	}
}
