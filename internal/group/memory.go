package group

import "sync"

// MemoryStore is an in-memory Store used by handler/protocol tests.
type MemoryStore struct {
	mu      sync.RWMutex
	groups  map[string]*Group
	members map[string]map[string]bool            // group_id -> pubkey -> true
	roles   map[string]map[string]map[string]bool // group_id -> pubkey -> role -> true
}

// NewMemoryStore constructs an empty in-memory group store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:  make(map[string]*Group),
		members: make(map[string]map[string]bool),
		roles:   make(map[string]map[string]map[string]bool),
	}
}

func (m *MemoryStore) CreateGroup(groupID, name, creatorPubkey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.groups[groupID]; !exists {
		m.groups[groupID] = &Group{ID: groupID, Name: name}
	}
	m.addMemberLocked(groupID, creatorPubkey)
	m.addRoleLocked(groupID, creatorPubkey, RoleAdmin)
	return nil
}

func (m *MemoryStore) IsAdmin(groupID, pubkey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roles[groupID] != nil && m.roles[groupID][pubkey] != nil && m.roles[groupID][pubkey][RoleAdmin], nil
}

func (m *MemoryStore) IsMember(groupID, pubkey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.members[groupID] != nil && m.members[groupID][pubkey], nil
}

func (m *MemoryStore) AddMember(groupID, pubkey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addMemberLocked(groupID, pubkey)
	return nil
}

func (m *MemoryStore) RemoveMember(groupID, pubkey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[groupID] != nil {
		delete(m.members[groupID], pubkey)
	}
	if m.roles[groupID] != nil {
		delete(m.roles[groupID], pubkey)
	}
	return nil
}

func (m *MemoryStore) GetMembers(groupID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for pubkey := range m.members[groupID] {
		out = append(out, pubkey)
	}
	return out, nil
}

func (m *MemoryStore) GetAdmins(groupID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for pubkey, roles := range m.roles[groupID] {
		if roles[RoleAdmin] {
			out = append(out, pubkey)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetGroup(groupID string) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[groupID]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *MemoryStore) DeleteGroup(groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, groupID)
	delete(m.members, groupID)
	delete(m.roles, groupID)
	return nil
}

// SetGroupAttrs sets is_private/is_closed on a group that already exists;
// it does nothing for an unknown group id. It is not part of Store; tests
// use it to seed fixtures.
func (m *MemoryStore) SetGroupAttrs(groupID string, isPrivate, isClosed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[groupID]; ok {
		g.IsPrivate = isPrivate
		g.IsClosed = isClosed
	}
}

func (m *MemoryStore) addMemberLocked(groupID, pubkey string) {
	if m.members[groupID] == nil {
		m.members[groupID] = make(map[string]bool)
	}
	m.members[groupID][pubkey] = true
}

func (m *MemoryStore) addRoleLocked(groupID, pubkey, role string) {
	if m.roles[groupID] == nil {
		m.roles[groupID] = make(map[string]map[string]bool)
	}
	if m.roles[groupID][pubkey] == nil {
		m.roles[groupID][pubkey] = make(map[string]bool)
	}
	m.roles[groupID][pubkey][role] = true
}
