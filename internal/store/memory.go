package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/nostr-rly/relay/internal/nostr"
)

// MemoryStore is an in-memory Store used by tests that exercise the
// protocol/connection layers without a live Postgres instance. It mirrors
// EventStore's idempotent insert and filter/limit semantics. Search is a
// case-insensitive substring match over content, ordered newest first; it
// does not rank results the way EventStore's full-text search does.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*nostr.Event
	cfg    Config
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.DefaultQueryLimit <= 0 {
		cfg.DefaultQueryLimit = 500
	}
	if cfg.MaxQueryLimit <= 0 {
		cfg.MaxQueryLimit = 5000
	}
	if cfg.DefaultSearchLimit <= 0 {
		cfg.DefaultSearchLimit = 100
	}
	return &MemoryStore{events: make(map[string]*nostr.Event), cfg: cfg}
}

func (m *MemoryStore) Store(e *nostr.Event) (InsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.events[e.ID]; exists {
		return Duplicate, nil
	}
	cp := *e
	m.events[e.ID] = &cp
	return Inserted, nil
}

func (m *MemoryStore) Query(f nostr.Filter) ([]*nostr.Event, error) {
	if f.Search != "" {
		limit := f.Limit
		if limit <= 0 {
			limit = m.cfg.DefaultSearchLimit
		}
		return m.Search(f.Search, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*nostr.Event
	for _, e := range m.events {
		if f.Matches(e) {
			results = append(results, e)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt > results[j].CreatedAt
	})

	limit := clampLimit(f.Limit, m.cfg.DefaultQueryLimit, m.cfg.MaxQueryLimit)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryStore) Search(query string, limit int) ([]*nostr.Event, error) {
	if limit <= 0 {
		limit = m.cfg.DefaultSearchLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)
	var results []*nostr.Event
	for _, e := range m.events {
		if strings.Contains(strings.ToLower(e.Content), needle) {
			results = append(results, e)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt > results[j].CreatedAt
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryStore) Delete(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.events[id]; !exists {
		return false, nil
	}
	delete(m.events, id)
	return true, nil
}
