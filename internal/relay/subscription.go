// Package relay wires the protocol handler, subscription manager, and
// connection loop together behind one per-connection WebSocket handler,
// plus the NIP-11 HTTP surface that serves it.
package relay

import (
	"sync"

	"github.com/nostr-rly/relay/internal/nostr"
)

// SubscriptionManager is the per-connection mapping from subscription id to
// filter. It is never shared across connections; both the inbound and the
// broadcast branches of one connection's multiplex touch it, so access is
// serialized with a mutex.
type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[string]nostr.Filter
}

// NewSubscriptionManager creates an empty manager.
func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{subs: make(map[string]nostr.Filter)}
}

// Add registers filter under id, replacing any prior binding for that id.
func (m *SubscriptionManager) Add(id string, filter nostr.Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[id] = filter
}

// Remove unregisters id, if present.
func (m *SubscriptionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
}

// Matching evaluates every registered filter against e and returns the ids
// whose filter matches. Order is unspecified.
func (m *SubscriptionManager) Matching(e *nostr.Event) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for id, filter := range m.subs {
		f := filter
		if f.Matches(e) {
			matched = append(matched, id)
		}
	}
	return matched
}
