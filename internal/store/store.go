package store

import "github.com/nostr-rly/relay/internal/nostr"

// Store is the durable event store contract. EventStore (Postgres) and
// MemoryStore (in-memory, test-only) both satisfy it.
type Store interface {
	Store(e *nostr.Event) (InsertOutcome, error)
	Query(f nostr.Filter) ([]*nostr.Event, error)
	Search(query string, limit int) ([]*nostr.Event, error)
	Delete(id string) (bool, error)
}
