// Package store persists events durably, compiles filters into indexed
// Postgres queries, and performs NIP-50 full-text search.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/nostr-rly/relay/internal/nostr"
)

// InsertOutcome distinguishes a fresh insert from a no-op duplicate; a
// duplicate is expected steady-state, not an error.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	Duplicate
)

// EventStore is the Postgres-backed implementation of the durable event
// store.
type EventStore struct {
	db                 *sql.DB
	defaultQueryLimit  int
	maxQueryLimit      int
	defaultSearchLimit int
}

// Config bounds the defaults EventStore applies when a caller leaves limit
// unset or out of range.
type Config struct {
	DefaultQueryLimit  int
	MaxQueryLimit      int
	DefaultSearchLimit int
}

// NewEventStore wraps an already-open pool.
func NewEventStore(db *sql.DB, cfg Config) *EventStore {
	if cfg.DefaultQueryLimit <= 0 {
		cfg.DefaultQueryLimit = 500
	}
	if cfg.MaxQueryLimit <= 0 {
		cfg.MaxQueryLimit = 5000
	}
	if cfg.DefaultSearchLimit <= 0 {
		cfg.DefaultSearchLimit = 100
	}
	return &EventStore{
		db:                 db,
		defaultQueryLimit:  cfg.DefaultQueryLimit,
		maxQueryLimit:      cfg.MaxQueryLimit,
		defaultSearchLimit: cfg.DefaultSearchLimit,
	}
}

// Store inserts an event by primary key id. A row that already exists is
// reported as Duplicate, not an error.
func (s *EventStore) Store(e *nostr.Event) (InsertOutcome, error) {
	dTag, _ := e.GetTagValue("d")
	hTag, _ := e.GetTagValue("h")

	tagsJSON, err := json.Marshal(e.Tags)
	if err != nil {
		return 0, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO relay.events (id, pubkey, created_at, kind, tags, content, sig, d_tag, h_tag, search_tsv)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, to_tsvector('english', $6))
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.PubKey, e.CreatedAt, e.Kind, tagsJSON, e.Content, e.Sig, nullIfEmpty(dTag), nullIfEmpty(hTag))
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// Query compiles the filter into a single SELECT and returns matching
// events ordered by created_at DESC. If filter.Search is set, it delegates
// to Search and ignores every other field except limit.
func (s *EventStore) Query(f nostr.Filter) ([]*nostr.Event, error) {
	if f.Search != "" {
		limit := f.Limit
		if limit <= 0 {
			limit = s.defaultSearchLimit
		}
		return s.Search(f.Search, limit)
	}

	var conditions []string
	var args []interface{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if len(f.IDs) > 0 {
		add("id = ANY($%d)", pq.Array(f.IDs))
	}
	if len(f.Authors) > 0 {
		add("pubkey = ANY($%d)", pq.Array(f.Authors))
	}
	if len(f.Kinds) > 0 {
		add("kind = ANY($%d)", pq.Array(f.Kinds))
	}
	if f.Since != nil {
		add("created_at >= $%d", *f.Since)
	}
	if f.Until != nil {
		add("created_at <= $%d", *f.Until)
	}
	if len(f.HTags) > 0 {
		add("h_tag = ANY($%d)", pq.Array(f.HTags))
	}
	if len(f.DTags) > 0 {
		add("d_tag = ANY($%d)", pq.Array(f.DTags))
	}
	if len(f.PTags) > 0 {
		args = append(args, pq.Array(f.PTags))
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(tags) elem WHERE elem->>0 = 'p' AND elem->>1 = ANY($%d))",
			len(args)))
	}
	if len(f.ETags) > 0 {
		args = append(args, pq.Array(f.ETags))
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(tags) elem WHERE elem->>0 = 'e' AND elem->>1 = ANY($%d))",
			len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := clampLimit(f.Limit, s.defaultQueryLimit, s.maxQueryLimit)

	query := fmt.Sprintf(`
		SELECT id, pubkey, created_at, kind, tags, content, sig
		FROM relay.events
		%s
		ORDER BY created_at DESC
		LIMIT %d
	`, where, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Search runs a NIP-50 ranked full-text search over stored content, most
// relevant first.
func (s *EventStore) Search(query string, limit int) ([]*nostr.Event, error) {
	if limit <= 0 {
		limit = s.defaultSearchLimit
	}

	rows, err := s.db.Query(`
		SELECT id, pubkey, created_at, kind, tags, content, sig
		FROM relay.events
		WHERE search_tsv @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(search_tsv, plainto_tsquery('english', $1)) DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Delete removes an event by primary key, reporting whether a row existed.
func (s *EventStore) Delete(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM relay.events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func scanEvents(rows *sql.Rows) ([]*nostr.Event, error) {
	var events []*nostr.Event
	for rows.Next() {
		var e nostr.Event
		var tagsJSON []byte
		if err := rows.Scan(&e.ID, &e.PubKey, &e.CreatedAt, &e.Kind, &tagsJSON, &e.Content, &e.Sig); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &e.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// clampLimit applies the default/cap/negative-treated-as-default rule.
func clampLimit(requested, def, cap int) int {
	if requested <= 0 {
		return def
	}
	if requested > cap {
		return cap
	}
	return requested
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
