package store

// schema is applied at startup with CREATE TABLE IF NOT EXISTS statements so
// the relay can bootstrap its own schema against an empty database. No
// separate migration tool is run; this is the full DDL the relay depends on.
const schema = `
CREATE SCHEMA IF NOT EXISTS relay;

CREATE TABLE IF NOT EXISTS relay.events (
	id         TEXT PRIMARY KEY,
	pubkey     TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	kind       INTEGER NOT NULL,
	tags       JSONB NOT NULL,
	content    TEXT NOT NULL,
	sig        TEXT NOT NULL,
	d_tag      TEXT,
	h_tag      TEXT,
	search_tsv TSVECTOR
);

CREATE INDEX IF NOT EXISTS events_pubkey_idx ON relay.events (pubkey);
CREATE INDEX IF NOT EXISTS events_kind_idx ON relay.events (kind);
CREATE INDEX IF NOT EXISTS events_created_at_idx ON relay.events (created_at DESC);
CREATE INDEX IF NOT EXISTS events_d_tag_idx ON relay.events (d_tag);
CREATE INDEX IF NOT EXISTS events_h_tag_idx ON relay.events (h_tag);
CREATE INDEX IF NOT EXISTS events_tags_gin_idx ON relay.events USING GIN (tags);
CREATE INDEX IF NOT EXISTS events_search_tsv_idx ON relay.events USING GIN (search_tsv);

CREATE TABLE IF NOT EXISTS relay.groups (
	group_id   TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	picture    TEXT,
	about      TEXT,
	is_private BOOLEAN NOT NULL DEFAULT FALSE,
	is_closed  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS relay.group_members (
	group_id TEXT NOT NULL REFERENCES relay.groups (group_id) ON DELETE CASCADE,
	pubkey   TEXT NOT NULL,
	PRIMARY KEY (group_id, pubkey)
);

CREATE TABLE IF NOT EXISTS relay.group_roles (
	group_id TEXT NOT NULL REFERENCES relay.groups (group_id) ON DELETE CASCADE,
	pubkey   TEXT NOT NULL,
	role     TEXT NOT NULL,
	PRIMARY KEY (group_id, pubkey, role)
);
`

// Migrate applies the schema. It is idempotent: running it against a
// database that already has the schema is a no-op.
func (s *EventStore) Migrate() error {
	_, err := s.db.Exec(schema)
	return err
}
