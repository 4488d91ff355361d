// Package group persists NIP-29 group membership, roles, and attributes.
package group

import (
	"database/sql"
	"fmt"
)

// RoleAdmin is the only role the core pipeline checks against.
const RoleAdmin = "admin"

// Group is a NIP-29 object identified by a string group id.
type Group struct {
	ID        string
	Name      string
	Picture   string
	About     string
	IsPrivate bool
	IsClosed  bool
}

// Store is the group store contract. PostgresStore and MemoryStore both
// satisfy it.
type Store interface {
	CreateGroup(groupID, name, creatorPubkey string) error
	IsAdmin(groupID, pubkey string) (bool, error)
	IsMember(groupID, pubkey string) (bool, error)
	AddMember(groupID, pubkey string) error
	RemoveMember(groupID, pubkey string) error
	GetMembers(groupID string) ([]string, error)
	GetAdmins(groupID string) ([]string, error)
	GetGroup(groupID string) (*Group, error)
	DeleteGroup(groupID string) error
}

// PostgresStore is the Postgres-backed implementation.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-open pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateGroup creates the group, adds the creator as a member, and grants
// them the admin role, all in one transaction. Every insert is idempotent
// on existing rows.
func (s *PostgresStore) CreateGroup(groupID, name, creatorPubkey string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin create-group tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO relay.groups (group_id, name) VALUES ($1, $2) ON CONFLICT (group_id) DO NOTHING`,
		groupID, name,
	); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO relay.group_members (group_id, pubkey) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		groupID, creatorPubkey,
	); err != nil {
		return fmt.Errorf("insert creator as member: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO relay.group_roles (group_id, pubkey, role) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		groupID, creatorPubkey, RoleAdmin,
	); err != nil {
		return fmt.Errorf("insert creator as admin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create-group tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAdmin(groupID, pubkey string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM relay.group_roles WHERE group_id = $1 AND pubkey = $2 AND role = $3)`,
		groupID, pubkey, RoleAdmin,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) IsMember(groupID, pubkey string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM relay.group_members WHERE group_id = $1 AND pubkey = $2)`,
		groupID, pubkey,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) AddMember(groupID, pubkey string) error {
	_, err := s.db.Exec(
		`INSERT INTO relay.group_members (group_id, pubkey) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		groupID, pubkey,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember removes a member and cascades to their role rows.
func (s *PostgresStore) RemoveMember(groupID, pubkey string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove-member tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM relay.group_members WHERE group_id = $1 AND pubkey = $2`, groupID, pubkey,
	); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM relay.group_roles WHERE group_id = $1 AND pubkey = $2`, groupID, pubkey,
	); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) GetMembers(groupID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT pubkey FROM relay.group_members WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get members: %w", err)
	}
	defer rows.Close()
	return scanPubkeys(rows)
}

func (s *PostgresStore) GetAdmins(groupID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT pubkey FROM relay.group_roles WHERE group_id = $1 AND role = $2`, groupID, RoleAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("get admins: %w", err)
	}
	defer rows.Close()
	return scanPubkeys(rows)
}

func (s *PostgresStore) GetGroup(groupID string) (*Group, error) {
	var g Group
	var picture, about sql.NullString
	err := s.db.QueryRow(
		`SELECT group_id, name, picture, about, is_private, is_closed FROM relay.groups WHERE group_id = $1`,
		groupID,
	).Scan(&g.ID, &g.Name, &picture, &about, &g.IsPrivate, &g.IsClosed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	g.Picture = picture.String
	g.About = about.String
	return &g, nil
}

// DeleteGroup removes the group; member/role cleanup cascades via foreign
// key ON DELETE CASCADE.
func (s *PostgresStore) DeleteGroup(groupID string) error {
	_, err := s.db.Exec(`DELETE FROM relay.groups WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

func scanPubkeys(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var pubkey string
		if err := rows.Scan(&pubkey); err != nil {
			return nil, fmt.Errorf("scan pubkey: %w", err)
		}
		out = append(out, pubkey)
	}
	return out, rows.Err()
}
