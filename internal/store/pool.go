package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// OpenPool opens a bounded Postgres connection pool. Queries are
// independently acquired and released per call by database/sql; this just
// sets the shared cap.
func OpenPool(databaseURL string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres pool: %w", err)
	}

	return db, nil
}
