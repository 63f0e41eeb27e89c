// Package store is the durable, transactional home for pairs and their
// entries: the state the sync engine consults to tell "already synced"
// from "new change" across invocations.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pairs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL UNIQUE,
	remote_root TEXT NOT NULL,
	local_root TEXT NOT NULL,
	allowed_extensions_csv TEXT NOT NULL,
	exclude_patterns TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS entries (
	pair_id INTEGER NOT NULL REFERENCES pairs(id),
	path TEXT NOT NULL,
	remote_mtime INTEGER,
	remote_mtime_prev INTEGER NOT NULL DEFAULT 0,
	exists_remote INTEGER NOT NULL DEFAULT 0,
	local_mtime INTEGER,
	local_mtime_prev INTEGER NOT NULL DEFAULT 0,
	exists_local INTEGER NOT NULL DEFAULT 0,
	synced INTEGER NOT NULL DEFAULT 0,
	captured_at INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (pair_id, path)
);
`

// Store wraps the embedded SQLite database holding pairs and entries.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the state store file at path and ensures
// the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set journal mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a single transaction, committing on success and
// rolling back on any returned error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
