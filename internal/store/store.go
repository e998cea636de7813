// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the set of paper IDs already digested, so a
// paper is never emailed twice across runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Store manages the processed-ID SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the processed-ID database at cfg.Path, creating
// parent directories and the schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join("state", "digest.db")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS processed_papers (
		id TEXT PRIMARY KEY,
		first_seen TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Load returns the set of all processed paper IDs.
func (s *Store) Load() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT id FROM processed_papers`)
	if err != nil {
		return nil, fmt.Errorf("querying processed papers: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning processed paper: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Append records ids as processed. Already-present IDs are left
// untouched, so the operation is an idempotent union.
func (s *Store) Append(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO processed_papers (id, first_seen) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		if _, err := stmt.Exec(id, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// List returns all processed IDs with their first-seen timestamps,
// oldest first. Used by the store inspection command.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT id, first_seen FROM processed_papers ORDER BY first_seen, id`)
	if err != nil {
		return nil, fmt.Errorf("querying processed papers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FirstSeen); err != nil {
			return nil, fmt.Errorf("scanning processed paper: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Entry is one processed-ID record.
type Entry struct {
	ID        string
	FirstSeen string
}
