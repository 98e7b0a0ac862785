// Package store provides SQLite-backed indexing of emitted facts.
// The index is stored in .cfx/facts.db and mirrors every fact appended to
// the JSONL outputs, so facts can be queried by kind and name without
// re-scanning the output files.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DBFileName is the name of the fact index database file.
const DBFileName = "facts.db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS facts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,               -- declaration, enum, relation
    name TEXT NOT NULL,
    target TEXT NOT NULL,             -- output file the fact was appended to
    payload TEXT NOT NULL,            -- the JSON line as written
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facts_kind_name ON facts(kind, name);
`

// Store manages the .cfx/facts.db SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Fact is one indexed fact row.
type Fact struct {
	ID      int64
	Kind    string
	Name    string
	Target  string
	Payload string
}

// Open opens or creates the fact index at the specified .cfx directory,
// creating the directory and initializing the schema as needed.
func Open(cfxDir string) (*Store, error) {
	if err := os.MkdirAll(cfxDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", cfxDir, err)
	}

	dbPath := filepath.Join(cfxDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open fact index: %w", err)
	}

	// WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// IndexFact records one emitted fact. It implements facts.Indexer.
func (s *Store) IndexFact(kind, name, target string, payload []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO facts (kind, name, target, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		kind, name, target, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert fact: %w", err)
	}
	return nil
}

// Query returns indexed facts filtered by kind and/or name; empty filters
// match everything. Results are ordered by insertion.
func (s *Store) Query(kind, name string) ([]Fact, error) {
	query := "SELECT id, kind, name, target, payload FROM facts WHERE 1=1"
	var args []any
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	if name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.ID, &f.Kind, &f.Name, &f.Target, &f.Payload); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Count returns the number of indexed facts.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM facts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count facts: %w", err)
	}
	return n, nil
}

// Clear removes all indexed facts.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM facts"); err != nil {
		return fmt.Errorf("clear facts: %w", err)
	}
	return nil
}
