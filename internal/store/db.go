// Package store provides SQLite-backed persistence for evidence documents,
// evidence mappings, and corpus provenance metadata. The database lives at
// .a3e/evidence.db. Mappings are written through the upsert contract: one row
// per (document_id, standard_id), latest write wins.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store manages the .a3e/evidence.db SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the store database in the given .a3e directory,
// creating the directory and initializing the schema as needed.
func Open(a3eDir string) (*Store, error) {
	if err := os.MkdirAll(a3eDir, 0755); err != nil {
		return nil, fmt.Errorf("create .a3e directory: %w", err)
	}

	dbPath := filepath.Join(a3eDir, "evidence.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open evidence db: %w", err)
	}

	// WAL mode for concurrent readers during mapping writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// OpenDefault opens the store in ./.a3e under the current working directory.
func OpenDefault() (*Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return Open(filepath.Join(cwd, ".a3e"))
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}
