// Package cache provides SQLite-backed caching of embedding vectors. The
// cache is stored in .a3e/cache.db so repeated mapping runs over the same
// evidence and standards skip the embedding backend entirely. Entries are
// keyed by content fingerprint and model version; a model upgrade naturally
// misses and repopulates.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache manages the .a3e/cache.db SQLite database of embedding vectors.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the given .a3e directory.
func Open(a3eDir string) (*Cache, error) {
	dbPath := filepath.Join(a3eDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// WAL mode for concurrent readers during batch embedding
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes every cached vector.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM vectors"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Count returns the number of cached vectors.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM vectors").Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}
