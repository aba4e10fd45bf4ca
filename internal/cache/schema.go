package cache

// schemaSQL defines the SQLite schema for the vector cache. One row per
// (fingerprint, model) pair; the vector is a little-endian float32 blob.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS vectors (
    fingerprint TEXT NOT NULL,
    model TEXT NOT NULL,
    dims INTEGER NOT NULL,
    vector BLOB NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (fingerprint, model)
);

CREATE INDEX IF NOT EXISTS idx_vectors_model ON vectors(model);
`

// initSchema creates the tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
