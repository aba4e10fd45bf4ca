package store

// schemaSQL defines the SQLite schema for the evidence database.
const schemaSQL = `
-- evidence documents (identity and structure only; text is never persisted)
CREATE TABLE IF NOT EXISTS evidence_documents (
    id TEXT PRIMARY KEY,
    filename TEXT,
    page_count INTEGER DEFAULT 0,
    uploaded_at TEXT NOT NULL,
    fingerprint TEXT
);

-- evidence mappings, one row per (document, standard) pair
CREATE TABLE IF NOT EXISTS evidence_mappings (
    document_id TEXT NOT NULL,
    standard_id TEXT NOT NULL,
    accreditor TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 0,
    method TEXT NOT NULL DEFAULT 'keyword',  -- keyword, embedding, hybrid
    excerpts TEXT,                           -- JSON array of excerpt objects
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (document_id, standard_id)
);

-- corpus provenance metadata, replaced wholesale per accreditor on reload
CREATE TABLE IF NOT EXISTS corpus_metadata (
    accreditor TEXT PRIMARY KEY,
    version TEXT,
    effective_date TEXT,
    last_updated TEXT,
    source_url TEXT,
    license TEXT,
    disclaimer TEXT,
    coverage_notes TEXT,
    standard_count INTEGER DEFAULT 0,
    loaded_node_count INTEGER DEFAULT 0,
    source_file TEXT,
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mappings_standard ON evidence_mappings(standard_id);
CREATE INDEX IF NOT EXISTS idx_mappings_document ON evidence_mappings(document_id);
CREATE INDEX IF NOT EXISTS idx_mappings_accreditor ON evidence_mappings(accreditor);
CREATE INDEX IF NOT EXISTS idx_documents_fingerprint ON evidence_documents(fingerprint);
`

// initSchema creates the database tables and indexes if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
