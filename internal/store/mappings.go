package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UpsertMapping inserts or replaces the mapping for (document_id, standard_id).
// The created_at of an existing row is preserved; everything else reflects the
// latest write.
func (s *Store) UpsertMapping(m *EvidenceMapping) error {
	if m.DocumentID == "" || m.StandardID == "" {
		return fmt.Errorf("mapping requires document_id and standard_id")
	}

	excerptsJSON, err := json.Marshal(m.Excerpts)
	if err != nil {
		return fmt.Errorf("marshal excerpts: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`
		INSERT INTO evidence_mappings (document_id, standard_id, accreditor,
			confidence, method, excerpts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, standard_id) DO UPDATE SET
			accreditor = excluded.accreditor,
			confidence = excluded.confidence,
			method = excluded.method,
			excerpts = excluded.excerpts,
			updated_at = excluded.updated_at`,
		m.DocumentID, m.StandardID, m.Accreditor,
		m.Confidence, m.Method, string(excerptsJSON), now, now)
	return err
}

// UpsertMappingsBulk writes multiple mappings in a single transaction.
func (s *Store) UpsertMappingsBulk(mappings []*EvidenceMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO evidence_mappings (document_id, standard_id, accreditor,
			confidence, method, excerpts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, standard_id) DO UPDATE SET
			accreditor = excluded.accreditor,
			confidence = excluded.confidence,
			method = excluded.method,
			excerpts = excluded.excerpts,
			updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, m := range mappings {
		excerptsJSON, err := json.Marshal(m.Excerpts)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("marshal excerpts for %s/%s: %w", m.DocumentID, m.StandardID, err)
		}
		if _, err := stmt.Exec(m.DocumentID, m.StandardID, m.Accreditor,
			m.Confidence, m.Method, string(excerptsJSON), now, now); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("upsert mapping %s/%s: %w", m.DocumentID, m.StandardID, err)
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction (%d mappings): %w", len(mappings), err)
	}
	return nil
}

// GetMapping retrieves one mapping by its composite key.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetMapping(documentID, standardID string) (*EvidenceMapping, error) {
	row := s.db.QueryRow(`
		SELECT document_id, standard_id, accreditor, confidence, method,
			excerpts, created_at, updated_at
		FROM evidence_mappings
		WHERE document_id = ? AND standard_id = ?`, documentID, standardID)
	return scanMapping(row)
}

// GetMappingsForStandard returns all mappings for one standard, highest
// confidence first.
func (s *Store) GetMappingsForStandard(standardID string) ([]*EvidenceMapping, error) {
	return s.queryMappings(`
		SELECT document_id, standard_id, accreditor, confidence, method,
			excerpts, created_at, updated_at
		FROM evidence_mappings
		WHERE standard_id = ?
		ORDER BY confidence DESC, document_id`, standardID)
}

// GetMappingsForDocument returns all mappings for one document, highest
// confidence first.
func (s *Store) GetMappingsForDocument(documentID string) ([]*EvidenceMapping, error) {
	return s.queryMappings(`
		SELECT document_id, standard_id, accreditor, confidence, method,
			excerpts, created_at, updated_at
		FROM evidence_mappings
		WHERE document_id = ?
		ORDER BY confidence DESC, standard_id`, documentID)
}

// GetMappingsForAccreditor returns all mappings scoped to one accreditor.
func (s *Store) GetMappingsForAccreditor(accreditor string) ([]*EvidenceMapping, error) {
	return s.queryMappings(`
		SELECT document_id, standard_id, accreditor, confidence, method,
			excerpts, created_at, updated_at
		FROM evidence_mappings
		WHERE accreditor = ?
		ORDER BY standard_id, confidence DESC`, accreditor)
}

// GetAllMappings returns every stored mapping.
func (s *Store) GetAllMappings() ([]*EvidenceMapping, error) {
	return s.queryMappings(`
		SELECT document_id, standard_id, accreditor, confidence, method,
			excerpts, created_at, updated_at
		FROM evidence_mappings
		ORDER BY standard_id, confidence DESC`)
}

// MappedStandardIDs returns the distinct standard ids that have at least one
// mapping, optionally scoped to an accreditor (empty = all).
func (s *Store) MappedStandardIDs(accreditor string) ([]string, error) {
	query := `SELECT DISTINCT standard_id FROM evidence_mappings`
	args := []interface{}{}
	if accreditor != "" {
		query += ` WHERE accreditor = ?`
		args = append(args, accreditor)
	}
	query += ` ORDER BY standard_id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteMappingsForDocument removes all mappings of one document. Missing
// rows are not an error.
func (s *Store) DeleteMappingsForDocument(documentID string) error {
	_, err := s.db.Exec(`DELETE FROM evidence_mappings WHERE document_id = ?`, documentID)
	return err
}

// CountMappings returns the total number of stored mappings.
func (s *Store) CountMappings() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM evidence_mappings`).Scan(&n)
	return n, err
}

func (s *Store) queryMappings(query string, args ...interface{}) ([]*EvidenceMapping, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*EvidenceMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMapping(r rowScanner) (*EvidenceMapping, error) {
	var m EvidenceMapping
	var excerptsJSON sql.NullString
	var createdAt, updatedAt string

	err := r.Scan(&m.DocumentID, &m.StandardID, &m.Accreditor, &m.Confidence,
		&m.Method, &excerptsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if excerptsJSON.Valid && excerptsJSON.String != "" && excerptsJSON.String != "null" {
		if err := json.Unmarshal([]byte(excerptsJSON.String), &m.Excerpts); err != nil {
			return nil, fmt.Errorf("unmarshal excerpts for %s/%s: %w", m.DocumentID, m.StandardID, err)
		}
	}

	m.CreatedAt = parseTimestamp(createdAt)
	m.UpdatedAt = parseTimestamp(updatedAt)
	return &m, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
