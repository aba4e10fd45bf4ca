package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveDocument records a document's identity and structure. The raw text is
// intentionally not written. Re-saving the same id overwrites the record.
func (s *Store) SaveDocument(d *EvidenceDocument) error {
	if d.ID == "" {
		return fmt.Errorf("document requires an id")
	}

	uploadedAt := d.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO evidence_documents (id, filename, page_count, uploaded_at, fingerprint)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			page_count = excluded.page_count,
			uploaded_at = excluded.uploaded_at,
			fingerprint = excluded.fingerprint`,
		d.ID, d.Filename, d.PageCount, uploadedAt.Format(time.RFC3339), d.Fingerprint)
	return err
}

// GetDocument retrieves a document record by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetDocument(id string) (*EvidenceDocument, error) {
	var d EvidenceDocument
	var filename, fingerprint sql.NullString
	var uploadedAt string

	err := s.db.QueryRow(`
		SELECT id, filename, page_count, uploaded_at, fingerprint
		FROM evidence_documents WHERE id = ?`, id).Scan(
		&d.ID, &filename, &d.PageCount, &uploadedAt, &fingerprint)
	if err != nil {
		return nil, err
	}

	d.Filename = filename.String
	d.Fingerprint = fingerprint.String
	d.UploadedAt = parseTimestamp(uploadedAt)
	return &d, nil
}

// ListDocuments returns all recorded documents, newest first.
func (s *Store) ListDocuments() ([]*EvidenceDocument, error) {
	rows, err := s.db.Query(`
		SELECT id, filename, page_count, uploaded_at, fingerprint
		FROM evidence_documents ORDER BY uploaded_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*EvidenceDocument
	for rows.Next() {
		var d EvidenceDocument
		var filename, fingerprint sql.NullString
		var uploadedAt string
		if err := rows.Scan(&d.ID, &filename, &d.PageCount, &uploadedAt, &fingerprint); err != nil {
			return nil, err
		}
		d.Filename = filename.String
		d.Fingerprint = fingerprint.String
		d.UploadedAt = parseTimestamp(uploadedAt)
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document record and all of its mappings.
func (s *Store) DeleteDocument(id string) error {
	if err := s.DeleteMappingsForDocument(id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM evidence_documents WHERE id = ?`, id)
	return err
}
