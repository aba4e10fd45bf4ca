package store

import (
	"fmt"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/corpus"
)

// ReplaceCorpusMetadata writes provenance rows for every loaded accreditor,
// replacing each accreditor's row wholesale. Called after a successful load
// or reload so external readers can display corpus versioning.
func (s *Store) ReplaceCorpusMetadata(metas []*corpus.CorpusMetadata) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, m := range metas {
		_, err := tx.Exec(`
			INSERT INTO corpus_metadata (accreditor, version, effective_date,
				last_updated, source_url, license, disclaimer, coverage_notes,
				standard_count, loaded_node_count, source_file, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(accreditor) DO UPDATE SET
				version = excluded.version,
				effective_date = excluded.effective_date,
				last_updated = excluded.last_updated,
				source_url = excluded.source_url,
				license = excluded.license,
				disclaimer = excluded.disclaimer,
				coverage_notes = excluded.coverage_notes,
				standard_count = excluded.standard_count,
				loaded_node_count = excluded.loaded_node_count,
				source_file = excluded.source_file,
				recorded_at = excluded.recorded_at`,
			m.Accreditor, m.Version, m.EffectiveDate, m.LastUpdated,
			m.SourceURL, m.License, m.Disclaimer, m.CoverageNotes,
			m.StandardCount, m.LoadedNodeCount, m.SourceFile, now)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("replace metadata for %s: %w", m.Accreditor, err)
		}
	}

	return tx.Commit()
}

// GetCorpusMetadata returns all persisted provenance rows sorted by accreditor.
func (s *Store) GetCorpusMetadata() ([]*corpus.CorpusMetadata, error) {
	rows, err := s.db.Query(`
		SELECT accreditor, version, effective_date, last_updated, source_url,
			license, disclaimer, coverage_notes, standard_count,
			loaded_node_count, source_file
		FROM corpus_metadata ORDER BY accreditor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []*corpus.CorpusMetadata
	for rows.Next() {
		var m corpus.CorpusMetadata
		if err := rows.Scan(&m.Accreditor, &m.Version, &m.EffectiveDate,
			&m.LastUpdated, &m.SourceURL, &m.License, &m.Disclaimer,
			&m.CoverageNotes, &m.StandardCount, &m.LoadedNodeCount,
			&m.SourceFile); err != nil {
			return nil, err
		}
		metas = append(metas, &m)
	}
	return metas, rows.Err()
}
