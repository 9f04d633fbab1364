package storage

import (
	"fmt"
)

// RawDocument is one harvested record pending normalization. Content is
// either a single work object or a whole result page (array of works).
type RawDocument struct {
	ID      int64
	Content []byte
}

// InsertRaw stores one harvested document, unprocessed.
func (d *DB) InsertRaw(content []byte) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO raw_json (json_content, processed) VALUES (?, 0)`,
		string(content),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting raw document: %w", err)
	}
	return res.LastInsertId()
}

// FetchUnprocessed returns up to limit unprocessed documents ordered by
// id ascending. Marking each document promptly after processing
// guarantees no document is returned twice within one driver run.
func (d *DB) FetchUnprocessed(limit int) ([]RawDocument, error) {
	rows, err := d.db.Query(
		`SELECT id, json_content FROM raw_json WHERE processed = 0 ORDER BY id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching unprocessed documents: %w", err)
	}
	defer rows.Close()

	var docs []RawDocument
	for rows.Next() {
		var doc RawDocument
		var content []byte
		if err := rows.Scan(&doc.ID, &content); err != nil {
			return nil, err
		}
		doc.Content = content
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkProcessed flips the processed flag for a document. Idempotent;
// the flag is monotonic and never reset outside of Clean.
func (d *DB) MarkProcessed(id int64) error {
	_, err := d.db.Exec(`UPDATE raw_json SET processed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking document %d processed: %w", id, err)
	}
	return nil
}

// CountRaw returns total and unprocessed raw document counts.
func (d *DB) CountRaw() (total, unprocessed int, err error) {
	if err = d.db.QueryRow(`SELECT COUNT(*) FROM raw_json`).Scan(&total); err != nil {
		return 0, 0, err
	}
	if err = d.db.QueryRow(`SELECT COUNT(*) FROM raw_json WHERE processed = 0`).Scan(&unprocessed); err != nil {
		return 0, 0, err
	}
	return total, unprocessed, nil
}
