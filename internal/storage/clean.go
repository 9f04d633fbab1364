package storage

import (
	"fmt"
)

// derivedTables lists every table populated from raw documents, in the
// order Clean empties them. raw_json is not included; its rows are kept
// and only the processed flags are reset.
var derivedTables = []string{
	"work_grants",
	"work_references",
	"work_locations",
	"work_sdgs",
	"work_keywords",
	"work_topics",
	"work_concepts",
	"author_institutions",
	"work_authors",
	"work_ids",
	"sources",
	"sdgs",
	"keywords",
	"topics",
	"concepts",
	"institutions",
	"authors",
	"works",
}

// Clean clears all derived tables and resets every processed flag,
// providing the full-reprocess path. Run only at operator request,
// never concurrently with the batch loop.
func (d *DB) Clean() error {
	for _, table := range derivedTables {
		if _, err := d.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := d.db.Exec("UPDATE raw_json SET processed = 0"); err != nil {
		return fmt.Errorf("resetting processed flags: %w", err)
	}
	return nil
}
