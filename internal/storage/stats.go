package storage

import (
	"fmt"
)

// TableCount is a row count for one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// Counts returns row counts for the raw store and every derived table,
// in a stable reporting order.
func (d *DB) Counts() ([]TableCount, error) {
	tables := []string{
		"raw_json",
		"works",
		"work_ids",
		"authors",
		"work_authors",
		"institutions",
		"author_institutions",
		"concepts",
		"work_concepts",
		"topics",
		"work_topics",
		"keywords",
		"work_keywords",
		"sdgs",
		"work_sdgs",
		"sources",
		"work_locations",
		"work_references",
		"work_grants",
	}

	counts := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		var n int
		if err := d.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}
