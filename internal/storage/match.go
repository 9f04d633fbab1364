package storage

import (
	"fmt"
)

// The match post-pass links loaded works against an external system.
// The linking logic itself is opaque SQL supplied by the operator; this
// layer only sequences it and reports the resulting row count.

// ensureMatchSchema creates the cross-reference table the matching
// script writes into, if absent.
func (d *DB) ensureMatchSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS work_matches (
			work_id TEXT NOT NULL,
			matched_id TEXT NOT NULL,
			match_source TEXT,
			PRIMARY KEY (work_id, matched_id)
		);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("creating match schema: %w", err)
	}
	return nil
}

// RunMatch executes the supplied matching script and returns the total
// number of cross-reference rows afterwards. A script failure leaves
// already-committed loads untouched.
func (d *DB) RunMatch(script string) (int, error) {
	if err := d.ensureMatchSchema(); err != nil {
		return 0, err
	}

	if _, err := d.db.Exec(script); err != nil {
		return 0, fmt.Errorf("executing match script: %w", err)
	}

	return d.CountMatches()
}

// CountMatches returns the number of cross-reference rows.
func (d *DB) CountMatches() (int, error) {
	if err := d.ensureMatchSchema(); err != nil {
		return 0, err
	}

	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM work_matches").Scan(&count)
	return count, err
}
