package storage

import (
	"testing"

	"github.com/larkul/openalex-data-bibmet-integration/internal/openalex"
)

func TestClean_ResetsDerivedState(t *testing.T) {
	db := newTestDB(t)

	rawID, err := db.InsertRaw([]byte(`{"id": "https://openalex.org/W1"}`))
	if err != nil {
		t.Fatalf("InsertRaw() error = %v", err)
	}
	if err := db.MarkProcessed(rawID); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	workID := "https://openalex.org/W1"
	if _, err := db.UpsertWork(openalex.WorkRecord{ID: &workID}); err != nil {
		t.Fatalf("UpsertWork() error = %v", err)
	}
	if err := db.LinkWorkID(workID, openalex.IDPair{Type: "doi", Value: "10.1/a"}); err != nil {
		t.Fatalf("LinkWorkID() error = %v", err)
	}

	if err := db.Clean(); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	// Raw rows survive with their flags reset; derived tables are empty.
	total, unprocessed, err := db.CountRaw()
	if err != nil {
		t.Fatalf("CountRaw() error = %v", err)
	}
	if total != 1 || unprocessed != 1 {
		t.Errorf("CountRaw() = (%d, %d), want (1, 1)", total, unprocessed)
	}
	if n := countRows(t, db, "works"); n != 0 {
		t.Errorf("works rows = %d, want 0", n)
	}
	if n := countRows(t, db, "work_ids"); n != 0 {
		t.Errorf("work_ids rows = %d, want 0", n)
	}
}

func TestRunMatch_ExecutesScript(t *testing.T) {
	db := newTestDB(t)

	script := `
		INSERT INTO work_matches (work_id, matched_id, match_source)
		VALUES ('https://openalex.org/W1', 'BIB:1', 'doi');
	`
	count, err := db.RunMatch(script)
	if err != nil {
		t.Fatalf("RunMatch() error = %v", err)
	}
	if count != 1 {
		t.Errorf("RunMatch() count = %d, want 1", count)
	}

	got, err := db.CountMatches()
	if err != nil {
		t.Fatalf("CountMatches() error = %v", err)
	}
	if got != 1 {
		t.Errorf("CountMatches() = %d, want 1", got)
	}
}

func TestRunMatch_BadScript(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.RunMatch("NOT SQL AT ALL"); err == nil {
		t.Error("RunMatch() error = nil, want error for invalid script")
	}
	// Loads committed before the failed script stay untouched.
	if _, err := db.InsertRaw([]byte(`{}`)); err != nil {
		t.Fatalf("InsertRaw() after failed match error = %v", err)
	}
}
