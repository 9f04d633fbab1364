package storage

import (
	"testing"

	"github.com/larkul/openalex-data-bibmet-integration/internal/openalex"
)

func TestLinkWorkAuthor_NoDuplicateOnRelink(t *testing.T) {
	db := newTestDB(t)

	rec := openalex.AuthorshipRecord{
		Position:        strPtr("first"),
		RawAffiliations: []string{"Dept A, Univ X"},
		Countries:       []string{"SE"},
	}
	if err := db.LinkWorkAuthor("W1", "A1", rec); err != nil {
		t.Fatalf("LinkWorkAuthor() error = %v", err)
	}

	rec.Position = strPtr("last")
	if err := db.LinkWorkAuthor("W1", "A1", rec); err != nil {
		t.Fatalf("LinkWorkAuthor() relink error = %v", err)
	}

	if n := countRows(t, db, "work_authors"); n != 1 {
		t.Fatalf("work_authors rows = %d, want 1", n)
	}

	var position string
	if err := db.db.QueryRow(
		"SELECT author_position FROM work_authors WHERE work_id = ? AND author_id = ?",
		"W1", "A1").Scan(&position); err != nil {
		t.Fatalf("reading relation: %v", err)
	}
	if position != "last" {
		t.Errorf("author_position = %q, want updated value", position)
	}
}

func TestLinkAuthorInstitution_DuplicateIsNoOp(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 2; i++ {
		if err := db.LinkAuthorInstitution("W1", "A1", "I1"); err != nil {
			t.Fatalf("LinkAuthorInstitution() error = %v", err)
		}
	}
	if n := countRows(t, db, "author_institutions"); n != 1 {
		t.Errorf("author_institutions rows = %d, want 1", n)
	}
}

func TestLinkWorkConcept_ScoreUpdatedInPlace(t *testing.T) {
	db := newTestDB(t)

	if err := db.LinkWorkConcept("W1", "C1", floatPtr(0.5)); err != nil {
		t.Fatalf("LinkWorkConcept() error = %v", err)
	}
	if err := db.LinkWorkConcept("W1", "C1", floatPtr(0.9)); err != nil {
		t.Fatalf("LinkWorkConcept() relink error = %v", err)
	}

	if n := countRows(t, db, "work_concepts"); n != 1 {
		t.Fatalf("work_concepts rows = %d, want 1", n)
	}
	var score float64
	if err := db.db.QueryRow(
		"SELECT score FROM work_concepts WHERE work_id = ? AND concept_id = ?",
		"W1", "C1").Scan(&score); err != nil {
		t.Fatalf("reading score: %v", err)
	}
	if score != 0.9 {
		t.Errorf("score = %v, want 0.9", score)
	}
}

func TestInsertReference_DuplicateSkipped(t *testing.T) {
	db := newTestDB(t)

	refs := []string{"W2", "W3", "W2"}
	for _, ref := range refs {
		if err := db.InsertReference("W1", ref); err != nil {
			t.Fatalf("InsertReference(%s) error = %v", ref, err)
		}
	}
	if n := countRows(t, db, "work_references"); n != 2 {
		t.Errorf("work_references rows = %d, want 2", n)
	}
}

func TestInsertGrant_SequenceKeys(t *testing.T) {
	db := newTestDB(t)

	g := openalex.GrantRecord{
		FunderID: strPtr("https://openalex.org/F1"),
		AwardID:  strPtr("G-1"),
	}

	// Same grant cited twice in one document keeps both rows.
	if err := db.InsertGrant("W1", 0, g); err != nil {
		t.Fatalf("InsertGrant() error = %v", err)
	}
	if err := db.InsertGrant("W1", 1, g); err != nil {
		t.Fatalf("InsertGrant() error = %v", err)
	}
	if n := countRows(t, db, "work_grants"); n != 2 {
		t.Fatalf("work_grants rows = %d, want 2", n)
	}

	// Reprocessing re-asserts the same sequence without appending.
	if err := db.InsertGrant("W1", 0, g); err != nil {
		t.Fatalf("InsertGrant() reassert error = %v", err)
	}
	if n := countRows(t, db, "work_grants"); n != 2 {
		t.Errorf("work_grants rows after reassert = %d, want 2", n)
	}
}

func TestInsertLocation_SequenceKeys(t *testing.T) {
	db := newTestDB(t)

	primary := openalex.LocationRecord{
		IsPrimary: true,
		SourceID:  strPtr("https://openalex.org/S1"),
	}
	if err := db.InsertLocation("W1", 0, primary); err != nil {
		t.Fatalf("InsertLocation() error = %v", err)
	}
	if err := db.InsertLocation("W1", 1, openalex.LocationRecord{}); err != nil {
		t.Fatalf("InsertLocation() error = %v", err)
	}

	// Same sequence again overwrites in place.
	primary.License = strPtr("cc-by")
	if err := db.InsertLocation("W1", 0, primary); err != nil {
		t.Fatalf("InsertLocation() reassert error = %v", err)
	}

	if n := countRows(t, db, "work_locations"); n != 2 {
		t.Fatalf("work_locations rows = %d, want 2", n)
	}
	var license string
	if err := db.db.QueryRow(
		"SELECT license FROM work_locations WHERE work_id = ? AND seq = 0", "W1").
		Scan(&license); err != nil {
		t.Fatalf("reading location: %v", err)
	}
	if license != "cc-by" {
		t.Errorf("license = %q, want updated value", license)
	}
}

func TestLinkWorkID_ValueUpdated(t *testing.T) {
	db := newTestDB(t)

	if err := db.LinkWorkID("W1", openalex.IDPair{Type: "doi", Value: "10.1/a"}); err != nil {
		t.Fatalf("LinkWorkID() error = %v", err)
	}
	if err := db.LinkWorkID("W1", openalex.IDPair{Type: "doi", Value: "10.1/b"}); err != nil {
		t.Fatalf("LinkWorkID() relink error = %v", err)
	}

	if n := countRows(t, db, "work_ids"); n != 1 {
		t.Fatalf("work_ids rows = %d, want 1", n)
	}
	var value string
	if err := db.db.QueryRow(
		"SELECT id_value FROM work_ids WHERE work_id = ? AND id_type = ?",
		"W1", "doi").Scan(&value); err != nil {
		t.Fatalf("reading id: %v", err)
	}
	if value != "10.1/b" {
		t.Errorf("id_value = %q, want latest value", value)
	}
}
