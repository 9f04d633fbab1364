package storage

import (
	"fmt"
	"testing"
)

func TestRawStore_FetchOrderAndLimit(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		if _, err := db.InsertRaw([]byte(fmt.Sprintf(`{"id": "W%d"}`, i))); err != nil {
			t.Fatalf("InsertRaw() error = %v", err)
		}
	}

	docs, err := db.FetchUnprocessed(3)
	if err != nil {
		t.Fatalf("FetchUnprocessed() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("FetchUnprocessed(3) returned %d docs, want 3", len(docs))
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].ID <= docs[i-1].ID {
			t.Errorf("documents not ordered by id ascending: %d after %d", docs[i].ID, docs[i-1].ID)
		}
	}
}

func TestRawStore_MarkProcessed(t *testing.T) {
	db := newTestDB(t)

	id, err := db.InsertRaw([]byte(`{"id": "W1"}`))
	if err != nil {
		t.Fatalf("InsertRaw() error = %v", err)
	}

	if err := db.MarkProcessed(id); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	// Idempotent: marking twice is fine.
	if err := db.MarkProcessed(id); err != nil {
		t.Fatalf("MarkProcessed() second call error = %v", err)
	}

	docs, err := db.FetchUnprocessed(10)
	if err != nil {
		t.Fatalf("FetchUnprocessed() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("FetchUnprocessed() returned %d docs after marking, want 0", len(docs))
	}

	total, unprocessed, err := db.CountRaw()
	if err != nil {
		t.Fatalf("CountRaw() error = %v", err)
	}
	if total != 1 || unprocessed != 0 {
		t.Errorf("CountRaw() = (%d, %d), want (1, 0)", total, unprocessed)
	}
}

func TestRawStore_FetchSkipsProcessed(t *testing.T) {
	db := newTestDB(t)

	first, _ := db.InsertRaw([]byte(`{"id": "W1"}`))
	second, _ := db.InsertRaw([]byte(`{"id": "W2"}`))

	if err := db.MarkProcessed(first); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	docs, err := db.FetchUnprocessed(10)
	if err != nil {
		t.Fatalf("FetchUnprocessed() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != second {
		t.Errorf("FetchUnprocessed() = %v, want only id %d", docs, second)
	}
}
