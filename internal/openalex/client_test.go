package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWorksFilter(t *testing.T) {
	got := WorksFilter("01tm6cn81", 2015, 2024)
	want := "authorships.institutions.ror:01tm6cn81,publication_year:2015-2024"
	if got != want {
		t.Errorf("WorksFilter() = %q, want %q", got, want)
	}
}

func TestClient_WorksPage_Pagination(t *testing.T) {
	var requests []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests = append(requests, q.Get("cursor"))

		if got := q.Get("mailto"); got != "ops@example.org" {
			t.Errorf("mailto = %q, want ops@example.org", got)
		}
		if got := q.Get("per_page"); got != "200" {
			t.Errorf("per_page = %q, want 200", got)
		}

		switch q.Get("cursor") {
		case FirstCursor:
			fmt.Fprint(w, `{
				"meta": {"count": 3, "next_cursor": "page2"},
				"results": [{"id": "https://openalex.org/W1"}, {"id": "https://openalex.org/W2"}]
			}`)
		case "page2":
			fmt.Fprint(w, `{
				"meta": {"count": 3, "next_cursor": null},
				"results": [{"id": "https://openalex.org/W3"}]
			}`)
		default:
			http.Error(w, "unknown cursor", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithMailto("ops@example.org"),
	)

	ctx := context.Background()
	filter := WorksFilter("01tm6cn81", 2015, 2024)

	first, err := client.WorksPage(ctx, filter, FirstCursor)
	if err != nil {
		t.Fatalf("WorksPage() error = %v", err)
	}
	if len(first.Results) != 2 {
		t.Errorf("first page results = %d, want 2", len(first.Results))
	}
	if first.Meta.NextCursor != "page2" {
		t.Errorf("next cursor = %q, want page2", first.Meta.NextCursor)
	}

	second, err := client.WorksPage(ctx, filter, first.Meta.NextCursor)
	if err != nil {
		t.Fatalf("WorksPage() error = %v", err)
	}
	if len(second.Results) != 1 {
		t.Errorf("second page results = %d, want 1", len(second.Results))
	}
	if second.Meta.NextCursor != "" {
		t.Errorf("final next cursor = %q, want empty", second.Meta.NextCursor)
	}

	if len(requests) != 2 {
		t.Errorf("server saw %d requests, want 2", len(requests))
	}
}

func TestClient_WorksPage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.WorksPage(context.Background(), "f", FirstCursor); err == nil {
		t.Error("WorksPage() error = nil, want error on non-200 status")
	}
}

func TestPage_ResultsJSON(t *testing.T) {
	page := &Page{Results: []json.RawMessage{
		json.RawMessage(`{"id":"https://openalex.org/W1"}`),
		json.RawMessage(`{"id":"https://openalex.org/W2"}`),
	}}

	data, err := page.ResultsJSON()
	if err != nil {
		t.Fatalf("ResultsJSON() error = %v", err)
	}

	docs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(ResultsJSON()) error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("round-tripped page has %d documents, want 2", len(docs))
	}
}
