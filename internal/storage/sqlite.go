// Package storage implements the relational store: the raw-document
// table the harvester fills, the derived entity and relation tables the
// pipeline loads, and the idempotent upsert operations between them.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding both the raw store and
// the derived relational schema.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path and
// bootstraps the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates all tables if they don't exist. Entity tables
// are keyed by natural id; relation tables by the composite of the
// participant ids. Locations and grants have no natural composite key,
// so their rows are keyed by (work_id, seq) where seq is the emission
// index of the normalizer, which re-emits identically on reprocessing.
func createSchema(db *sql.DB) error {
	schema := `
		-- Raw harvested documents pending normalization
		CREATE TABLE IF NOT EXISTS raw_json (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			json_content TEXT,
			processed INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_raw_json_processed ON raw_json(processed);

		-- Works
		CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			doi TEXT,
			title TEXT,
			display_name TEXT,
			publication_year INTEGER,
			publication_date TEXT,
			language TEXT,
			type TEXT,
			type_crossref TEXT,
			cited_by_count INTEGER,
			is_retracted INTEGER,
			is_paratext INTEGER,
			created_date TEXT,
			updated_date TEXT,
			abstract TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_works_doi ON works(doi) WHERE doi IS NOT NULL;

		CREATE TABLE IF NOT EXISTS work_ids (
			work_id TEXT NOT NULL,
			id_type TEXT NOT NULL,
			id_value TEXT,
			PRIMARY KEY (work_id, id_type)
		);

		-- Entity tables keyed by natural id
		CREATE TABLE IF NOT EXISTS authors (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			orcid TEXT
		);

		CREATE TABLE IF NOT EXISTS institutions (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			ror TEXT,
			country_code TEXT,
			type TEXT
		);

		CREATE TABLE IF NOT EXISTS concepts (
			id TEXT PRIMARY KEY,
			wikidata TEXT,
			display_name TEXT,
			level INTEGER
		);

		CREATE TABLE IF NOT EXISTS topics (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			subfield_id TEXT,
			subfield_name TEXT,
			field_id TEXT,
			field_name TEXT,
			domain_id TEXT,
			domain_name TEXT
		);

		CREATE TABLE IF NOT EXISTS keywords (
			id TEXT PRIMARY KEY,
			display_name TEXT
		);

		CREATE TABLE IF NOT EXISTS sdgs (
			id TEXT PRIMARY KEY,
			display_name TEXT
		);

		-- Sources carry only the id at load time; the remaining columns
		-- are filled by a later enrichment pass.
		CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			issn_l TEXT,
			type TEXT,
			host_organization TEXT
		);

		-- Relation tables keyed by composite participant ids
		CREATE TABLE IF NOT EXISTS work_authors (
			work_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_position TEXT,
			is_corresponding INTEGER NOT NULL DEFAULT 0,
			raw_author_name TEXT,
			raw_affiliations_json TEXT,
			countries_json TEXT,
			PRIMARY KEY (work_id, author_id)
		);

		CREATE TABLE IF NOT EXISTS author_institutions (
			work_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			institution_id TEXT NOT NULL,
			PRIMARY KEY (work_id, author_id, institution_id)
		);

		CREATE TABLE IF NOT EXISTS work_concepts (
			work_id TEXT NOT NULL,
			concept_id TEXT NOT NULL,
			score REAL,
			PRIMARY KEY (work_id, concept_id)
		);

		CREATE TABLE IF NOT EXISTS work_topics (
			work_id TEXT NOT NULL,
			topic_id TEXT NOT NULL,
			score REAL,
			PRIMARY KEY (work_id, topic_id)
		);

		CREATE TABLE IF NOT EXISTS work_keywords (
			work_id TEXT NOT NULL,
			keyword_id TEXT NOT NULL,
			score REAL,
			PRIMARY KEY (work_id, keyword_id)
		);

		CREATE TABLE IF NOT EXISTS work_sdgs (
			work_id TEXT NOT NULL,
			sdg_id TEXT NOT NULL,
			score REAL,
			PRIMARY KEY (work_id, sdg_id)
		);

		CREATE TABLE IF NOT EXISTS work_locations (
			work_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			source_id TEXT,
			is_primary INTEGER NOT NULL DEFAULT 0,
			is_oa INTEGER,
			landing_page_url TEXT,
			pdf_url TEXT,
			license TEXT,
			version TEXT,
			is_accepted INTEGER,
			is_published INTEGER,
			PRIMARY KEY (work_id, seq)
		);

		CREATE TABLE IF NOT EXISTS work_references (
			work_id TEXT NOT NULL,
			referenced_work_id TEXT NOT NULL,
			PRIMARY KEY (work_id, referenced_work_id)
		);

		CREATE TABLE IF NOT EXISTS work_grants (
			work_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			funder_id TEXT,
			funder_display_name TEXT,
			award_id TEXT,
			PRIMARY KEY (work_id, seq)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
