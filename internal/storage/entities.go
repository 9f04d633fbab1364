package storage

import (
	"fmt"

	"github.com/larkul/openalex-data-bibmet-integration/internal/openalex"
)

// Entity upserts are single atomic insert-or-update statements keyed by
// natural id. Conflict policy is last-non-null-wins: a provided non-null
// attribute overwrites the stored value, a null one never erases it
// (COALESCE on the excluded row). An entity with a nil id is a no-op
// returning an empty stored key; callers skip dependent relations.

// UpsertWork creates or updates a work row and returns the stored key.
func (d *DB) UpsertWork(w openalex.WorkRecord) (string, error) {
	if w.ID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO works (
			id, doi, title, display_name, publication_year, publication_date,
			language, type, type_crossref, cited_by_count,
			is_retracted, is_paratext, created_date, updated_date, abstract
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doi = COALESCE(excluded.doi, doi),
			title = COALESCE(excluded.title, title),
			display_name = COALESCE(excluded.display_name, display_name),
			publication_year = COALESCE(excluded.publication_year, publication_year),
			publication_date = COALESCE(excluded.publication_date, publication_date),
			language = COALESCE(excluded.language, language),
			type = COALESCE(excluded.type, type),
			type_crossref = COALESCE(excluded.type_crossref, type_crossref),
			cited_by_count = COALESCE(excluded.cited_by_count, cited_by_count),
			is_retracted = COALESCE(excluded.is_retracted, is_retracted),
			is_paratext = COALESCE(excluded.is_paratext, is_paratext),
			created_date = COALESCE(excluded.created_date, created_date),
			updated_date = COALESCE(excluded.updated_date, updated_date),
			abstract = COALESCE(excluded.abstract, abstract)
	`, *w.ID, w.DOI, w.Title, w.DisplayName, w.PublicationYear, w.PublicationDate,
		w.Language, w.Type, w.TypeCrossref, w.CitedByCount,
		w.IsRetracted, w.IsParatext, w.CreatedDate, w.UpdatedDate, w.Abstract)
	if err != nil {
		return "", fmt.Errorf("upserting work %s: %w", *w.ID, err)
	}
	return *w.ID, nil
}

// UpsertAuthor creates or updates an author from an authorship record.
func (d *DB) UpsertAuthor(a openalex.AuthorshipRecord) (string, error) {
	if a.AuthorID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO authors (id, display_name, orcid)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = COALESCE(excluded.display_name, display_name),
			orcid = COALESCE(excluded.orcid, orcid)
	`, *a.AuthorID, a.DisplayName, a.ORCID)
	if err != nil {
		return "", fmt.Errorf("upserting author %s: %w", *a.AuthorID, err)
	}
	return *a.AuthorID, nil
}

// UpsertInstitution creates or updates an institution.
func (d *DB) UpsertInstitution(inst openalex.InstitutionRecord) (string, error) {
	if inst.ID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO institutions (id, display_name, ror, country_code, type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = COALESCE(excluded.display_name, display_name),
			ror = COALESCE(excluded.ror, ror),
			country_code = COALESCE(excluded.country_code, country_code),
			type = COALESCE(excluded.type, type)
	`, *inst.ID, inst.DisplayName, inst.ROR, inst.CountryCode, inst.Type)
	if err != nil {
		return "", fmt.Errorf("upserting institution %s: %w", *inst.ID, err)
	}
	return *inst.ID, nil
}

// UpsertConcept creates or updates a concept.
func (d *DB) UpsertConcept(c openalex.ConceptRecord) (string, error) {
	if c.ID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO concepts (id, wikidata, display_name, level)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			wikidata = COALESCE(excluded.wikidata, wikidata),
			display_name = COALESCE(excluded.display_name, display_name),
			level = COALESCE(excluded.level, level)
	`, *c.ID, c.Wikidata, c.DisplayName, c.Level)
	if err != nil {
		return "", fmt.Errorf("upserting concept %s: %w", *c.ID, err)
	}
	return *c.ID, nil
}

// UpsertTopic creates or updates a topic with its flattened taxonomy.
func (d *DB) UpsertTopic(t openalex.TopicRecord) (string, error) {
	if t.ID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO topics (
			id, display_name, subfield_id, subfield_name,
			field_id, field_name, domain_id, domain_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = COALESCE(excluded.display_name, display_name),
			subfield_id = COALESCE(excluded.subfield_id, subfield_id),
			subfield_name = COALESCE(excluded.subfield_name, subfield_name),
			field_id = COALESCE(excluded.field_id, field_id),
			field_name = COALESCE(excluded.field_name, field_name),
			domain_id = COALESCE(excluded.domain_id, domain_id),
			domain_name = COALESCE(excluded.domain_name, domain_name)
	`, *t.ID, t.DisplayName, t.SubfieldID, t.SubfieldName,
		t.FieldID, t.FieldName, t.DomainID, t.DomainName)
	if err != nil {
		return "", fmt.Errorf("upserting topic %s: %w", *t.ID, err)
	}
	return *t.ID, nil
}

// UpsertKeyword creates or updates a keyword.
func (d *DB) UpsertKeyword(k openalex.ScoredRecord) (string, error) {
	return d.upsertScored("keywords", "keyword", k)
}

// UpsertSDG creates or updates a sustainable development goal.
func (d *DB) UpsertSDG(s openalex.ScoredRecord) (string, error) {
	return d.upsertScored("sdgs", "sdg", s)
}

func (d *DB) upsertScored(table, kind string, rec openalex.ScoredRecord) (string, error) {
	if rec.ID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO `+table+` (id, display_name)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = COALESCE(excluded.display_name, display_name)
	`, *rec.ID, rec.DisplayName)
	if err != nil {
		return "", fmt.Errorf("upserting %s %s: %w", kind, *rec.ID, err)
	}
	return *rec.ID, nil
}

// UpsertSource creates or updates a source. Only the id is known at
// load time; enrichment columns must survive later placeholder upserts,
// which the COALESCE conflict policy guarantees.
func (d *DB) UpsertSource(s openalex.SourceRecord) (string, error) {
	if s.ID == nil {
		return "", nil
	}

	_, err := d.db.Exec(`
		INSERT INTO sources (id, display_name)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = COALESCE(excluded.display_name, display_name)
	`, *s.ID, s.DisplayName)
	if err != nil {
		return "", fmt.Errorf("upserting source %s: %w", *s.ID, err)
	}
	return *s.ID, nil
}
