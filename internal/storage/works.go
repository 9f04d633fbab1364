package storage

import (
	"database/sql"

	"github.com/larkul/openalex-data-bibmet-integration/internal/openalex"
)

// GetWork retrieves a work row by id. Returns nil when no row exists.
func (d *DB) GetWork(id string) (*openalex.WorkRecord, error) {
	row := d.db.QueryRow(`
		SELECT id, doi, title, display_name, publication_year, publication_date,
			language, type, type_crossref, cited_by_count,
			is_retracted, is_paratext, created_date, updated_date, abstract
		FROM works WHERE id = ?
	`, id)

	var w openalex.WorkRecord
	var workID string
	var doi, title, displayName, pubDate, language, typ, typeCrossref sql.NullString
	var createdDate, updatedDate, abstractText sql.NullString
	var pubYear, citedByCount sql.NullInt64
	var isRetracted, isParatext sql.NullBool

	err := row.Scan(
		&workID, &doi, &title, &displayName, &pubYear, &pubDate,
		&language, &typ, &typeCrossref, &citedByCount,
		&isRetracted, &isParatext, &createdDate, &updatedDate, &abstractText,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	w.ID = &workID
	w.DOI = nullStringPtr(doi)
	w.Title = nullStringPtr(title)
	w.DisplayName = nullStringPtr(displayName)
	w.PublicationYear = nullIntPtr(pubYear)
	w.PublicationDate = nullStringPtr(pubDate)
	w.Language = nullStringPtr(language)
	w.Type = nullStringPtr(typ)
	w.TypeCrossref = nullStringPtr(typeCrossref)
	w.CitedByCount = nullIntPtr(citedByCount)
	w.IsRetracted = nullBoolPtr(isRetracted)
	w.IsParatext = nullBoolPtr(isParatext)
	w.CreatedDate = nullStringPtr(createdDate)
	w.UpdatedDate = nullStringPtr(updatedDate)
	w.Abstract = nullStringPtr(abstractText)

	return &w, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullIntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

func nullBoolPtr(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	b := nb.Bool
	return &b
}
