package storage

import (
	"encoding/json"
	"fmt"

	"github.com/larkul/openalex-data-bibmet-integration/internal/openalex"
)

// Relation links are conflict-aware inserts keyed by the composite of
// the participant ids. A relation is a fact about one processing pass:
// re-asserting it on reprocessing updates attributes in place and never
// duplicates rows.

// LinkWorkID records one external identifier of a work.
func (d *DB) LinkWorkID(workID string, pair openalex.IDPair) error {
	_, err := d.db.Exec(`
		INSERT INTO work_ids (work_id, id_type, id_value)
		VALUES (?, ?, ?)
		ON CONFLICT(work_id, id_type) DO UPDATE SET
			id_value = excluded.id_value
	`, workID, pair.Type, pair.Value)
	if err != nil {
		return fmt.Errorf("linking work %s id %s: %w", workID, pair.Type, err)
	}
	return nil
}

// LinkWorkAuthor records one authorship with its position and
// correspondence attributes.
func (d *DB) LinkWorkAuthor(workID, authorID string, a openalex.AuthorshipRecord) error {
	affiliations, err := marshalList(a.RawAffiliations)
	if err != nil {
		return fmt.Errorf("marshaling affiliations for %s: %w", authorID, err)
	}
	countries, err := marshalList(a.Countries)
	if err != nil {
		return fmt.Errorf("marshaling countries for %s: %w", authorID, err)
	}

	_, err = d.db.Exec(`
		INSERT INTO work_authors (
			work_id, author_id, author_position, is_corresponding,
			raw_author_name, raw_affiliations_json, countries_json
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(work_id, author_id) DO UPDATE SET
			author_position = excluded.author_position,
			is_corresponding = excluded.is_corresponding,
			raw_author_name = excluded.raw_author_name,
			raw_affiliations_json = excluded.raw_affiliations_json,
			countries_json = excluded.countries_json
	`, workID, authorID, a.Position, a.IsCorresponding,
		a.RawAuthorName, nullableString(affiliations), nullableString(countries))
	if err != nil {
		return fmt.Errorf("linking work %s author %s: %w", workID, authorID, err)
	}
	return nil
}

// LinkAuthorInstitution records an author's institution for one work.
func (d *DB) LinkAuthorInstitution(workID, authorID, institutionID string) error {
	_, err := d.db.Exec(`
		INSERT INTO author_institutions (work_id, author_id, institution_id)
		VALUES (?, ?, ?)
		ON CONFLICT(work_id, author_id, institution_id) DO NOTHING
	`, workID, authorID, institutionID)
	if err != nil {
		return fmt.Errorf("linking author %s institution %s: %w", authorID, institutionID, err)
	}
	return nil
}

// LinkWorkConcept records a scored work-concept relation.
func (d *DB) LinkWorkConcept(workID, conceptID string, score *float64) error {
	return d.linkScored("work_concepts", "concept_id", workID, conceptID, score)
}

// LinkWorkTopic records a scored work-topic relation.
func (d *DB) LinkWorkTopic(workID, topicID string, score *float64) error {
	return d.linkScored("work_topics", "topic_id", workID, topicID, score)
}

// LinkWorkKeyword records a scored work-keyword relation.
func (d *DB) LinkWorkKeyword(workID, keywordID string, score *float64) error {
	return d.linkScored("work_keywords", "keyword_id", workID, keywordID, score)
}

// LinkWorkSDG records a scored work-SDG relation.
func (d *DB) LinkWorkSDG(workID, sdgID string, score *float64) error {
	return d.linkScored("work_sdgs", "sdg_id", workID, sdgID, score)
}

func (d *DB) linkScored(table, idCol, workID, entityID string, score *float64) error {
	_, err := d.db.Exec(`
		INSERT INTO `+table+` (work_id, `+idCol+`, score)
		VALUES (?, ?, ?)
		ON CONFLICT(work_id, `+idCol+`) DO UPDATE SET
			score = excluded.score
	`, workID, entityID, score)
	if err != nil {
		return fmt.Errorf("linking work %s %s %s: %w", workID, idCol, entityID, err)
	}
	return nil
}

// InsertLocation records one publication location under its emission
// index, so reprocessing overwrites the same rows instead of appending.
func (d *DB) InsertLocation(workID string, seq int, loc openalex.LocationRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO work_locations (
			work_id, seq, source_id, is_primary, is_oa,
			landing_page_url, pdf_url, license, version,
			is_accepted, is_published
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(work_id, seq) DO UPDATE SET
			source_id = excluded.source_id,
			is_primary = excluded.is_primary,
			is_oa = excluded.is_oa,
			landing_page_url = excluded.landing_page_url,
			pdf_url = excluded.pdf_url,
			license = excluded.license,
			version = excluded.version,
			is_accepted = excluded.is_accepted,
			is_published = excluded.is_published
	`, workID, seq, loc.SourceID, loc.IsPrimary, loc.IsOA,
		loc.LandingPageURL, loc.PDFURL, loc.License, loc.Version,
		loc.IsAccepted, loc.IsPublished)
	if err != nil {
		return fmt.Errorf("inserting location %d for work %s: %w", seq, workID, err)
	}
	return nil
}

// InsertReference records a referenced-work id, skipping duplicates.
func (d *DB) InsertReference(workID, referencedWorkID string) error {
	_, err := d.db.Exec(`
		INSERT INTO work_references (work_id, referenced_work_id)
		VALUES (?, ?)
		ON CONFLICT(work_id, referenced_work_id) DO NOTHING
	`, workID, referencedWorkID)
	if err != nil {
		return fmt.Errorf("inserting reference %s for work %s: %w", referencedWorkID, workID, err)
	}
	return nil
}

// InsertGrant records one grant citation under its emission index. A
// work citing the same grant twice keeps two rows; reprocessing the
// document re-asserts the same sequence without duplicating.
func (d *DB) InsertGrant(workID string, seq int, g openalex.GrantRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO work_grants (work_id, seq, funder_id, funder_display_name, award_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(work_id, seq) DO UPDATE SET
			funder_id = excluded.funder_id,
			funder_display_name = excluded.funder_display_name,
			award_id = excluded.award_id
	`, workID, seq, g.FunderID, g.FunderDisplayName, g.AwardID)
	if err != nil {
		return fmt.Errorf("inserting grant %d for work %s: %w", seq, workID, err)
	}
	return nil
}

func marshalList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
