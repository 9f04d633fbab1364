package openalex

import (
	"github.com/larkul/openalex-data-bibmet-integration/internal/abstract"
)

// Bundle is the flat projection of one work document: the work row, the
// deduplicated entity groups it mentions, and the relations between
// them. Entities always precede the relations that reference them in
// load order, so a loader can walk the bundle top to bottom.
type Bundle struct {
	Work         WorkRecord
	IDs          []IDPair
	Authors      []AuthorshipRecord
	Institutions []InstitutionRecord
	Concepts     []ConceptRecord
	Topics       []TopicRecord
	Keywords     []ScoredRecord
	SDGs         []ScoredRecord
	Locations    []LocationRecord
	Sources      []SourceRecord
	References   []string
	Grants       []GrantRecord
}

// WorkRecord carries the scalar attributes of a work. A nil ID means
// the document had no addressable identifier and the bundle cannot be
// loaded.
type WorkRecord struct {
	ID              *string
	DOI             *string
	Title           *string
	DisplayName     *string
	PublicationYear *int
	PublicationDate *string
	Language        *string
	Type            *string
	TypeCrossref    *string
	CitedByCount    *int
	IsRetracted     *bool
	IsParatext      *bool
	CreatedDate     *string
	UpdatedDate     *string
	Abstract        *string
}

// AuthorshipRecord combines the author entity attributes with the
// per-work relation attributes of one authorship.
type AuthorshipRecord struct {
	AuthorID        *string
	DisplayName     *string
	ORCID           *string
	Position        *string
	IsCorresponding bool
	RawAuthorName   *string
	RawAffiliations []string
	InstitutionIDs  []string
	Countries       []string
}

// InstitutionRecord is one institution entity, deduplicated per work.
type InstitutionRecord struct {
	ID          *string
	DisplayName *string
	ROR         *string
	CountryCode *string
	Type        *string
}

// ConceptRecord is one concept entity plus its relevance score.
type ConceptRecord struct {
	ID          *string
	Wikidata    *string
	DisplayName *string
	Level       *int
	Score       *float64
}

// TopicRecord is one topic entity with its flattened taxonomy plus the
// relevance score.
type TopicRecord struct {
	ID           *string
	DisplayName  *string
	Score        *float64
	SubfieldID   *string
	SubfieldName *string
	FieldID      *string
	FieldName    *string
	DomainID     *string
	DomainName   *string
}

// ScoredRecord is a keyword or sustainability-goal entity plus score.
type ScoredRecord struct {
	ID          *string
	DisplayName *string
	Score       *float64
}

// LocationRecord is one publication location of a work. Primary and
// general-list locations are both emitted, primary first, without
// deduplication between the two lists (source behavior, kept as is).
type LocationRecord struct {
	IsPrimary      bool
	IsOA           *bool
	LandingPageURL *string
	PDFURL         *string
	SourceID       *string
	License        *string
	Version        *string
	IsAccepted     *bool
	IsPublished    *bool
}

// SourceRecord is a source entity drawn from the emitted locations.
// Only the id is guaranteed; the remaining columns are enriched by a
// later pass.
type SourceRecord struct {
	ID          *string
	DisplayName *string
}

// GrantRecord is one grant citation, repeated as given in the document.
type GrantRecord struct {
	FunderID          *string
	FunderDisplayName *string
	AwardID           *string
}

// Normalize projects one document into a Bundle. It is a pure function:
// missing optional fields degrade to nil fields or empty lists, never
// to an error, and normalizing the same document twice yields identical
// bundles.
func Normalize(doc Document) Bundle {
	authors := extractAuthors(doc)
	locations := extractLocations(doc)

	return Bundle{
		Work:         extractWork(doc),
		IDs:          []IDPair(doc.IDs),
		Authors:      authors,
		Institutions: extractInstitutions(doc),
		Concepts:     extractConcepts(doc),
		Topics:       extractTopics(doc),
		Keywords:     extractScored(doc.Keywords),
		SDGs:         extractScored(doc.SDGs),
		Locations:    locations,
		Sources:      extractSources(locations),
		References:   append([]string(nil), doc.ReferencedWorks...),
		Grants:       extractGrants(doc),
	}
}

func extractWork(doc Document) WorkRecord {
	w := WorkRecord{
		ID:              doc.ID,
		DOI:             doc.DOI,
		Title:           doc.Title,
		DisplayName:     doc.DisplayName,
		PublicationYear: doc.PublicationYear,
		PublicationDate: doc.PublicationDate,
		Language:        doc.Language,
		Type:            doc.Type,
		TypeCrossref:    doc.TypeCrossref,
		CitedByCount:    doc.CitedByCount,
		IsRetracted:     doc.IsRetracted,
		IsParatext:      doc.IsParatext,
		CreatedDate:     doc.CreatedDate,
		UpdatedDate:     doc.UpdatedDate,
	}

	if text := abstract.Rebuild(doc.AbstractInvertedIndex); text != "" {
		w.Abstract = &text
	}
	return w
}

func extractAuthors(doc Document) []AuthorshipRecord {
	records := make([]AuthorshipRecord, 0, len(doc.Authorships))
	for _, a := range doc.Authorships {
		rec := AuthorshipRecord{
			AuthorID:        a.Author.ID,
			DisplayName:     a.Author.DisplayName,
			ORCID:           a.Author.ORCID,
			Position:        a.AuthorPosition,
			RawAuthorName:   a.RawAuthorName,
			RawAffiliations: append([]string(nil), a.RawAffiliationStrings...),
			Countries:       append([]string(nil), a.Countries...),
		}
		if a.IsCorresponding != nil {
			rec.IsCorresponding = *a.IsCorresponding
		}
		for _, inst := range a.Institutions {
			if inst.ID != nil {
				rec.InstitutionIDs = append(rec.InstitutionIDs, *inst.ID)
			}
		}
		records = append(records, rec)
	}
	return records
}

// extractInstitutions deduplicates institutions by id across all
// authorships of the work; the first occurrence wins for display
// fields. Institutions without an id are skipped, since they cannot be
// addressed for upserts.
func extractInstitutions(doc Document) []InstitutionRecord {
	seen := make(map[string]bool)
	var records []InstitutionRecord
	for _, a := range doc.Authorships {
		for _, inst := range a.Institutions {
			if inst.ID == nil || seen[*inst.ID] {
				continue
			}
			seen[*inst.ID] = true
			records = append(records, InstitutionRecord{
				ID:          inst.ID,
				DisplayName: inst.DisplayName,
				ROR:         inst.ROR,
				CountryCode: inst.CountryCode,
				Type:        inst.Type,
			})
		}
	}
	return records
}

func extractConcepts(doc Document) []ConceptRecord {
	records := make([]ConceptRecord, 0, len(doc.Concepts))
	for _, c := range doc.Concepts {
		records = append(records, ConceptRecord{
			ID:          c.ID,
			Wikidata:    c.Wikidata,
			DisplayName: c.DisplayName,
			Level:       c.Level,
			Score:       c.Score,
		})
	}
	return records
}

func extractTopics(doc Document) []TopicRecord {
	records := make([]TopicRecord, 0, len(doc.Topics))
	for _, t := range doc.Topics {
		records = append(records, TopicRecord{
			ID:           t.ID,
			DisplayName:  t.DisplayName,
			Score:        t.Score,
			SubfieldID:   t.Subfield.ID,
			SubfieldName: t.Subfield.DisplayName,
			FieldID:      t.Field.ID,
			FieldName:    t.Field.DisplayName,
			DomainID:     t.Domain.ID,
			DomainName:   t.Domain.DisplayName,
		})
	}
	return records
}

func extractScored(entries []ScoredEntry) []ScoredRecord {
	records := make([]ScoredRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, ScoredRecord{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			Score:       e.Score,
		})
	}
	return records
}

func extractLocations(doc Document) []LocationRecord {
	var records []LocationRecord
	if doc.PrimaryLocation != nil {
		records = append(records, locationRecord(*doc.PrimaryLocation, true))
	}
	for _, loc := range doc.Locations {
		records = append(records, locationRecord(loc, false))
	}
	return records
}

func locationRecord(loc LocationEntry, primary bool) LocationRecord {
	rec := LocationRecord{
		IsPrimary:      primary,
		IsOA:           loc.IsOA,
		LandingPageURL: loc.LandingPageURL,
		PDFURL:         loc.PDFURL,
		License:        loc.License,
		Version:        loc.Version,
		IsAccepted:     loc.IsAccepted,
		IsPublished:    loc.IsPublished,
	}
	if loc.Source != nil {
		rec.SourceID = loc.Source.ID
	}
	return rec
}

// extractSources deduplicates source ids from the emitted locations.
// A location does not carry full source metadata, so everything beyond
// the id stays null until a later enrichment pass.
func extractSources(locations []LocationRecord) []SourceRecord {
	seen := make(map[string]bool)
	var records []SourceRecord
	for _, loc := range locations {
		if loc.SourceID == nil || seen[*loc.SourceID] {
			continue
		}
		seen[*loc.SourceID] = true
		records = append(records, SourceRecord{ID: loc.SourceID})
	}
	return records
}

func extractGrants(doc Document) []GrantRecord {
	records := make([]GrantRecord, 0, len(doc.Grants))
	for _, g := range doc.Grants {
		records = append(records, GrantRecord{
			FunderID:          g.Funder,
			FunderDisplayName: g.FunderDisplayName,
			AwardID:           g.AwardID,
		})
	}
	return records
}
