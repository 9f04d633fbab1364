// Package openalex models OpenAlex work documents and their projection
// into flat relational records.
package openalex

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/larkul/openalex-data-bibmet-integration/internal/abstract"
)

// Document is one OpenAlex work as harvested from the API. Optional
// scalars are pointers so that absent and null survive decoding; list
// fields decode to nil when missing. Every consumer treats a nil field
// as "not present" rather than failing.
type Document struct {
	ID              *string `json:"id"`
	DOI             *string `json:"doi"`
	Title           *string `json:"title"`
	DisplayName     *string `json:"display_name"`
	PublicationYear *int    `json:"publication_year"`
	PublicationDate *string `json:"publication_date"` // literal YYYY-MM-DD, not validated here
	Language        *string `json:"language"`
	Type            *string `json:"type"`
	TypeCrossref    *string `json:"type_crossref"`
	CitedByCount    *int    `json:"cited_by_count"`
	IsRetracted     *bool   `json:"is_retracted"`
	IsParatext      *bool   `json:"is_paratext"`
	CreatedDate     *string `json:"created_date"`
	UpdatedDate     *string `json:"updated_date"`

	AbstractInvertedIndex abstract.InvertedIndex `json:"abstract_inverted_index"`
	IDs                   IDPairs                `json:"ids"`
	Authorships           []Authorship           `json:"authorships"`
	Concepts              []ConceptEntry         `json:"concepts"`
	Topics                []TopicEntry           `json:"topics"`
	PrimaryLocation       *LocationEntry         `json:"primary_location"`
	Locations             []LocationEntry        `json:"locations"`
	ReferencedWorks       []string               `json:"referenced_works"`
	Grants                []GrantEntry           `json:"grants"`
	Keywords              []ScoredEntry          `json:"keywords"`
	SDGs                  []ScoredEntry          `json:"sustainable_development_goals"`
}

// IDPair is one external identifier of a work, e.g. ("doi", "https://doi.org/...").
type IDPair struct {
	Type  string
	Value string
}

// IDPairs flattens the OpenAlex `ids` object into ordered (type, value)
// pairs. Key order of the source object is preserved; values that are
// JSON numbers (OpenAlex serializes `mag` as a number) are kept as their
// literal text. Anything that is not an object decodes to empty.
type IDPairs []IDPair

// UnmarshalJSON implements the ordered decode.
func (p *IDPairs) UnmarshalJSON(data []byte) error {
	*p = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var pairs IDPairs
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		switch v := value.(type) {
		case string:
			pairs = append(pairs, IDPair{Type: key, Value: v})
		case json.Number:
			pairs = append(pairs, IDPair{Type: key, Value: v.String()})
		case nil:
			// Null identifier values cannot be addressed; skip.
		default:
			pairs = append(pairs, IDPair{Type: key, Value: fmt.Sprint(v)})
		}
	}

	*p = pairs
	return nil
}

// Authorship is one entry of the `authorships` list.
type Authorship struct {
	Author                AuthorRef        `json:"author"`
	AuthorPosition        *string          `json:"author_position"`
	IsCorresponding       *bool            `json:"is_corresponding"`
	RawAuthorName         *string          `json:"raw_author_name"`
	RawAffiliationStrings []string         `json:"raw_affiliation_strings"`
	Institutions          []InstitutionRef `json:"institutions"`
	Countries             []string         `json:"countries"`
}

// AuthorRef is the author object nested in an authorship.
type AuthorRef struct {
	ID          *string `json:"id"`
	DisplayName *string `json:"display_name"`
	ORCID       *string `json:"orcid"`
}

// InstitutionRef is one institution attached to an authorship.
type InstitutionRef struct {
	ID          *string `json:"id"`
	DisplayName *string `json:"display_name"`
	ROR         *string `json:"ror"`
	CountryCode *string `json:"country_code"`
	Type        *string `json:"type"`
}

// ConceptEntry is one entry of the `concepts` list.
type ConceptEntry struct {
	ID          *string  `json:"id"`
	Wikidata    *string  `json:"wikidata"`
	DisplayName *string  `json:"display_name"`
	Level       *int     `json:"level"`
	Score       *float64 `json:"score"`
}

// TopicEntry is one entry of the `topics` list with its three-level
// taxonomy (subfield, field, domain).
type TopicEntry struct {
	ID          *string     `json:"id"`
	DisplayName *string     `json:"display_name"`
	Score       *float64    `json:"score"`
	Subfield    TaxonomyRef `json:"subfield"`
	Field       TaxonomyRef `json:"field"`
	Domain      TaxonomyRef `json:"domain"`
}

// TaxonomyRef is one level of the topic taxonomy.
type TaxonomyRef struct {
	ID          *string `json:"id"`
	DisplayName *string `json:"display_name"`
}

// LocationEntry is a publication location (primary or from the general
// list). The nested source carries only partial metadata; anything
// beyond the id is enriched by a later pass.
type LocationEntry struct {
	IsOA           *bool      `json:"is_oa"`
	LandingPageURL *string    `json:"landing_page_url"`
	PDFURL         *string    `json:"pdf_url"`
	Source         *SourceRef `json:"source"`
	License        *string    `json:"license"`
	Version        *string    `json:"version"`
	IsAccepted     *bool      `json:"is_accepted"`
	IsPublished    *bool      `json:"is_published"`
}

// SourceRef is the source object nested in a location.
type SourceRef struct {
	ID          *string `json:"id"`
	DisplayName *string `json:"display_name"`
}

// GrantEntry is one entry of the `grants` list.
type GrantEntry struct {
	Funder            *string `json:"funder"`
	FunderDisplayName *string `json:"funder_display_name"`
	AwardID           *string `json:"award_id"`
}

// ScoredEntry covers keywords and sustainable development goals, which
// share the same id/display_name/score shape.
type ScoredEntry struct {
	ID          *string  `json:"id"`
	DisplayName *string  `json:"display_name"`
	Score       *float64 `json:"score"`
}

// Parse decodes raw JSON content into one or more documents. The raw
// store holds both single works and whole result pages (arrays of
// works), so both shapes are accepted.
func Parse(data []byte) ([]Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if trimmed[0] == '[' {
		var docs []Document
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("parsing document list: %w", err)
		}
		return docs, nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return []Document{doc}, nil
}
