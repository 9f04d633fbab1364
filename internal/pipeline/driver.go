// Package pipeline drives raw OpenAlex documents through normalization
// and loading in restartable, bounded batches.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/larkul/openalex-data-bibmet-integration/internal/openalex"
	"github.com/larkul/openalex-data-bibmet-integration/internal/storage"
)

// reportEvery is the progress reporting cadence in documents.
const reportEvery = 100

// Stats are the running counters of one driver run.
type Stats struct {
	Attempted int `json:"attempted"` // raw documents pulled from the store
	Loaded    int `json:"loaded"`    // documents with at least one loaded work
	Failed    int `json:"failed"`    // documents that parsed or loaded nothing
	Works     int `json:"works"`     // work rows upserted
	Batches   int `json:"batches"`   // fetch rounds performed
}

// Driver pulls unprocessed raw documents in bounded batches and loads
// each one. Every document is marked processed after its single
// attempt, success or not, so the loop always terminates and a restart
// never re-runs a document it already saw. A crash mid-document leaves
// the document unprocessed; the restart re-asserts its facts
// idempotently.
type Driver struct {
	store     *storage.DB
	log       *zap.SugaredLogger
	batchSize int
}

// New creates a Driver over an open store.
func New(store *storage.DB, log *zap.SugaredLogger, batchSize int) *Driver {
	return &Driver{store: store, log: log, batchSize: batchSize}
}

// Run drains the raw store. It returns an error only for store-level
// failures (fetching a batch); per-document and per-fact failures are
// logged and counted, never fatal.
func (dr *Driver) Run() (Stats, error) {
	var stats Stats

	for {
		batch, err := dr.store.FetchUnprocessed(dr.batchSize)
		if err != nil {
			return stats, fmt.Errorf("fetching batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		stats.Batches++
		dr.log.Infow("processing batch", "batch", stats.Batches, "size", len(batch))

		for _, raw := range batch {
			dr.processDocument(raw, &stats)

			// Mark processed even on failure so the loop cannot spin on
			// one bad document. Unrecovered failures surface in the
			// failed counter and are only redone via an explicit clean.
			if err := dr.store.MarkProcessed(raw.ID); err != nil {
				dr.log.Errorw("marking document processed", "raw_id", raw.ID, "error", err)
			}

			stats.Attempted++
			if stats.Attempted%reportEvery == 0 {
				dr.log.Infow("progress",
					"attempted", stats.Attempted,
					"loaded", stats.Loaded,
					"failed", stats.Failed,
					"works", stats.Works)
			}
		}
	}

	dr.log.Infow("extraction complete",
		"attempted", stats.Attempted,
		"loaded", stats.Loaded,
		"failed", stats.Failed,
		"works", stats.Works,
		"batches", stats.Batches)
	return stats, nil
}

// processDocument parses one raw document and loads every work it
// contains. Parse failures and empty documents count as failed; the
// document still advances to processed by the caller.
func (dr *Driver) processDocument(raw storage.RawDocument, stats *Stats) {
	if len(raw.Content) == 0 {
		dr.log.Errorw("null JSON content", "raw_id", raw.ID)
		stats.Failed++
		return
	}

	docs, err := openalex.Parse(raw.Content)
	if err != nil {
		dr.log.Errorw("parsing document", "raw_id", raw.ID, "error", err)
		stats.Failed++
		return
	}

	loaded := 0
	for _, doc := range docs {
		bundle := openalex.Normalize(doc)
		if dr.loadBundle(raw.ID, bundle) {
			loaded++
			stats.Works++
		}
	}

	if loaded > 0 {
		stats.Loaded++
	} else {
		stats.Failed++
	}
}

// loadBundle writes one work's entities and relations. Each write is
// its own small transaction: a failed fact is logged and abandoned,
// and the remaining facts still load (best effort per fact, not
// all-or-nothing per document). Entities are always written before the
// relations that reference them.
func (dr *Driver) loadBundle(rawID int64, b openalex.Bundle) bool {
	workID, err := dr.store.UpsertWork(b.Work)
	if err != nil {
		dr.log.Errorw("upserting work", "raw_id", rawID, "error", err)
		return false
	}
	if workID == "" {
		dr.log.Warnw("document has no work id, skipping", "raw_id", rawID)
		return false
	}
	log := dr.log.With("work_id", workID)

	for _, pair := range b.IDs {
		if err := dr.store.LinkWorkID(workID, pair); err != nil {
			log.Errorw("linking work id", "id_type", pair.Type, "error", err)
		}
	}

	for _, inst := range b.Institutions {
		if _, err := dr.store.UpsertInstitution(inst); err != nil {
			log.Errorw("upserting institution", "error", err)
		}
	}

	for _, a := range b.Authors {
		authorID, err := dr.store.UpsertAuthor(a)
		if err != nil {
			log.Errorw("upserting author", "error", err)
			continue
		}
		if authorID == "" {
			// No natural key; the authorship cannot be linked.
			continue
		}
		if err := dr.store.LinkWorkAuthor(workID, authorID, a); err != nil {
			log.Errorw("linking author", "author_id", authorID, "error", err)
		}
		for _, instID := range a.InstitutionIDs {
			if err := dr.store.LinkAuthorInstitution(workID, authorID, instID); err != nil {
				log.Errorw("linking author institution",
					"author_id", authorID, "institution_id", instID, "error", err)
			}
		}
	}

	for _, c := range b.Concepts {
		conceptID, err := dr.store.UpsertConcept(c)
		if err != nil {
			log.Errorw("upserting concept", "error", err)
			continue
		}
		if conceptID == "" {
			continue
		}
		if err := dr.store.LinkWorkConcept(workID, conceptID, c.Score); err != nil {
			log.Errorw("linking concept", "concept_id", conceptID, "error", err)
		}
	}

	for _, t := range b.Topics {
		topicID, err := dr.store.UpsertTopic(t)
		if err != nil {
			log.Errorw("upserting topic", "error", err)
			continue
		}
		if topicID == "" {
			continue
		}
		if err := dr.store.LinkWorkTopic(workID, topicID, t.Score); err != nil {
			log.Errorw("linking topic", "topic_id", topicID, "error", err)
		}
	}

	for _, k := range b.Keywords {
		keywordID, err := dr.store.UpsertKeyword(k)
		if err != nil {
			log.Errorw("upserting keyword", "error", err)
			continue
		}
		if keywordID == "" {
			continue
		}
		if err := dr.store.LinkWorkKeyword(workID, keywordID, k.Score); err != nil {
			log.Errorw("linking keyword", "keyword_id", keywordID, "error", err)
		}
	}

	for _, s := range b.SDGs {
		sdgID, err := dr.store.UpsertSDG(s)
		if err != nil {
			log.Errorw("upserting sdg", "error", err)
			continue
		}
		if sdgID == "" {
			continue
		}
		if err := dr.store.LinkWorkSDG(workID, sdgID, s.Score); err != nil {
			log.Errorw("linking sdg", "sdg_id", sdgID, "error", err)
		}
	}

	for _, s := range b.Sources {
		if _, err := dr.store.UpsertSource(s); err != nil {
			log.Errorw("upserting source", "error", err)
		}
	}

	for seq, loc := range b.Locations {
		if err := dr.store.InsertLocation(workID, seq, loc); err != nil {
			log.Errorw("inserting location", "seq", seq, "error", err)
		}
	}

	for _, ref := range b.References {
		if err := dr.store.InsertReference(workID, ref); err != nil {
			log.Errorw("inserting reference", "referenced_work_id", ref, "error", err)
		}
	}

	for seq, g := range b.Grants {
		if err := dr.store.InsertGrant(workID, seq, g); err != nil {
			log.Errorw("inserting grant", "seq", seq, "error", err)
		}
	}

	return true
}
