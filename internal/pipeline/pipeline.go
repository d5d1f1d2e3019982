// Package pipeline wires the processing stages together: normalize raw
// records, resolve duplicates, enrich the surviving entities, persist.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-pipeline/internal/config"
	"github.com/sells-group/company-pipeline/internal/enrich"
	"github.com/sells-group/company-pipeline/internal/model"
	"github.com/sells-group/company-pipeline/internal/normalize"
	"github.com/sells-group/company-pipeline/internal/resolve"
	"github.com/sells-group/company-pipeline/internal/store"
)

// Pipeline runs raw records through the full processing chain.
type Pipeline struct {
	cfg        *config.Config
	normalizer *normalize.Normalizer
	enricher   *enrich.Enricher
	st         store.Store
}

// New builds a Pipeline. The enricher may be nil to skip enrichment.
func New(cfg *config.Config, st store.Store, enricher *enrich.Enricher) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		normalizer: normalize.New(cfg.Quality, cfg.Taxonomy),
		enricher:   enricher,
		st:         st,
	}
}

// Run processes one batch of raw records end to end and returns the run
// statistics that were persisted.
func (p *Pipeline) Run(ctx context.Context, records []*model.RawRecord) (*store.RunStats, error) {
	runID := uuid.New().String()
	if err := p.st.CreateRun(ctx, runID); err != nil {
		return nil, err
	}
	zap.L().Info("pipeline: run started",
		zap.String("run_id", runID),
		zap.Int("records", len(records)),
	)

	stats := &store.RunStats{RecordsIn: len(records)}

	resolver := resolve.NewResolver(p.cfg.Quality.FuzzyMatchThreshold, p.cfg.Quality.ListFieldCap)
	for _, raw := range records {
		rec, err := p.normalizer.Normalize(*raw)
		if err != nil {
			stats.Rejected++
			zap.L().Debug("pipeline: record rejected",
				zap.String("source", raw.SourceID),
				zap.Error(err),
			)
			continue
		}
		resolver.Add(rec)
	}

	entities := resolver.Entities()
	stats.Entities = len(entities)
	stats.DuplicatesByType = resolver.MatchCounts()

	if p.enricher != nil {
		enriched := p.enricher.EnrichAll(ctx, entities)
		for i := range enriched {
			if populatedFields(enriched[i]) > populatedFields(entities[i]) {
				stats.Enriched++
			}
		}
		entities = enriched
	}

	for _, e := range entities {
		if err := p.st.UpsertEntity(ctx, runID, e); err != nil {
			return nil, eris.Wrap(err, "pipeline: persist entity")
		}
	}

	if err := p.st.FinishRun(ctx, runID, *stats); err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: run finished",
		zap.String("run_id", runID),
		zap.Int("records_in", stats.RecordsIn),
		zap.Int("rejected", stats.Rejected),
		zap.Int("entities", stats.Entities),
		zap.Any("duplicates_by_type", stats.DuplicatesByType),
		zap.Int("enriched", stats.Enriched),
	)
	return stats, nil
}

// populatedFields counts the fields that carry a value, the same
// indicators the quality score weighs.
func populatedFields(e *model.CanonicalEntity) int {
	n := 0
	for _, s := range []string{
		e.RegistryID, e.LegalName, e.Website, e.Industry,
		e.ContactEmail, e.ContactPhone, e.SizeCategory, e.Description,
	} {
		if s != "" {
			n++
		}
	}
	if e.HasSocialLink() {
		n++
	}
	if e.EmployeeCount != nil {
		n++
	}
	if e.FoundingYear != nil {
		n++
	}
	for _, list := range [][]string{e.Keywords, e.Products, e.Services} {
		if len(list) > 0 {
			n++
		}
	}
	return n
}
