// Package enrich fills gaps in canonical entities using an LLM. Each entity
// runs up to five extraction tasks plus a final quality assessment; every
// task is best-effort and an entity is never made worse by a failed call.
package enrich

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/company-pipeline/internal/config"
	"github.com/sells-group/company-pipeline/internal/model"
	"github.com/sells-group/company-pipeline/internal/normalize"
	"github.com/sells-group/company-pipeline/pkg/anthropic"
)

// Limiter gates outbound requests and collects outcome feedback.
type Limiter interface {
	Acquire(ctx context.Context) error
	ReportSuccess()
	ReportError()
	ReportRateLimited()
}

// Enricher orchestrates LLM enrichment over batches of canonical entities.
type Enricher struct {
	client    anthropic.Client
	limiter   Limiter
	ai        config.AnthropicConfig
	enrichCfg config.EnrichConfig
	taxonomy  config.TaxonomyConfig
	listCap   int

	system []anthropic.SystemBlock

	mu    sync.Mutex
	usage anthropic.TokenUsage
}

// New builds an Enricher.
func New(client anthropic.Client, limiter Limiter, cfg *config.Config) *Enricher {
	listCap := cfg.Quality.ListFieldCap
	if listCap <= 0 {
		listCap = 10
	}
	return &Enricher{
		client:    client,
		limiter:   limiter,
		ai:        cfg.Anthropic,
		enrichCfg: cfg.Enrich,
		taxonomy:  cfg.Taxonomy,
		listCap:   listCap,
		system:    anthropic.BuildCachedSystemBlocks(enrichSystemPrompt),
	}
}

// EnrichAll processes entities in fixed-size batches with a bounded worker
// pool. Entities that cannot be enriched are returned unchanged; order is
// preserved.
func (e *Enricher) EnrichAll(ctx context.Context, entities []*model.CanonicalEntity) []*model.CanonicalEntity {
	out := make([]*model.CanonicalEntity, len(entities))

	batchSize := e.enrichCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	workers := e.enrichCfg.Workers
	if workers <= 0 {
		workers = 4
	}

	for start := 0; start < len(entities); start += batchSize {
		end := start + batchSize
		if end > len(entities) {
			end = len(entities)
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i] = e.enrichEntity(gCtx, entities[i])
				return nil
			})
		}
		// Workers never return errors; enrichment is best-effort.
		_ = g.Wait()

		zap.L().Info("enrich: batch complete",
			zap.Int("from", start),
			zap.Int("to", end),
		)
	}

	e.mu.Lock()
	usage := e.usage
	e.mu.Unlock()
	usage.LogCost(e.ai.Model, "enrichment")

	return out
}

// enrichEntity runs the applicable tasks for one entity and returns an
// enriched copy. The input entity is never mutated.
func (e *Enricher) enrichEntity(ctx context.Context, entity *model.CanonicalEntity) *model.CanonicalEntity {
	enriched := entity.Clone()

	if enriched.LegalName == "" || enriched.WebsiteContent == "" {
		zap.L().Debug("enrich: insufficient context, skipping",
			zap.String("name", enriched.LegalName),
		)
		return enriched
	}

	if enriched.Industry == "" {
		e.runIndustry(ctx, enriched)
	}
	if len(enriched.Keywords) == 0 {
		e.runKeywords(ctx, enriched)
	}
	if enriched.SizeCategory == "" || enriched.SizeCategory == "Unknown" {
		e.runSize(ctx, enriched)
	}
	if len(enriched.Products) == 0 && len(enriched.Services) == 0 {
		e.runProducts(ctx, enriched)
	}
	if enriched.ContactEmail == "" || enriched.ContactPhone == "" {
		e.runContact(ctx, enriched)
	}

	e.runQuality(ctx, enriched)

	return enriched
}

func (e *Enricher) runIndustry(ctx context.Context, entity *model.CanonicalEntity) {
	content, err := e.generate(ctx, taskIndustry, buildIndustryPrompt(entity, e.taxonomy.Industries))
	if err != nil {
		return
	}
	industry, err := parseIndustry(content, e.taxonomy.Industries)
	if err != nil {
		zap.L().Debug("enrich: unparseable industry response",
			zap.String("name", entity.LegalName),
			zap.Error(err),
		)
		return
	}
	if entity.Industry == "" {
		entity.Industry = industry
	}
}

func (e *Enricher) runKeywords(ctx context.Context, entity *model.CanonicalEntity) {
	content, err := e.generate(ctx, taskKeywords, buildKeywordsPrompt(entity))
	if err != nil {
		return
	}
	keywords, err := parseKeywords(content)
	if err != nil {
		zap.L().Debug("enrich: unparseable keywords response",
			zap.String("name", entity.LegalName),
			zap.Error(err),
		)
		return
	}
	keywords = normalize.CleanList(keywords, e.listCap)
	if len(entity.Keywords) == 0 && len(keywords) > 0 {
		entity.Keywords = keywords
	}
}

func (e *Enricher) runSize(ctx context.Context, entity *model.CanonicalEntity) {
	content, err := e.generate(ctx, taskSize, buildSizePrompt(entity, e.taxonomy.CompanySizes))
	if err != nil {
		return
	}
	size, err := parseSize(content, e.taxonomy.CompanySizes)
	if err != nil {
		zap.L().Debug("enrich: unparseable size response",
			zap.String("name", entity.LegalName),
			zap.Error(err),
		)
		return
	}
	if entity.SizeCategory == "" || entity.SizeCategory == "Unknown" {
		entity.SizeCategory = size
	}
}

func (e *Enricher) runProducts(ctx context.Context, entity *model.CanonicalEntity) {
	content, err := e.generate(ctx, taskProducts, buildProductsPrompt(entity))
	if err != nil {
		return
	}
	products, services, err := parseProductsServices(content)
	if err != nil {
		zap.L().Debug("enrich: unparseable products response",
			zap.String("name", entity.LegalName),
			zap.Error(err),
		)
		return
	}
	products = normalize.CleanList(products, e.listCap)
	services = normalize.CleanList(services, e.listCap)
	if len(entity.Products) == 0 && len(products) > 0 {
		entity.Products = products
	}
	if len(entity.Services) == 0 && len(services) > 0 {
		entity.Services = services
	}
}

func (e *Enricher) runContact(ctx context.Context, entity *model.CanonicalEntity) {
	content, err := e.generate(ctx, taskContact, buildContactPrompt(entity))
	if err != nil {
		return
	}
	email, phone, err := parseContact(content)
	if err != nil {
		zap.L().Debug("enrich: unparseable contact response",
			zap.String("name", entity.LegalName),
			zap.Error(err),
		)
		return
	}
	if entity.ContactEmail == "" && email != "" {
		entity.ContactEmail = email
	}
	if entity.ContactPhone == "" && phone != "" {
		entity.ContactPhone = phone
	}
}

// runQuality blends the model's assessment with the structural score. On any
// failure the structural score from the last merge stands.
func (e *Enricher) runQuality(ctx context.Context, entity *model.CanonicalEntity) {
	structural := normalize.Score(&entity.NormalizedRecord)
	entity.QualityScore = structural

	content, err := e.generate(ctx, taskQuality, buildQualityPrompt(entity))
	if err != nil {
		return
	}
	assessed, err := parseQualityScore(content)
	if err != nil {
		zap.L().Debug("enrich: unparseable quality response",
			zap.String("name", entity.LegalName),
			zap.Error(err),
		)
		return
	}
	entity.QualityScore = normalize.Round2((structural + assessed) / 2)
}

// generate sends one prompt through the governor with a per-request timeout
// and returns the response text.
func (e *Enricher) generate(ctx context.Context, task, prompt string) (string, error) {
	if err := e.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	reqCtx := ctx
	if e.enrichCfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, e.enrichCfg.RequestTimeout)
		defer cancel()
	}

	temp := e.ai.Temperature
	resp, err := e.client.CreateMessage(reqCtx, anthropic.MessageRequest{
		Model:       e.ai.Model,
		MaxTokens:   e.ai.MaxTokens,
		System:      e.system,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		if anthropic.IsRateLimited(err) {
			e.limiter.ReportRateLimited()
		} else {
			e.limiter.ReportError()
		}
		zap.L().Warn("enrich: generation failed",
			zap.String("task", task),
			zap.Error(err),
		)
		return "", err
	}
	e.limiter.ReportSuccess()

	e.mu.Lock()
	e.usage.Add(resp.Usage)
	e.mu.Unlock()

	content := resp.Text()
	conf := confidence(content, task, e.taxonomy.Industries, e.taxonomy.CompanySizes)
	zap.L().Debug("enrich: response",
		zap.String("task", task),
		zap.Float64("confidence", conf),
		zap.Int("length", len(content)),
	)
	return content, nil
}
