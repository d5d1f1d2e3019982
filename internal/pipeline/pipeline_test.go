package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-pipeline/internal/config"
	"github.com/sells-group/company-pipeline/internal/model"
	"github.com/sells-group/company-pipeline/internal/store"
)

func testPipelineConfig() *config.Config {
	return &config.Config{
		Quality: config.QualityConfig{
			MinNameLength:       3,
			MaxNameLength:       200,
			ListFieldCap:        10,
			FuzzyMatchThreshold: 85,
			DefaultPhoneRegion:  "SG",
		},
		Taxonomy: config.TaxonomyConfig{
			Industries:       config.DefaultIndustries,
			IndustrySynonyms: config.DefaultIndustrySynonyms,
			CompanySizes:     config.DefaultCompanySizes,
		},
		Enrich: config.EnrichConfig{
			BatchSize:      25,
			Workers:        2,
			RequestTimeout: 5 * time.Second,
		},
	}
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func raw(source string, fields map[string]any) *model.RawRecord {
	return &model.RawRecord{SourceID: source, Fields: fields}
}

func TestPipeline_Run(t *testing.T) {
	p := New(testPipelineConfig(), testStore(t), nil)

	records := []*model.RawRecord{
		raw("registry", map[string]any{
			"company_name": "Acme Pte Ltd",
			"uen":          "201812345A",
		}),
		raw("scrape", map[string]any{
			"company_name": "ACME PTE. LTD.",
			"website":      "https://acme.sg",
		}),
		raw("directory", map[string]any{
			"company_name": "Beta Holdings Pte Ltd",
		}),
		// Rejected: name below the minimum length.
		raw("directory", map[string]any{
			"company_name": "ab",
		}),
	}

	stats, err := p.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.RecordsIn)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 2, stats.Entities)
	assert.Equal(t, 1, stats.DuplicatesByType[model.MatchNameFuzzy])
	assert.Zero(t, stats.Enriched)
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	p := New(testPipelineConfig(), testStore(t), nil)

	stats, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Entities)
}
