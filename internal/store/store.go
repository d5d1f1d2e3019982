// Package store persists canonical entities and pipeline runs. Two
// implementations exist: Postgres (pgx) for production and SQLite
// (modernc.org/sqlite) for local use.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-pipeline/internal/config"
	"github.com/sells-group/company-pipeline/internal/model"
)

// RunStats summarizes one pipeline run.
type RunStats struct {
	RecordsIn        int            `json:"records_in"`
	Rejected         int            `json:"rejected"`
	Entities         int            `json:"entities"`
	DuplicatesByType map[string]int `json:"duplicates_by_type"`
	Enriched         int            `json:"enriched"`
}

// Store defines the persistence interface for the pipeline.
type Store interface {
	// Entities. Upserts are keyed by registry id; entities without one
	// are always inserted as new rows.
	UpsertEntity(ctx context.Context, runID string, e *model.CanonicalEntity) error

	// Runs
	CreateRun(ctx context.Context, runID string) error
	FinishRun(ctx context.Context, runID string, stats RunStats) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite", "":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "pipeline.db"
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
