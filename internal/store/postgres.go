package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-pipeline/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS entities (
	id                   BIGSERIAL PRIMARY KEY,
	registry_id          TEXT UNIQUE,
	legal_name           TEXT NOT NULL,
	normalized_name      TEXT NOT NULL,
	website              TEXT,
	contact_email        TEXT,
	contact_phone        TEXT,
	linkedin             TEXT,
	facebook             TEXT,
	instagram            TEXT,
	industry             TEXT,
	size_category        TEXT,
	employee_count       INTEGER,
	revenue              DOUBLE PRECISION,
	founding_year        INTEGER,
	keywords             TEXT[],
	products             TEXT[],
	services             TEXT[],
	description          TEXT,
	quality_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	contributing_sources TEXT[],
	last_run_id          TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	stats       JSONB,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_entities_normalized_name ON entities(normalized_name);
CREATE INDEX IF NOT EXISTS idx_entities_website ON entities(website);
CREATE INDEX IF NOT EXISTS idx_entities_industry ON entities(industry);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const insertEntitySQL = `
	INSERT INTO entities (
		registry_id, legal_name, normalized_name, website,
		contact_email, contact_phone, linkedin, facebook, instagram,
		industry, size_category, employee_count, revenue, founding_year,
		keywords, products, services, description,
		quality_score, contributing_sources, last_run_id
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9,
		$10, $11, $12, $13, $14,
		$15, $16, $17, $18,
		$19, $20, $21
	)`

const upsertEntitySQL = insertEntitySQL + `
	ON CONFLICT (registry_id) DO UPDATE SET
		legal_name=EXCLUDED.legal_name, normalized_name=EXCLUDED.normalized_name,
		website=EXCLUDED.website,
		contact_email=EXCLUDED.contact_email, contact_phone=EXCLUDED.contact_phone,
		linkedin=EXCLUDED.linkedin, facebook=EXCLUDED.facebook, instagram=EXCLUDED.instagram,
		industry=EXCLUDED.industry, size_category=EXCLUDED.size_category,
		employee_count=EXCLUDED.employee_count, revenue=EXCLUDED.revenue,
		founding_year=EXCLUDED.founding_year,
		keywords=EXCLUDED.keywords, products=EXCLUDED.products, services=EXCLUDED.services,
		description=EXCLUDED.description,
		quality_score=EXCLUDED.quality_score,
		contributing_sources=EXCLUDED.contributing_sources,
		last_run_id=EXCLUDED.last_run_id,
		updated_at=now()`

// UpsertEntity writes one canonical entity. Entities with a registry id
// are upserted on it; entities without one are inserted as new rows.
func (s *PostgresStore) UpsertEntity(ctx context.Context, runID string, e *model.CanonicalEntity) error {
	query := insertEntitySQL
	var registryID any
	if e.RegistryID != "" {
		query = upsertEntitySQL
		registryID = e.RegistryID
	}

	_, err := s.pool.Exec(ctx, query,
		registryID, e.LegalName, e.NormalizedName, e.Website,
		e.ContactEmail, e.ContactPhone, e.LinkedIn, e.Facebook, e.Instagram,
		e.Industry, e.SizeCategory, e.EmployeeCount, e.Revenue, e.FoundingYear,
		e.Keywords, e.Products, e.Services, e.Description,
		e.QualityScore, e.ContributingSources, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert entity %s", e.LegalName)
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, runID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES ($1, 'running', $2)`,
		runID, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: create run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run stats")
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE runs SET status='done', stats=$1, finished_at=$2 WHERE id=$3`,
		payload, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	return nil
}
