package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/company-pipeline/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS entities (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
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
	revenue              REAL,
	founding_year        INTEGER,
	keywords             TEXT,
	products             TEXT,
	services             TEXT,
	description          TEXT,
	quality_score        REAL NOT NULL DEFAULT 0,
	contributing_sources TEXT,
	last_run_id          TEXT,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	stats       TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_entities_normalized_name ON entities(normalized_name);
CREATE INDEX IF NOT EXISTS idx_entities_website ON entities(website);
CREATE INDEX IF NOT EXISTS idx_entities_industry ON entities(industry);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// jsonList encodes a string slice as JSON text; SQLite has no array type.
func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal list")
	}
	return string(b), nil
}

// UpsertEntity writes one canonical entity. Entities with a registry id
// are upserted on it; entities without one are inserted as new rows.
func (s *SQLiteStore) UpsertEntity(ctx context.Context, runID string, e *model.CanonicalEntity) error {
	keywords, err := jsonList(e.Keywords)
	if err != nil {
		return err
	}
	products, err := jsonList(e.Products)
	if err != nil {
		return err
	}
	services, err := jsonList(e.Services)
	if err != nil {
		return err
	}
	sources, err := jsonList(e.ContributingSources)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO entities (
		registry_id, legal_name, normalized_name, website,
		contact_email, contact_phone, linkedin, facebook, instagram,
		industry, size_category, employee_count, revenue, founding_year,
		keywords, products, services, description,
		quality_score, contributing_sources, last_run_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var registryID any
	if e.RegistryID != "" {
		registryID = e.RegistryID
		query += `
	ON CONFLICT (registry_id) DO UPDATE SET
		legal_name=excluded.legal_name, normalized_name=excluded.normalized_name,
		website=excluded.website,
		contact_email=excluded.contact_email, contact_phone=excluded.contact_phone,
		linkedin=excluded.linkedin, facebook=excluded.facebook, instagram=excluded.instagram,
		industry=excluded.industry, size_category=excluded.size_category,
		employee_count=excluded.employee_count, revenue=excluded.revenue,
		founding_year=excluded.founding_year,
		keywords=excluded.keywords, products=excluded.products, services=excluded.services,
		description=excluded.description,
		quality_score=excluded.quality_score,
		contributing_sources=excluded.contributing_sources,
		last_run_id=excluded.last_run_id,
		updated_at=datetime('now')`
	}

	_, err = s.db.ExecContext(ctx, query,
		registryID, e.LegalName, e.NormalizedName, e.Website,
		e.ContactEmail, e.ContactPhone, e.LinkedIn, e.Facebook, e.Instagram,
		e.Industry, e.SizeCategory, e.EmployeeCount, e.Revenue, e.FoundingYear,
		keywords, products, services, e.Description,
		e.QualityScore, sources, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert entity %s", e.LegalName)
	}
	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, 'running', ?)`,
		runID, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: create run %s", runID)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run stats")
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET status='done', stats=?, finished_at=? WHERE id=?`,
		string(payload), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return nil
}
