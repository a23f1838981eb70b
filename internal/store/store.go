// Package store persists company records and score history behind a common
// interface with Postgres and SQLite implementations.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

// CompanyFilter specifies criteria for listing companies.
type CompanyFilter struct {
	Vertical string   `json:"vertical,omitempty"`
	Domains  []string `json:"domains,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

// StoredScore is one persisted scoring result.
type StoredScore struct {
	ID               string             `json:"id"`
	Domain           string             `json:"domain"`
	Total            int                `json:"total"`
	Tier             scoring.Tier       `json:"tier"`
	Confidence       scoring.Confidence `json:"confidence"`
	DataCompleteness int                `json:"data_completeness"`
	Factors          scoring.Factors    `json:"factors"`
	ConfigHash       string             `json:"config_hash,omitempty"`
	ScoredAt         time.Time          `json:"scored_at"`
}

// Store defines the persistence interface for PartnerForge.
type Store interface {
	// Companies
	UpsertCompanies(ctx context.Context, companies []model.Company) (int64, error)
	GetCompany(ctx context.Context, domain string) (*model.Company, error)
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error)

	// Scores
	SaveScores(ctx context.Context, scored []scoring.ScoredCompany, configHash string) error
	LatestScores(ctx context.Context, minTotal int, limit int) ([]StoredScore, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a requested company does not exist.
var ErrNotFound = eris.New("store: not found")

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg.DatabaseURL, &cfg.Pool)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
