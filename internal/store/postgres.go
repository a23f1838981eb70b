package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/db"
	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
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
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	domain             TEXT PRIMARY KEY,
	company_name       TEXT,
	vertical           TEXT,
	industry           TEXT,
	hq_country         TEXT,
	employee_count     INTEGER,
	founded_year       INTEGER,
	is_public          BOOLEAN,
	revenue            BIGINT,
	monthly_visits     BIGINT,
	store_count        INTEGER,
	partner_tech       TEXT[],
	current_search     TEXT,
	exec_quote         BOOLEAN NOT NULL DEFAULT false,
	displacement_angle BOOLEAN NOT NULL DEFAULT false,
	competitors        JSONB,
	import_batch_id    TEXT,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_vertical ON companies(vertical);
CREATE INDEX IF NOT EXISTS idx_companies_import_batch ON companies(import_batch_id);

CREATE TABLE IF NOT EXISTS company_scores (
	id                TEXT PRIMARY KEY,
	domain            TEXT NOT NULL REFERENCES companies(domain) ON DELETE CASCADE,
	total             INTEGER NOT NULL,
	tier              TEXT NOT NULL,
	confidence        TEXT NOT NULL,
	data_completeness INTEGER NOT NULL,
	factors           JSONB NOT NULL,
	config_hash       TEXT,
	scored_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_company_scores_domain ON company_scores(domain, scored_at DESC);
`

// Migrate creates tables and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

var companyColumns = []string{
	"domain", "company_name", "vertical", "industry", "hq_country",
	"employee_count", "founded_year", "is_public", "revenue",
	"monthly_visits", "store_count", "partner_tech", "current_search",
	"exec_quote", "displacement_angle", "competitors", "import_batch_id",
	"updated_at",
}

// UpsertCompanies bulk-upserts company records keyed by domain.
func (s *PostgresStore) UpsertCompanies(ctx context.Context, companies []model.Company) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(companies))
	for i := range companies {
		c := &companies[i]
		var competitors []byte
		if len(c.Competitors) > 0 {
			var err error
			competitors, err = json.Marshal(c.Competitors)
			if err != nil {
				return 0, eris.Wrapf(err, "postgres: marshal competitors for %s", c.Domain)
			}
		}
		rows = append(rows, []any{
			c.Domain, nilIfEmpty(c.CompanyName), nilIfEmpty(c.Vertical),
			nilIfEmpty(c.Industry), nilIfEmpty(c.HQCountry),
			c.EmployeeCount, c.FoundedYear, c.IsPublic, c.Revenue,
			c.MonthlyVisits, c.StoreCount, c.PartnerTech,
			nilIfEmpty(c.CurrentSearch), c.ExecQuote, c.DisplacementAngle,
			competitors, nilIfEmpty(c.ImportBatchID), now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "companies",
		Columns:      companyColumns,
		ConflictKeys: []string{"domain"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert companies")
	}

	zap.L().Info("store: upserted companies", zap.Int64("count", n))
	return n, nil
}

const companySelect = `
SELECT
	domain,
	COALESCE(company_name, ''),
	COALESCE(vertical, ''),
	COALESCE(industry, ''),
	COALESCE(hq_country, ''),
	employee_count,
	founded_year,
	is_public,
	revenue,
	monthly_visits,
	store_count,
	COALESCE(partner_tech, '{}'),
	COALESCE(current_search, ''),
	exec_quote,
	displacement_angle,
	competitors,
	COALESCE(import_batch_id, ''),
	updated_at
FROM companies`

// GetCompany loads a single company record by normalized domain.
func (s *PostgresStore) GetCompany(ctx context.Context, domain string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx, companySelect+" WHERE domain = $1", domain)

	c, err := scanCompany(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: company %s", domain)
		}
		return nil, eris.Wrapf(err, "postgres: get company %s", domain)
	}
	return c, nil
}

// ListCompanies loads company records matching the filter, ordered by domain.
func (s *PostgresStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := companySelect
	var args []any
	argNum := 1

	where := ""
	if filter.Vertical != "" {
		where = fmt.Sprintf(" WHERE vertical ILIKE $%d", argNum)
		args = append(args, "%"+filter.Vertical+"%")
		argNum++
	}
	if len(filter.Domains) > 0 {
		if where == "" {
			where = fmt.Sprintf(" WHERE domain = ANY($%d)", argNum)
		} else {
			where += fmt.Sprintf(" AND domain = ANY($%d)", argNum)
		}
		args = append(args, filter.Domains)
		argNum++
	}
	query += where + " ORDER BY domain"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	pgxRows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer pgxRows.Close()

	var companies []model.Company
	for pgxRows.Next() {
		c, err := scanCompany(pgxRows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, *c)
	}
	if err := pgxRows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate companies")
	}
	return companies, nil
}

// SaveScores persists scoring results for later history queries.
func (s *PostgresStore) SaveScores(ctx context.Context, scored []scoring.ScoredCompany, configHash string) error {
	if len(scored) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, sc := range scored {
		factors, err := json.Marshal(sc.Score.Factors)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal factors for %s", sc.Company.Domain)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO company_scores
				(id, domain, total, tier, confidence, data_completeness, factors, config_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.NewString(), sc.Company.Domain, sc.Score.Total, string(sc.Score.Tier),
			string(sc.Score.Confidence), sc.Score.DataCompleteness, factors, configHash)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert score for %s", sc.Company.Domain)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit scores")
	}

	zap.L().Info("store: saved scores",
		zap.Int("count", len(scored)),
		zap.String("config_hash", configHash),
	)
	return nil
}

// LatestScores returns the most recent persisted score per domain, filtered
// by minimum total, ordered by total descending.
func (s *PostgresStore) LatestScores(ctx context.Context, minTotal, limit int) ([]StoredScore, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (domain)
				id, domain, total, tier, confidence, data_completeness,
				factors, COALESCE(config_hash, ''), scored_at
			FROM company_scores
			ORDER BY domain, scored_at DESC
		)
		SELECT * FROM latest
		WHERE total >= $1
		ORDER BY total DESC`
	args := []any{minTotal}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query latest scores")
	}
	defer rows.Close()

	var results []StoredScore
	for rows.Next() {
		var ss StoredScore
		var factorsJSON []byte
		err := rows.Scan(
			&ss.ID, &ss.Domain, &ss.Total, &ss.Tier, &ss.Confidence,
			&ss.DataCompleteness, &factorsJSON, &ss.ConfigHash, &ss.ScoredAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		if len(factorsJSON) > 0 {
			if err := json.Unmarshal(factorsJSON, &ss.Factors); err != nil {
				return nil, eris.Wrapf(err, "postgres: unmarshal factors for %s", ss.Domain)
			}
		}
		results = append(results, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate scores")
	}
	return results, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// scanCompany reads one company row in companySelect column order.
func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	var competitorsJSON []byte
	var updatedAt time.Time
	err := row.Scan(
		&c.Domain, &c.CompanyName, &c.Vertical, &c.Industry, &c.HQCountry,
		&c.EmployeeCount, &c.FoundedYear, &c.IsPublic, &c.Revenue,
		&c.MonthlyVisits, &c.StoreCount, &c.PartnerTech, &c.CurrentSearch,
		&c.ExecQuote, &c.DisplacementAngle, &competitorsJSON,
		&c.ImportBatchID, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(competitorsJSON) > 0 {
		if err := json.Unmarshal(competitorsJSON, &c.Competitors); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal competitors for %s", c.Domain)
		}
	}
	c.UpdatedAt = &updatedAt
	return &c, nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
