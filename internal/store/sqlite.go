package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local work
// without a Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	domain             TEXT PRIMARY KEY,
	company_name       TEXT,
	vertical           TEXT,
	industry           TEXT,
	hq_country         TEXT,
	employee_count     INTEGER,
	founded_year       INTEGER,
	is_public          INTEGER,
	revenue            INTEGER,
	monthly_visits     INTEGER,
	store_count        INTEGER,
	partner_tech       TEXT,
	current_search     TEXT,
	exec_quote         INTEGER NOT NULL DEFAULT 0,
	displacement_angle INTEGER NOT NULL DEFAULT 0,
	competitors        TEXT,
	import_batch_id    TEXT,
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_companies_vertical ON companies(vertical);

CREATE TABLE IF NOT EXISTS company_scores (
	id                TEXT PRIMARY KEY,
	domain            TEXT NOT NULL REFERENCES companies(domain),
	total             INTEGER NOT NULL,
	tier              TEXT NOT NULL,
	confidence        TEXT NOT NULL,
	data_completeness INTEGER NOT NULL,
	factors           TEXT NOT NULL,
	config_hash       TEXT,
	scored_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_company_scores_domain ON company_scores(domain, scored_at);
`

// Migrate creates tables and indexes if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// UpsertCompanies upserts company records keyed by domain.
func (s *SQLiteStore) UpsertCompanies(ctx context.Context, companies []model.Company) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companies
			(domain, company_name, vertical, industry, hq_country,
			 employee_count, founded_year, is_public, revenue, monthly_visits,
			 store_count, partner_tech, current_search, exec_quote,
			 displacement_angle, competitors, import_batch_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			company_name = excluded.company_name,
			vertical = excluded.vertical,
			industry = excluded.industry,
			hq_country = excluded.hq_country,
			employee_count = excluded.employee_count,
			founded_year = excluded.founded_year,
			is_public = excluded.is_public,
			revenue = excluded.revenue,
			monthly_visits = excluded.monthly_visits,
			store_count = excluded.store_count,
			partner_tech = excluded.partner_tech,
			current_search = excluded.current_search,
			exec_quote = excluded.exec_quote,
			displacement_angle = excluded.displacement_angle,
			competitors = excluded.competitors,
			import_batch_id = excluded.import_batch_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var n int64
	for i := range companies {
		c := &companies[i]
		partnerTech, err := marshalOrNil(c.PartnerTech)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal partner tech for %s", c.Domain)
		}
		competitors, err := marshalOrNil(c.Competitors)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal competitors for %s", c.Domain)
		}
		_, err = stmt.ExecContext(ctx,
			c.Domain, nilIfEmpty(c.CompanyName), nilIfEmpty(c.Vertical),
			nilIfEmpty(c.Industry), nilIfEmpty(c.HQCountry),
			c.EmployeeCount, c.FoundedYear, c.IsPublic, c.Revenue,
			c.MonthlyVisits, c.StoreCount, partnerTech,
			nilIfEmpty(c.CurrentSearch), c.ExecQuote, c.DisplacementAngle,
			competitors, nilIfEmpty(c.ImportBatchID), now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert %s", c.Domain)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

const sqliteCompanySelect = `
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
	partner_tech,
	COALESCE(current_search, ''),
	exec_quote,
	displacement_angle,
	competitors,
	COALESCE(import_batch_id, ''),
	updated_at
FROM companies`

// GetCompany loads a single company record by normalized domain.
func (s *SQLiteStore) GetCompany(ctx context.Context, domain string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx, sqliteCompanySelect+" WHERE domain = ?", domain)
	c, err := scanSQLiteCompany(row.Scan)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: company %s", domain)
		}
		return nil, eris.Wrapf(err, "sqlite: get company %s", domain)
	}
	return c, nil
}

// ListCompanies loads company records matching the filter, ordered by domain.
func (s *SQLiteStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := sqliteCompanySelect
	var args []any

	where := ""
	if filter.Vertical != "" {
		where = " WHERE vertical LIKE ?"
		args = append(args, "%"+filter.Vertical+"%")
	}
	if len(filter.Domains) > 0 {
		placeholders := ""
		for i, d := range filter.Domains {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, d)
		}
		clause := fmt.Sprintf("domain IN (%s)", placeholders)
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}
	query += where + " ORDER BY domain"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close() //nolint:errcheck

	var companies []model.Company
	for rows.Next() {
		c, err := scanSQLiteCompany(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate companies")
	}
	return companies, nil
}

// SaveScores persists scoring results.
func (s *SQLiteStore) SaveScores(ctx context.Context, scored []scoring.ScoredCompany, configHash string) error {
	if len(scored) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, sc := range scored {
		factors, err := json.Marshal(sc.Score.Factors)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal factors for %s", sc.Company.Domain)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO company_scores
				(id, domain, total, tier, confidence, data_completeness, factors, config_hash, scored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), sc.Company.Domain, sc.Score.Total, string(sc.Score.Tier),
			string(sc.Score.Confidence), sc.Score.DataCompleteness, string(factors),
			configHash, time.Now().UTC())
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert score for %s", sc.Company.Domain)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit scores")
	}
	return nil
}

// LatestScores returns the most recent persisted score per domain, filtered
// by minimum total, ordered by total descending.
func (s *SQLiteStore) LatestScores(ctx context.Context, minTotal, limit int) ([]StoredScore, error) {
	query := `
		SELECT id, domain, total, tier, confidence, data_completeness,
		       factors, COALESCE(config_hash, ''), scored_at
		FROM company_scores cs
		WHERE scored_at = (
			SELECT MAX(scored_at) FROM company_scores WHERE domain = cs.domain
		) AND total >= ?
		ORDER BY total DESC`
	args := []any{minTotal}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query latest scores")
	}
	defer rows.Close() //nolint:errcheck

	var results []StoredScore
	for rows.Next() {
		var ss StoredScore
		var factorsJSON string
		err := rows.Scan(
			&ss.ID, &ss.Domain, &ss.Total, &ss.Tier, &ss.Confidence,
			&ss.DataCompleteness, &factorsJSON, &ss.ConfigHash, &ss.ScoredAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		if factorsJSON != "" {
			if err := json.Unmarshal([]byte(factorsJSON), &ss.Factors); err != nil {
				return nil, eris.Wrapf(err, "sqlite: unmarshal factors for %s", ss.Domain)
			}
		}
		results = append(results, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate scores")
	}
	return results, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanSQLiteCompany reads one company row in sqliteCompanySelect column order.
func scanSQLiteCompany(scan func(dest ...any) error) (*model.Company, error) {
	var c model.Company
	var partnerTech, competitors sql.NullString
	var employeeCount, foundedYear, storeCount sql.NullInt64
	var revenue, monthlyVisits sql.NullInt64
	var isPublic sql.NullBool
	var updatedAt time.Time

	err := scan(
		&c.Domain, &c.CompanyName, &c.Vertical, &c.Industry, &c.HQCountry,
		&employeeCount, &foundedYear, &isPublic, &revenue, &monthlyVisits,
		&storeCount, &partnerTech, &c.CurrentSearch, &c.ExecQuote,
		&c.DisplacementAngle, &competitors, &c.ImportBatchID, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if employeeCount.Valid {
		v := int(employeeCount.Int64)
		c.EmployeeCount = &v
	}
	if foundedYear.Valid {
		v := int(foundedYear.Int64)
		c.FoundedYear = &v
	}
	if storeCount.Valid {
		v := int(storeCount.Int64)
		c.StoreCount = &v
	}
	if revenue.Valid {
		c.Revenue = &revenue.Int64
	}
	if monthlyVisits.Valid {
		c.MonthlyVisits = &monthlyVisits.Int64
	}
	if isPublic.Valid {
		c.IsPublic = &isPublic.Bool
	}
	if partnerTech.Valid && partnerTech.String != "" {
		if err := json.Unmarshal([]byte(partnerTech.String), &c.PartnerTech); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal partner tech for %s", c.Domain)
		}
	}
	if competitors.Valid && competitors.String != "" {
		if err := json.Unmarshal([]byte(competitors.String), &c.Competitors); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal competitors for %s", c.Domain)
		}
	}
	c.UpdatedAt = &updatedAt
	return &c, nil
}

// marshalOrNil returns JSON for a non-empty slice, nil otherwise.
func marshalOrNil[T any](v []T) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
