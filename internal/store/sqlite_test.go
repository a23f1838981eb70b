package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "partnerforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLiteUpsertAndGet(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	in := model.Company{
		Domain:            "example.com",
		CompanyName:       "Example Inc",
		Vertical:          "Retail",
		Industry:          "Apparel",
		HQCountry:         "United States",
		EmployeeCount:     ptrInt(500),
		FoundedYear:       ptrInt(2016),
		IsPublic:          ptrBool(true),
		Revenue:           ptrInt64(50_000_000),
		MonthlyVisits:     ptrInt64(1_200_000),
		StoreCount:        ptrInt(25),
		PartnerTech:       []string{"Shopify", "Segment"},
		CurrentSearch:     "Klevu",
		ExecQuote:         true,
		DisplacementAngle: true,
		Competitors:       []model.Competitor{{Name: "Rival", UsingAlgolia: true}},
		ImportBatchID:     "batch-1",
	}

	n, err := store.UpsertCompanies(ctx, []model.Company{in})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.GetCompany(ctx, "example.com")
	require.NoError(t, err)

	assert.Equal(t, in.CompanyName, got.CompanyName)
	assert.Equal(t, in.Vertical, got.Vertical)
	assert.Equal(t, *in.EmployeeCount, *got.EmployeeCount)
	assert.Equal(t, *in.FoundedYear, *got.FoundedYear)
	assert.True(t, *got.IsPublic)
	assert.Equal(t, *in.Revenue, *got.Revenue)
	assert.Equal(t, *in.MonthlyVisits, *got.MonthlyVisits)
	assert.Equal(t, *in.StoreCount, *got.StoreCount)
	assert.Equal(t, in.PartnerTech, got.PartnerTech)
	assert.Equal(t, in.CurrentSearch, got.CurrentSearch)
	assert.True(t, got.ExecQuote)
	assert.Equal(t, in.Competitors, got.Competitors)
	assert.Equal(t, "batch-1", got.ImportBatchID)
	require.NotNil(t, got.UpdatedAt)
}

func TestSQLiteUpsertOverwrites(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	_, err := store.UpsertCompanies(ctx, []model.Company{
		{Domain: "example.com", CompanyName: "Old Name", Vertical: "Retail"},
	})
	require.NoError(t, err)

	_, err = store.UpsertCompanies(ctx, []model.Company{
		{Domain: "example.com", CompanyName: "New Name", Revenue: ptrInt64(1_000_000)},
	})
	require.NoError(t, err)

	got, err := store.GetCompany(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.CompanyName)
	assert.Equal(t, int64(1_000_000), *got.Revenue)
	// The second record carried no vertical, so the column was overwritten.
	assert.Empty(t, got.Vertical)
}

func TestSQLiteGetCompanyNotFound(t *testing.T) {
	store := newTestSQLite(t)

	_, err := store.GetCompany(context.Background(), "missing.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListCompanies(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	_, err := store.UpsertCompanies(ctx, []model.Company{
		{Domain: "a.com", Vertical: "Retail E-commerce"},
		{Domain: "b.com", Vertical: "Healthcare"},
		{Domain: "c.com", Vertical: "Retail"},
	})
	require.NoError(t, err)

	t.Run("all ordered by domain", func(t *testing.T) {
		all, err := store.ListCompanies(ctx, CompanyFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a.com", all[0].Domain)
		assert.Equal(t, "c.com", all[2].Domain)
	})

	t.Run("vertical filter", func(t *testing.T) {
		retail, err := store.ListCompanies(ctx, CompanyFilter{Vertical: "Retail"})
		require.NoError(t, err)
		require.Len(t, retail, 2)
	})

	t.Run("domain filter", func(t *testing.T) {
		got, err := store.ListCompanies(ctx, CompanyFilter{Domains: []string{"b.com", "c.com"}})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b.com", got[0].Domain)
	})

	t.Run("limit and offset", func(t *testing.T) {
		page, err := store.ListCompanies(ctx, CompanyFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "b.com", page[0].Domain)
	})
}

func TestSQLiteSaveAndLatestScores(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()
	cfg := scoring.DefaultConfig()

	companies := []model.Company{
		{Domain: "hot.com", Vertical: "Retail", EmployeeCount: ptrInt(12_000), HQCountry: "USA",
			Revenue: ptrInt64(2_000_000_000), MonthlyVisits: ptrInt64(15_000_000),
			PartnerTech: []string{"Magento"}, IsPublic: ptrBool(true)},
		{Domain: "cold.com", CurrentSearch: "Algolia"},
	}
	_, err := store.UpsertCompanies(ctx, companies)
	require.NoError(t, err)

	scored, err := scoring.ScoreAll(ctx, companies, cfg)
	require.NoError(t, err)
	require.NoError(t, store.SaveScores(ctx, scored, scoring.ConfigHash(cfg)))

	t.Run("all scores", func(t *testing.T) {
		got, err := store.LatestScores(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		// Ordered by total descending.
		assert.Equal(t, "hot.com", got[0].Domain)
		assert.Equal(t, scoring.TierHot, got[0].Tier)
		assert.Equal(t, scored[0].Score.Factors, got[0].Factors)
		assert.Equal(t, scoring.ConfigHash(cfg), got[0].ConfigHash)
	})

	t.Run("min total filter", func(t *testing.T) {
		got, err := store.LatestScores(ctx, 70, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "hot.com", got[0].Domain)
	})

	t.Run("rescore supersedes", func(t *testing.T) {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, store.SaveScores(ctx, scored[:1], "rescored"))

		got, err := store.LatestScores(ctx, 70, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "rescored", got[0].ConfigHash)
	})
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, st)
	assert.NoError(t, st.Close())

	_, err = Open(ctx, config.StoreConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "oracle"`)
}
