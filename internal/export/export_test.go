package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/partnerforge/partnerforge/internal/distribution"
	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

func sampleScored() []scoring.ScoredCompany {
	cfg := scoring.DefaultConfig()
	companies := []model.Company{
		{Domain: "hot.com", CompanyName: "Hot Co", Vertical: "Retail"},
		{Domain: "cold.com", CompanyName: "Cold Co", Vertical: "Farming", CurrentSearch: "Algolia"},
	}
	out := make([]scoring.ScoredCompany, len(companies))
	for i := range companies {
		out[i] = scoring.ScoredCompany{
			Company: companies[i],
			Score:   scoring.Score(&companies[i], cfg),
		}
	}
	return out
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleScored()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "hot.com", records[1][0])
	assert.Equal(t, "Hot Co", records[1][1])
	assert.Equal(t, "cold.com", records[2][0])
	// Exclusion row carries the customer signal through to the sheet.
	assert.Contains(t, records[2][11], "Already using algolia")
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])
}

func TestWriteXLSX(t *testing.T) {
	scored := sampleScored()
	grid := distribution.Aggregate(scored, 5)
	path := filepath.Join(t.TempDir(), "export.xlsx")

	require.NoError(t, WriteXLSX(path, scored, grid))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	companies := f.Sheets[0]
	assert.Equal(t, "Companies", companies.Name)
	require.Len(t, companies.Rows, 3)
	assert.Equal(t, "domain", companies.Rows[0].Cells[0].Value)
	assert.Equal(t, "hot.com", companies.Rows[1].Cells[0].Value)

	dist := f.Sheets[1]
	assert.Equal(t, "Distribution", dist.Name)
	// Header, one row per tier, totals row.
	require.Len(t, dist.Rows, 5)
	assert.Equal(t, "tier", dist.Rows[0].Cells[0].Value)
	assert.Equal(t, "hot", dist.Rows[1].Cells[0].Value)
	assert.Equal(t, "total", dist.Rows[4].Cells[0].Value)
}

func TestWriteXLSXWithoutGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, WriteXLSX(path, sampleScored(), nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
}

func TestAllSignalsOrder(t *testing.T) {
	f := scoring.Factors{
		Fit:          scoring.FactorScore{Signals: []string{"fit-a"}},
		Intent:       scoring.FactorScore{Signals: []string{"intent-a", "intent-b"}},
		Displacement: scoring.FactorScore{Signals: []string{"disp-a"}},
	}
	assert.Equal(t, []string{"fit-a", "intent-a", "intent-b", "disp-a"}, allSignals(f))
}
