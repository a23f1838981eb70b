package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 30, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a-very-long-company-domain.com", 10, "a-very-..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n))
	}
}

func TestWriteScoreTable(t *testing.T) {
	cfg := scoring.DefaultConfig()
	company := model.Company{
		Domain:      "example.com",
		CompanyName: "Example Inc",
		Vertical:    "Retail",
	}
	results := []scoring.ScoredCompany{
		{Company: company, Score: scoring.Score(&company, cfg)},
	}

	path := filepath.Join(t.TempDir(), "table.txt")
	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, writeScoreTable(f, results))
	require.NoError(t, f.Close())

	out, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(out), "Domain")
	assert.Contains(t, string(out), "example.com")
	assert.Contains(t, string(out), "Example Inc")
}
