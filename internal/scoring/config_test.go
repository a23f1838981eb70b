package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerforge/partnerforge/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 1.0, WeightSum(cfg), 0.001)
	assert.Equal(t, 70, cfg.HotThreshold)
	assert.Equal(t, 40, cfg.WarmThreshold)
	assert.Equal(t, "algolia", cfg.Keywords.OwnProduct)
	require.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.ScoringConfig)
		wantErr string
	}{
		{"valid defaults", func(c *config.ScoringConfig) {}, ""},
		{
			"negative weight",
			func(c *config.ScoringConfig) { c.FitWeight = -0.25 },
			"fit_weight must be >= 0",
		},
		{
			"weights off balance",
			func(c *config.ScoringConfig) { c.IntentWeight = 0.5 },
			"weights should sum to 1.0",
		},
		{
			"hot threshold out of range",
			func(c *config.ScoringConfig) { c.HotThreshold = 101 },
			"hot_threshold must be between 0 and 100",
		},
		{
			"warm above hot",
			func(c *config.ScoringConfig) { c.WarmThreshold = 90 },
			"warm_threshold must be <= hot_threshold",
		},
		{
			"negative workers",
			func(c *config.ScoringConfig) { c.Workers = -1 },
			"workers must be >= 0",
		},
		{
			"missing own product",
			func(c *config.ScoringConfig) { c.Keywords.OwnProduct = "" },
			"keywords.own_product must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEffectiveConfigFillsDefaults(t *testing.T) {
	cfg, err := EffectiveConfig(config.ScoringConfig{
		FitWeight:          0.25,
		IntentWeight:       0.25,
		ValueWeight:        0.25,
		DisplacementWeight: 0.25,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Keywords.HighValueVerticals)
	assert.NotEmpty(t, cfg.Keywords.WeakSearchPlatforms)
	assert.Equal(t, "algolia", cfg.Keywords.OwnProduct)
}

func TestEffectiveConfigKeepsExplicitTables(t *testing.T) {
	in := config.ScoringConfig{
		Keywords: config.KeywordTables{
			HighValueVerticals: []string{"gaming"},
			OwnProduct:         "acme-search",
		},
	}

	cfg, err := EffectiveConfig(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"gaming"}, cfg.Keywords.HighValueVerticals)
	assert.Equal(t, "acme-search", cfg.Keywords.OwnProduct)
	// Untouched tables still fall back to the defaults.
	assert.NotEmpty(t, cfg.Keywords.OpenSourceEngines)
}

func TestLoadKeywordOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
high_value_verticals:
  - gaming
  - crypto
own_product: acme-search
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadKeywordOverrides(&cfg, path))

	assert.Equal(t, []string{"gaming", "crypto"}, cfg.Keywords.HighValueVerticals)
	assert.Equal(t, "acme-search", cfg.Keywords.OwnProduct)
	// Tables absent from the file keep their defaults.
	assert.NotEmpty(t, cfg.Keywords.EasilyDisplaced)
}

func TestLoadKeywordOverridesErrors(t *testing.T) {
	cfg := DefaultConfig()

	err := LoadKeywordOverrides(&cfg, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("high_value_verticals: {not a list"), 0o644))
	assert.Error(t, LoadKeywordOverrides(&cfg, path))
}

func TestConfigHash(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()

	assert.Equal(t, ConfigHash(a), ConfigHash(b))
	assert.Len(t, ConfigHash(a), 32)

	b.HotThreshold = 80
	assert.NotEqual(t, ConfigHash(a), ConfigHash(b))
}
