package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/scoring"
	"github.com/partnerforge/partnerforge/internal/store"
)

// openStore opens the configured store and ensures the schema exists.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// scoringConfig resolves the effective scoring config: loaded config filled
// with defaults, the optional keywords file, then CLI flag overrides.
func scoringConfig(cmd *cobra.Command) (config.ScoringConfig, error) {
	sc, err := scoring.EffectiveConfig(cfg.Scoring)
	if err != nil {
		return sc, err
	}

	if cmd.Flags().Lookup("keywords") != nil {
		if path, _ := cmd.Flags().GetString("keywords"); path != "" {
			if err := scoring.LoadKeywordOverrides(&sc, path); err != nil {
				return sc, err
			}
		}
	}
	if cmd.Flags().Lookup("workers") != nil {
		if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
			sc.Workers = v
		}
	}

	if err := scoring.ValidateConfig(sc); err != nil {
		return sc, err
	}
	return sc, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
