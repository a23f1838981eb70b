package scoring

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
)

// ScoredCompany pairs a company record with its computed composite score.
type ScoredCompany struct {
	Company model.Company  `json:"company"`
	Score   CompositeScore `json:"score"`
}

// ScoreAll scores every company with bounded concurrency. The calculators are
// pure, so parallel fan-out is safe; results keep input ordering because each
// goroutine writes only its own index.
func ScoreAll(ctx context.Context, companies []model.Company, cfg config.ScoringConfig) ([]ScoredCompany, error) {
	if len(companies) == 0 {
		return nil, nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]ScoredCompany, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range companies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ScoredCompany{
				Company: companies[i],
				Score:   Score(&companies[i], cfg),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Debug("scoring: batch complete",
		zap.Int("companies", len(results)),
		zap.Int("workers", workers),
	)
	return results, nil
}
