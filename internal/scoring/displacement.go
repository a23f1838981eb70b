package scoring

import (
	"fmt"
	"strings"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
)

// displacementBase is the neutral starting point for the displacement factor.
// Unlike the other calculators this one moves in both directions.
const displacementBase = 50

// ScoreDisplacement estimates how easily the incumbent search solution can be
// displaced. A company already running our own product scores 0: the -50
// penalty dominates every positive signal.
func ScoreDisplacement(c *model.Company, cfg config.ScoringConfig) FactorScore {
	points := displacementBase
	var signals []string

	current := strings.ToLower(strings.TrimSpace(c.CurrentSearch))

	// Hard exclusion: an existing customer is not a displacement target, no
	// matter what the remaining signals say.
	if strings.Contains(current, strings.ToLower(cfg.Keywords.OwnProduct)) {
		return FactorScore{
			Score:   0,
			Signals: []string{fmt.Sprintf("Already using %s (-50)", cfg.Keywords.OwnProduct)},
		}
	}

	switch {
	case current == "":
		points += 30
		signals = append(signals, "Greenfield: no search provider detected (+30)")
	default:
		if containsAny(current, cfg.Keywords.OpenSourceEngines) {
			points += 20
			signals = append(signals, fmt.Sprintf("Self-managed open-source search: %s (+20)", c.CurrentSearch))
		}
		if containsAny(current, cfg.Keywords.EasilyDisplaced) {
			points += 15
			signals = append(signals, fmt.Sprintf("Easily displaceable provider: %s (+15)", c.CurrentSearch))
		}
	}

	_, hasWeak := anyTechMatches(c.PartnerTech, cfg.Keywords.WeakSearchPlatforms)
	strongTech, hasStrong := anyTechMatches(c.PartnerTech, cfg.Keywords.StrongSearchPlatforms)

	if hasWeak && !hasStrong {
		points += 20
		signals = append(signals, "Weak platform without native search (+20)")
	}
	if hasStrong {
		points -= 10
		signals = append(signals, fmt.Sprintf("Platform ships native search: %s (-10)", strongTech))
	}

	// Social proof: flat bonus, message carries the count.
	if n := countCompetitorsOnOwnProduct(c.Competitors); n > 0 {
		points += 15
		signals = append(signals, fmt.Sprintf("%d competitor(s) already on %s (+15)", n, cfg.Keywords.OwnProduct))
	}

	return FactorScore{Score: clampScore(points), Signals: signals}
}

func countCompetitorsOnOwnProduct(competitors []model.Competitor) int {
	var n int
	for _, comp := range competitors {
		if comp.UsingAlgolia {
			n++
		}
	}
	return n
}
