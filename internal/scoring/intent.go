package scoring

import (
	"fmt"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
)

// ScoreIntent estimates buying readiness from traffic magnitude, weak-search
// platform signals, tech-stack complexity, and sales-intelligence extras.
func ScoreIntent(c *model.Company, cfg config.ScoringConfig) FactorScore {
	var points int
	var signals []string

	// Traffic magnitude: highest met tier only.
	if c.MonthlyVisits != nil {
		visits := *c.MonthlyVisits
		switch {
		case visits >= 10_000_000:
			points += 30
			signals = append(signals, fmt.Sprintf("Massive traffic: %s visits/mo (+30)", formatCount(visits)))
		case visits >= 1_000_000:
			points += 25
			signals = append(signals, fmt.Sprintf("High traffic: %s visits/mo (+25)", formatCount(visits)))
		case visits >= 100_000:
			points += 15
			signals = append(signals, fmt.Sprintf("Moderate traffic: %s visits/mo (+15)", formatCount(visits)))
		}
	}

	// A weak search platform in the stack means search pain today.
	if tech, ok := anyTechMatches(c.PartnerTech, cfg.Keywords.WeakSearchPlatforms); ok {
		points += 25
		signals = append(signals, fmt.Sprintf("Weak search platform detected: %s (+25)", tech))
	}

	// Tech-stack complexity: higher tier wins.
	switch {
	case len(c.PartnerTech) >= 3:
		points += 20
		signals = append(signals, fmt.Sprintf("Complex stack: %d partner technologies (+20)", len(c.PartnerTech)))
	case len(c.PartnerTech) >= 1:
		points += 10
		signals = append(signals, fmt.Sprintf("Partner technology detected: %d (+10)", len(c.PartnerTech)))
	}

	// Both bonuses may apply independently.
	if c.ExecQuote {
		points += 15
		signals = append(signals, "Executive quote on record (+15)")
	}
	if c.DisplacementAngle {
		points += 5
		signals = append(signals, "Displacement angle identified (+5)")
	}

	return FactorScore{Score: clampScore(points), Signals: signals}
}
