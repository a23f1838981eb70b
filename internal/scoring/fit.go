package scoring

import (
	"fmt"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
)

// FactorScore is the output of a single factor calculator: a 0-100 sub-score
// plus human-readable signals explaining each contribution.
type FactorScore struct {
	Score   int      `json:"score"`
	Signals []string `json:"signals,omitempty"`
}

// ScoreFit measures ICP alignment: vertical, company size, geography, and
// public-company status.
func ScoreFit(c *model.Company, cfg config.ScoringConfig) FactorScore {
	var points int
	var signals []string

	// Vertical match: high-value > medium-value > present-but-unmatched.
	if c.Vertical != "" {
		switch {
		case containsAny(c.Vertical, cfg.Keywords.HighValueVerticals):
			points += 40
			signals = append(signals, fmt.Sprintf("High-value vertical: %s (+40)", c.Vertical))
		case containsAny(c.Vertical, cfg.Keywords.MediumValueVerticals):
			points += 25
			signals = append(signals, fmt.Sprintf("Medium-value vertical: %s (+25)", c.Vertical))
		default:
			points += 10
			signals = append(signals, fmt.Sprintf("Other vertical: %s (+10)", c.Vertical))
		}
	}

	// Company size: highest met tier only.
	if c.EmployeeCount != nil {
		employees := *c.EmployeeCount
		switch {
		case employees >= 10_000:
			points += 30
			signals = append(signals, fmt.Sprintf("Enterprise scale: %d employees (+30)", employees))
		case employees >= 1_000:
			points += 25
			signals = append(signals, fmt.Sprintf("Large company: %d employees (+25)", employees))
		case employees >= 100:
			points += 15
			signals = append(signals, fmt.Sprintf("Mid-size company: %d employees (+15)", employees))
		case employees >= 10:
			points += 5
			signals = append(signals, fmt.Sprintf("Small company: %d employees (+5)", employees))
		}
	}

	// Geography.
	if c.HQCountry != "" {
		switch {
		case equalsAny(c.HQCountry, cfg.Keywords.USCountries):
			points += 20
			signals = append(signals, fmt.Sprintf("US headquarters: %s (+20)", c.HQCountry))
		case equalsAny(c.HQCountry, cfg.Keywords.Tier1Countries):
			points += 15
			signals = append(signals, fmt.Sprintf("Tier-1 market: %s (+15)", c.HQCountry))
		default:
			points += 5
			signals = append(signals, fmt.Sprintf("Other market: %s (+5)", c.HQCountry))
		}
	}

	// Public companies have budget and procurement maturity.
	if c.IsPublic != nil && *c.IsPublic {
		points += 10
		signals = append(signals, "Publicly traded company (+10)")
	}

	return FactorScore{Score: clampScore(points), Signals: signals}
}
