package scoring

import (
	"fmt"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
)

// growthStageFoundedYear is the earliest founding year that still counts as a
// growth-stage company for the expansion bonus.
const growthStageFoundedYear = 2015

// ScoreValue estimates deal size potential from revenue, traffic as a search
// volume proxy, multi-site footprint, and growth stage.
func ScoreValue(c *model.Company, cfg config.ScoringConfig) FactorScore {
	var points int
	var signals []string

	// Revenue tiers: highest met tier only.
	if c.Revenue != nil {
		revenue := *c.Revenue
		switch {
		case revenue >= 1_000_000_000:
			points += 40
			signals = append(signals, fmt.Sprintf("Revenue %s (+40)", formatMoney(revenue)))
		case revenue >= 100_000_000:
			points += 30
			signals = append(signals, fmt.Sprintf("Revenue %s (+30)", formatMoney(revenue)))
		case revenue >= 10_000_000:
			points += 20
			signals = append(signals, fmt.Sprintf("Revenue %s (+20)", formatMoney(revenue)))
		case revenue >= 1_000_000:
			points += 10
			signals = append(signals, fmt.Sprintf("Revenue %s (+10)", formatMoney(revenue)))
		}
	}

	// Traffic proxies search query volume, which drives contract size.
	if c.MonthlyVisits != nil {
		visits := *c.MonthlyVisits
		switch {
		case visits >= 10_000_000:
			points += 30
			signals = append(signals, fmt.Sprintf("Search volume proxy: %s visits/mo (+30)", formatCount(visits)))
		case visits >= 1_000_000:
			points += 20
			signals = append(signals, fmt.Sprintf("Search volume proxy: %s visits/mo (+20)", formatCount(visits)))
		case visits >= 100_000:
			points += 10
			signals = append(signals, fmt.Sprintf("Search volume proxy: %s visits/mo (+10)", formatCount(visits)))
		}
	}

	// Multi-site potential.
	if c.StoreCount != nil {
		stores := *c.StoreCount
		switch {
		case stores > 100:
			points += 15
			signals = append(signals, fmt.Sprintf("Large store network: %d locations (+15)", stores))
		case stores > 10:
			points += 10
			signals = append(signals, fmt.Sprintf("Multi-store footprint: %d locations (+10)", stores))
		}
	}

	// Growth-stage companies in high-value verticals expand contracts fast.
	if c.FoundedYear != nil && *c.FoundedYear >= growthStageFoundedYear &&
		containsAny(c.Vertical, cfg.Keywords.HighValueVerticals) {
		points += 15
		signals = append(signals, fmt.Sprintf("Growth stage: founded %d in high-value vertical (+15)", *c.FoundedYear))
	}

	return FactorScore{Score: clampScore(points), Signals: signals}
}
