package scoring

import "github.com/partnerforge/partnerforge/internal/config"

// Tier is the sales triage bucket derived from the composite total.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Tiers lists all tiers in triage order, hottest first.
var Tiers = []Tier{TierHot, TierWarm, TierCold}

// TierFor maps a composite total to its tier using the configured cutoffs.
func TierFor(total int, cfg config.ScoringConfig) Tier {
	switch {
	case total >= cfg.HotThreshold:
		return TierHot
	case total >= cfg.WarmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// ParseTier validates a tier string from CLI flags or API queries.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierHot, TierWarm, TierCold:
		return Tier(s), true
	default:
		return "", false
	}
}
