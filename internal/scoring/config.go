// Package scoring implements the composite displacement-target scoring engine:
// four factor calculators (fit, intent, value, displacement), the weighted
// composite scorer, and the hot/warm/cold status classifier.
package scoring

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/partnerforge/partnerforge/internal/config"
)

// DefaultConfig returns a config.ScoringConfig with the production weights,
// tier thresholds, and keyword tables. Weights sum to 1.0.
func DefaultConfig() config.ScoringConfig {
	return config.ScoringConfig{
		// Equal weighting across the four factors.
		FitWeight:          0.25,
		IntentWeight:       0.25,
		ValueWeight:        0.25,
		DisplacementWeight: 0.25,

		// Tier cutoffs.
		HotThreshold:  70,
		WarmThreshold: 40,

		Workers: 8,

		Keywords: DefaultKeywords(),
	}
}

// DefaultKeywords returns the built-in keyword tables. Matching is always
// case-insensitive substring containment against these entries.
func DefaultKeywords() config.KeywordTables {
	return config.KeywordTables{
		HighValueVerticals: []string{
			"retail", "ecommerce", "marketplace", "media", "publishing",
			"entertainment", "saas", "technology", "software",
		},
		MediumValueVerticals: []string{
			"finance", "banking", "healthcare", "travel", "hospitality",
			"education",
		},
		USCountries: []string{
			"us", "usa", "united states", "united states of america",
		},
		Tier1Countries: []string{
			"uk", "united kingdom", "great britain", "germany", "france",
			"canada", "australia",
		},
		// "adobe experience manager" is listed alongside "aem" because
		// fingerprinting providers report the full product name.
		WeakSearchPlatforms: []string{
			"aem", "adobe experience manager", "amplience", "contentful",
			"sitecore", "wordpress", "drupal", "magento",
		},
		StrongSearchPlatforms: []string{
			"shopify", "salesforce commerce cloud", "commercetools",
			"bigcommerce", "elasticsearch",
		},
		OpenSourceEngines: []string{"elasticsearch", "solr"},
		EasilyDisplaced: []string{
			"searchspring", "klevu", "doofinder", "searchanise", "swiftype",
			"addsearch", "sli systems", "unbxd",
		},
		OwnProduct: "algolia",
	}
}

// EffectiveConfig fills empty keyword tables on a loaded config with the
// built-in defaults and applies the optional keywords override file.
func EffectiveConfig(cfg config.ScoringConfig) (config.ScoringConfig, error) {
	def := DefaultKeywords()
	k := &cfg.Keywords
	if len(k.HighValueVerticals) == 0 {
		k.HighValueVerticals = def.HighValueVerticals
	}
	if len(k.MediumValueVerticals) == 0 {
		k.MediumValueVerticals = def.MediumValueVerticals
	}
	if len(k.USCountries) == 0 {
		k.USCountries = def.USCountries
	}
	if len(k.Tier1Countries) == 0 {
		k.Tier1Countries = def.Tier1Countries
	}
	if len(k.WeakSearchPlatforms) == 0 {
		k.WeakSearchPlatforms = def.WeakSearchPlatforms
	}
	if len(k.StrongSearchPlatforms) == 0 {
		k.StrongSearchPlatforms = def.StrongSearchPlatforms
	}
	if len(k.OpenSourceEngines) == 0 {
		k.OpenSourceEngines = def.OpenSourceEngines
	}
	if len(k.EasilyDisplaced) == 0 {
		k.EasilyDisplaced = def.EasilyDisplaced
	}
	if k.OwnProduct == "" {
		k.OwnProduct = def.OwnProduct
	}

	if cfg.KeywordsFile != "" {
		if err := LoadKeywordOverrides(&cfg, cfg.KeywordsFile); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// WeightSum returns the sum of the four factor weights.
func WeightSum(c config.ScoringConfig) float64 {
	return c.FitWeight + c.IntentWeight + c.ValueWeight + c.DisplacementWeight
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	weights := map[string]float64{
		"fit_weight":          c.FitWeight,
		"intent_weight":       c.IntentWeight,
		"value_weight":        c.ValueWeight,
		"displacement_weight": c.DisplacementWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if math.Abs(sum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.3f", sum))
	}

	if c.HotThreshold < 0 || c.HotThreshold > 100 {
		errs = append(errs, "hot_threshold must be between 0 and 100")
	}
	if c.WarmThreshold < 0 || c.WarmThreshold > 100 {
		errs = append(errs, "warm_threshold must be between 0 and 100")
	}
	if c.WarmThreshold > c.HotThreshold {
		errs = append(errs, "warm_threshold must be <= hot_threshold")
	}

	if c.Workers < 0 {
		errs = append(errs, "workers must be >= 0")
	}

	if c.Keywords.OwnProduct == "" {
		errs = append(errs, "keywords.own_product must be set")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadKeywordOverrides reads a YAML keyword-table file and overlays any
// non-empty tables onto cfg. Tables absent from the file keep their defaults.
func LoadKeywordOverrides(cfg *config.ScoringConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "scoring: read keywords file %s", path)
	}

	var kw config.KeywordTables
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return eris.Wrapf(err, "scoring: parse keywords file %s", path)
	}

	if len(kw.HighValueVerticals) > 0 {
		cfg.Keywords.HighValueVerticals = kw.HighValueVerticals
	}
	if len(kw.MediumValueVerticals) > 0 {
		cfg.Keywords.MediumValueVerticals = kw.MediumValueVerticals
	}
	if len(kw.USCountries) > 0 {
		cfg.Keywords.USCountries = kw.USCountries
	}
	if len(kw.Tier1Countries) > 0 {
		cfg.Keywords.Tier1Countries = kw.Tier1Countries
	}
	if len(kw.WeakSearchPlatforms) > 0 {
		cfg.Keywords.WeakSearchPlatforms = kw.WeakSearchPlatforms
	}
	if len(kw.StrongSearchPlatforms) > 0 {
		cfg.Keywords.StrongSearchPlatforms = kw.StrongSearchPlatforms
	}
	if len(kw.OpenSourceEngines) > 0 {
		cfg.Keywords.OpenSourceEngines = kw.OpenSourceEngines
	}
	if len(kw.EasilyDisplaced) > 0 {
		cfg.Keywords.EasilyDisplaced = kw.EasilyDisplaced
	}
	if kw.OwnProduct != "" {
		cfg.Keywords.OwnProduct = kw.OwnProduct
	}
	return nil
}

// containsAny reports whether s case-insensitively contains any keyword.
func containsAny(s string, keywords []string) bool {
	_, ok := firstMatch(s, keywords)
	return ok
}

// firstMatch returns the first keyword that s case-insensitively contains.
func firstMatch(s string, keywords []string) (string, bool) {
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// anyTechMatches reports whether any detected technology contains a keyword,
// returning the matched technology entry.
func anyTechMatches(tech []string, keywords []string) (string, bool) {
	for _, t := range tech {
		if containsAny(t, keywords) {
			return t, true
		}
	}
	return "", false
}

// equalsAny reports whether s equals any alias after trimming and lowering.
func equalsAny(s string, aliases []string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return false
	}
	for _, a := range aliases {
		if v == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// clampScore bounds a raw point total to the [0,100] factor score range.
func clampScore(points int) int {
	if points < 0 {
		return 0
	}
	if points > 100 {
		return 100
	}
	return points
}
