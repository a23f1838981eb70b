package scoring

import (
	"math"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/model"
)

// Confidence labels how much of the record was available to score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidence thresholds over data completeness percentage.
const (
	highConfidenceCompleteness   = 70
	mediumConfidenceCompleteness = 40
)

// Factors holds the four factor sub-scores.
type Factors struct {
	Fit          FactorScore `json:"fit"`
	Intent       FactorScore `json:"intent"`
	Value        FactorScore `json:"value"`
	Displacement FactorScore `json:"displacement"`
}

// CompositeScore is the full scoring output for one company.
type CompositeScore struct {
	Total            int        `json:"total"`
	Factors          Factors    `json:"factors"`
	Confidence       Confidence `json:"confidence"`
	DataCompleteness int        `json:"data_completeness"`
	Tier             Tier       `json:"tier"`
}

// completenessFieldCount is the size of the fixed field checklist behind
// DataCompleteness.
const completenessFieldCount = 14

// Score computes the weighted composite score for a company. It is a total
// function: any well-formed record scores, missing fields contribute nothing.
func Score(c *model.Company, cfg config.ScoringConfig) CompositeScore {
	factors := Factors{
		Fit:          ScoreFit(c, cfg),
		Intent:       ScoreIntent(c, cfg),
		Value:        ScoreValue(c, cfg),
		Displacement: ScoreDisplacement(c, cfg),
	}

	total := int(math.Round(
		float64(factors.Fit.Score)*cfg.FitWeight +
			float64(factors.Intent.Score)*cfg.IntentWeight +
			float64(factors.Value.Score)*cfg.ValueWeight +
			float64(factors.Displacement.Score)*cfg.DisplacementWeight,
	))

	completeness := DataCompleteness(c)

	return CompositeScore{
		Total:            total,
		Factors:          factors,
		Confidence:       confidenceFor(completeness),
		DataCompleteness: completeness,
		Tier:             TierFor(total, cfg),
	}
}

// DataCompleteness returns the percentage of the fixed 14-field checklist
// present on the record, rounded to the nearest integer.
func DataCompleteness(c *model.Company) int {
	checks := []bool{
		c.CompanyName != "",
		c.Domain != "",
		c.Vertical != "",
		c.Industry != "",
		c.HQCountry != "",
		c.EmployeeCount != nil,
		c.Revenue != nil,
		c.MonthlyVisits != nil,
		len(c.PartnerTech) > 0,
		c.CurrentSearch != "",
		c.IsPublic != nil,
		c.FoundedYear != nil,
		len(c.Competitors) > 0,
		c.ExecQuote,
	}

	var present int
	for _, ok := range checks {
		if ok {
			present++
		}
	}
	return int(math.Round(float64(present) / completenessFieldCount * 100))
}

func confidenceFor(completeness int) Confidence {
	switch {
	case completeness >= highConfidenceCompleteness:
		return ConfidenceHigh
	case completeness >= mediumConfidenceCompleteness:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
