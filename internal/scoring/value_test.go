package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partnerforge/partnerforge/internal/model"
)

func TestScoreValue(t *testing.T) {
	cfg := defaultTestConfig()

	tests := []struct {
		name    string
		company model.Company
		want    int
	}{
		{"empty record", model.Company{}, 0},
		{"billion-dollar revenue", model.Company{Revenue: ptrInt64(2_000_000_000)}, 40},
		{"hundred-million revenue", model.Company{Revenue: ptrInt64(150_000_000)}, 30},
		{"ten-million revenue", model.Company{Revenue: ptrInt64(10_000_000)}, 20},
		{"million revenue", model.Company{Revenue: ptrInt64(1_000_000)}, 10},
		{"sub-million revenue scores nothing", model.Company{Revenue: ptrInt64(999_999)}, 0},
		{"massive traffic proxy", model.Company{MonthlyVisits: ptrInt64(10_000_000)}, 30},
		{"high traffic proxy", model.Company{MonthlyVisits: ptrInt64(1_000_000)}, 20},
		{"moderate traffic proxy", model.Company{MonthlyVisits: ptrInt64(100_000)}, 10},
		{"large store network", model.Company{StoreCount: ptrInt(101)}, 15},
		{"multi-store footprint", model.Company{StoreCount: ptrInt(11)}, 10},
		{"ten stores is not multi-store", model.Company{StoreCount: ptrInt(10)}, 0},
		{
			"growth stage in high-value vertical",
			model.Company{FoundedYear: ptrInt(2018), Vertical: "SaaS"},
			15,
		},
		{
			"growth stage boundary year",
			model.Company{FoundedYear: ptrInt(2015), Vertical: "Retail"},
			15,
		},
		{
			"older company gets no growth bonus",
			model.Company{FoundedYear: ptrInt(2014), Vertical: "SaaS"},
			0,
		},
		{
			"growth stage outside high-value vertical",
			model.Company{FoundedYear: ptrInt(2020), Vertical: "Logistics"},
			0,
		},
		{
			"everything clamps at 100",
			model.Company{
				Revenue:       ptrInt64(5_000_000_000),
				MonthlyVisits: ptrInt64(50_000_000),
				StoreCount:    ptrInt(500),
				FoundedYear:   ptrInt(2019),
				Vertical:      "Marketplace",
			},
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreValue(&tt.company, cfg)
			assert.Equal(t, tt.want, got.Score)
		})
	}
}

// Raising revenue to a higher tier never lowers the value sub-score.
func TestScoreValueRevenueMonotonic(t *testing.T) {
	cfg := defaultTestConfig()

	tiers := []int64{0, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000}
	prev := -1
	for _, revenue := range tiers {
		c := model.Company{Revenue: ptrInt64(revenue), MonthlyVisits: ptrInt64(500_000)}
		got := ScoreValue(&c, cfg)
		assert.GreaterOrEqual(t, got.Score, prev, "revenue %d", revenue)
		prev = got.Score
	}
}
