package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partnerforge/partnerforge/internal/model"
)

func TestScoreIntent(t *testing.T) {
	cfg := defaultTestConfig()

	tests := []struct {
		name    string
		company model.Company
		want    int
	}{
		{"empty record", model.Company{}, 0},
		{"massive traffic", model.Company{MonthlyVisits: ptrInt64(15_000_000)}, 30},
		{"high traffic", model.Company{MonthlyVisits: ptrInt64(2_000_000)}, 25},
		{"moderate traffic", model.Company{MonthlyVisits: ptrInt64(100_000)}, 15},
		{"low traffic scores nothing", model.Company{MonthlyVisits: ptrInt64(99_999)}, 0},
		{
			// Weak platform +25 plus single-tech stack +10.
			"weak search platform",
			model.Company{PartnerTech: []string{"Adobe Experience Manager"}},
			35,
		},
		{
			"weak platform match is case-insensitive",
			model.Company{PartnerTech: []string{"SITECORE"}},
			35,
		},
		{"single strong tech", model.Company{PartnerTech: []string{"Shopify"}}, 10},
		{
			"complex stack",
			model.Company{PartnerTech: []string{"Shopify", "Segment", "Braze"}},
			20,
		},
		{
			"complex stack with weak platform",
			model.Company{PartnerTech: []string{"Magento", "Segment", "Braze"}},
			45,
		},
		{"exec quote", model.Company{ExecQuote: true}, 15},
		{"displacement angle", model.Company{DisplacementAngle: true}, 5},
		{"both sales bonuses stack", model.Company{ExecQuote: true, DisplacementAngle: true}, 20},
		{
			"all signals stack",
			model.Company{
				MonthlyVisits:     ptrInt64(20_000_000),
				PartnerTech:       []string{"AEM", "Contentful", "Drupal", "Segment"},
				ExecQuote:         true,
				DisplacementAngle: true,
			},
			95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreIntent(&tt.company, cfg)
			assert.Equal(t, tt.want, got.Score)
		})
	}
}

func TestScoreIntentWeakPlatformSignalNamesTech(t *testing.T) {
	cfg := defaultTestConfig()

	got := ScoreIntent(&model.Company{PartnerTech: []string{"Adobe Experience Manager"}}, cfg)
	assert.Contains(t, got.Signals[0], "Adobe Experience Manager")
}
