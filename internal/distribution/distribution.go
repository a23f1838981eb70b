// Package distribution buckets scored companies into the tier-by-vertical
// grid shown on the dashboard.
package distribution

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/partnerforge/partnerforge/internal/scoring"
)

// OtherVertical is the canonical bucket for unmatched or absent verticals.
const OtherVertical = "Other"

// DefaultTopVerticals is how many vertical columns the dashboard shows before
// collapsing the long tail.
const DefaultTopVerticals = 5

// verticalRule maps free-text vertical keywords to a canonical vertical.
// Rules are tried in order, first match wins.
type verticalRule struct {
	keywords  []string
	canonical string
}

var verticalRules = []verticalRule{
	{[]string{"auto"}, "Automotive"},
	{[]string{"retail", "commerce"}, "Retail"},
	{[]string{"health", "medical"}, "Healthcare"},
	{[]string{"finance", "banking"}, "Finance"},
	{[]string{"media", "entertainment"}, "Media"},
	{[]string{"tech", "software"}, "Technology"},
	{[]string{"manufact", "industrial"}, "Manufacturing"},
}

// NormalizeVertical canonicalizes a free-text vertical string. Matching is
// case-insensitive substring containment, first rule wins; anything unmatched
// or empty maps to OtherVertical.
func NormalizeVertical(vertical string) string {
	v := strings.ToLower(strings.TrimSpace(vertical))
	if v == "" {
		return OtherVertical
	}
	for _, rule := range verticalRules {
		for _, kw := range rule.keywords {
			if strings.Contains(v, kw) {
				return rule.canonical
			}
		}
	}
	return OtherVertical
}

// Cell is one tier-by-vertical bucket of the rendered grid.
type Cell struct {
	Tier     scoring.Tier `json:"tier"`
	Vertical string       `json:"vertical"`
	Count    int          `json:"count"`
	Percent  float64      `json:"percent"`
}

// Grid is the aggregated tier-by-vertical distribution. Columns are the top
// verticals by company count plus a collapsed Other column; VerticalTotals
// keeps the full uncollapsed counts so callers can verify conservation.
type Grid struct {
	Columns        []string             `json:"columns"`
	HiddenCount    int                  `json:"hidden_count"`
	Cells          []Cell               `json:"cells"`
	GrandTotal     int                  `json:"grand_total"`
	TierTotals     map[scoring.Tier]int `json:"tier_totals"`
	VerticalTotals map[string]int       `json:"vertical_totals"`
}

// OtherLabel names the collapsed column, e.g. "Other (3)". Empty when the
// grid has no collapsed column.
func (g *Grid) OtherLabel() string {
	if g.HiddenCount == 0 && g.columnIndex(OtherVertical) < 0 {
		return ""
	}
	return fmt.Sprintf("%s (%d)", OtherVertical, g.HiddenCount)
}

// Cell returns the cell for a tier and shown column name. Unknown columns
// return a zero-count cell.
func (g *Grid) Cell(tier scoring.Tier, column string) Cell {
	for _, c := range g.Cells {
		if c.Tier == tier && c.Vertical == column {
			return c
		}
	}
	return Cell{Tier: tier, Vertical: column}
}

func (g *Grid) columnIndex(column string) int {
	for i, c := range g.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Aggregate buckets scored companies into a grid with the top topN verticals
// shown individually and the remainder collapsed into Other. Output depends
// only on bucket sums, never on input order.
func Aggregate(scored []scoring.ScoredCompany, topN int) *Grid {
	if topN <= 0 {
		topN = DefaultTopVerticals
	}

	counts := make(map[scoring.Tier]map[string]int)
	for _, t := range scoring.Tiers {
		counts[t] = make(map[string]int)
	}
	verticalTotals := make(map[string]int)
	tierTotals := make(map[scoring.Tier]int)

	for _, sc := range scored {
		vertical := NormalizeVertical(sc.Company.Vertical)
		tier := sc.Score.Tier
		counts[tier][vertical]++
		verticalTotals[vertical]++
		tierTotals[tier]++
	}

	// Rank named verticals by total count descending; Other never competes
	// for a shown column, it always collapses. Ties break alphabetically so
	// the grid is deterministic.
	var ranked []string
	for v := range verticalTotals {
		if v != OtherVertical {
			ranked = append(ranked, v)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if verticalTotals[ranked[i]] != verticalTotals[ranked[j]] {
			return verticalTotals[ranked[i]] > verticalTotals[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	shown := ranked
	var hidden []string
	if len(ranked) > topN {
		shown = ranked[:topN]
		hidden = ranked[topN:]
	}

	// The unmatched bucket counts as one hidden vertical when present.
	hiddenCount := len(hidden)
	hasOtherBucket := verticalTotals[OtherVertical] > 0
	if hasOtherBucket {
		hiddenCount++
	}

	columns := append([]string{}, shown...)
	needOtherColumn := len(hidden) > 0 || hasOtherBucket
	if needOtherColumn {
		columns = append(columns, OtherVertical)
	}

	grandTotal := len(scored)
	grid := &Grid{
		Columns:        columns,
		HiddenCount:    hiddenCount,
		GrandTotal:     grandTotal,
		TierTotals:     tierTotals,
		VerticalTotals: verticalTotals,
	}

	for _, tier := range scoring.Tiers {
		for _, col := range columns {
			var n int
			if col == OtherVertical {
				n = counts[tier][OtherVertical]
				for _, h := range hidden {
					n += counts[tier][h]
				}
			} else {
				n = counts[tier][col]
			}
			grid.Cells = append(grid.Cells, Cell{
				Tier:     tier,
				Vertical: col,
				Count:    n,
				Percent:  percentOf(n, grandTotal),
			})
		}
	}

	return grid
}

// percentOf rounds n/total to one decimal place. Cells round independently,
// so percentages across a grid need not sum to exactly 100.
func percentOf(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
