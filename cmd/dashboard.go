package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/partnerforge/partnerforge/internal/distribution"
	"github.com/partnerforge/partnerforge/internal/scoring"
	"github.com/partnerforge/partnerforge/internal/store"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the tier/vertical distribution grid",
	Long: `Score the current company collection and print the distribution grid:
company counts per tier and canonical vertical, with the long tail of
verticals collapsed into a single Other column.`,
	RunE: runDashboard,
}

func init() {
	f := dashboardCmd.Flags()
	f.Int("top", distribution.DefaultTopVerticals, "vertical columns to show before collapsing")
	f.Int("workers", 0, "scoring concurrency (default from config)")
	f.String("keywords", "", "YAML file overriding keyword tables")

	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scoringCfg, err := scoringConfig(cmd)
	if err != nil {
		return err
	}
	topN, _ := cmd.Flags().GetInt("top")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	companies, err := st.ListCompanies(ctx, store.CompanyFilter{})
	if err != nil {
		return eris.Wrap(err, "dashboard: list companies")
	}

	scored, err := scoring.ScoreAll(ctx, companies, scoringCfg)
	if err != nil {
		return eris.Wrap(err, "dashboard: scoring")
	}

	grid := distribution.Aggregate(scored, topN)
	printGrid(grid)

	zap.L().Info("dashboard rendered",
		zap.Int("companies", grid.GrandTotal),
		zap.Int("columns", len(grid.Columns)),
		zap.Int("hidden_verticals", grid.HiddenCount),
	)
	return nil
}

func printGrid(grid *distribution.Grid) {
	p := message.NewPrinter(language.AmericanEnglish)

	if grid.GrandTotal == 0 {
		fmt.Println("No companies to aggregate.")
		return
	}

	names := make([]string, len(grid.Columns))
	for i, col := range grid.Columns {
		names[i] = col
		if col == distribution.OtherVertical {
			names[i] = grid.OtherLabel()
		}
	}

	fmt.Printf("%-6s", "")
	for _, name := range names {
		fmt.Printf(" %16s", name)
	}
	fmt.Println()

	for _, tier := range scoring.Tiers {
		fmt.Printf("%-6s", tier)
		for _, col := range grid.Columns {
			cell := grid.Cell(tier, col)
			fmt.Printf(" %8d (%4.1f%%)", cell.Count, cell.Percent)
		}
		fmt.Println()
	}

	fmt.Println()
	p.Printf("Companies: %d", grid.GrandTotal)
	fmt.Printf("  (hot %d / warm %d / cold %d)\n",
		grid.TierTotals[scoring.TierHot],
		grid.TierTotals[scoring.TierWarm],
		grid.TierTotals[scoring.TierCold])
}
