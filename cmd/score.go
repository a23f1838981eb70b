package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partnerforge/partnerforge/internal/export"
	"github.com/partnerforge/partnerforge/internal/scoring"
	"github.com/partnerforge/partnerforge/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score companies as displacement targets",
	Long: `Score company records with the composite engine: fit, intent, value,
and displacement factors weighted equally into a 0-100 total, classified
hot/warm/cold.

Examples:
  # Score every company and print a table
  score

  # Score a single company with factor signals
  score --domain acme.com

  # Score retail companies, keep only hot ones, save to score history
  score --vertical retail --tier hot --save

  # Export top 100 to CSV
  score --limit 100 --format csv --output scores.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("domain", "", "score a single company by domain")
	f.String("vertical", "", "filter companies by vertical substring")
	f.String("tier", "", "only output companies in this tier (hot, warm, cold)")
	f.Int("min-score", 0, "only output companies with at least this total")
	f.Int("limit", 0, "maximum number of companies to load (0=all)")
	f.Int("workers", 0, "scoring concurrency (default from config)")
	f.String("keywords", "", "YAML file overriding keyword tables")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or csv")
	f.Bool("save", false, "save results to score history")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "score"))

	scoringCfg, err := scoringConfig(cmd)
	if err != nil {
		return err
	}

	domain, _ := cmd.Flags().GetString("domain")
	vertical, _ := cmd.Flags().GetString("vertical")
	tierFlag, _ := cmd.Flags().GetString("tier")
	minScore, _ := cmd.Flags().GetInt("min-score")
	limit, _ := cmd.Flags().GetInt("limit")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
	}
	var tierFilter scoring.Tier
	if tierFlag != "" {
		t, ok := scoring.ParseTier(tierFlag)
		if !ok {
			return eris.Errorf("score: --tier must be hot, warm, or cold (got %q)", tierFlag)
		}
		tierFilter = t
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	// Single-company mode prints the full factor breakdown.
	if domain != "" {
		company, err := st.GetCompany(ctx, domain)
		if err != nil {
			return eris.Wrapf(err, "score: %s", domain)
		}
		sc := scoring.ScoredCompany{
			Company: *company,
			Score:   scoring.Score(company, scoringCfg),
		}
		printSingleScore(sc)
		if save {
			if err := st.SaveScores(ctx, []scoring.ScoredCompany{sc}, scoring.ConfigHash(scoringCfg)); err != nil {
				return eris.Wrap(err, "score: save")
			}
			fmt.Println("Score saved to history.")
		}
		return nil
	}

	companies, err := st.ListCompanies(ctx, store.CompanyFilter{
		Vertical: vertical,
		Limit:    limit,
	})
	if err != nil {
		return eris.Wrap(err, "score: list companies")
	}

	log.Info("starting composite scoring",
		zap.Int("companies", len(companies)),
		zap.Int("workers", scoringCfg.Workers),
	)

	scored, err := scoring.ScoreAll(ctx, companies, scoringCfg)
	if err != nil {
		return eris.Wrap(err, "score: batch scoring")
	}

	filtered := scored[:0:0]
	for _, sc := range scored {
		if sc.Score.Total < minScore {
			continue
		}
		if tierFilter != "" && sc.Score.Tier != tierFilter {
			continue
		}
		filtered = append(filtered, sc)
	}

	log.Info("composite scoring complete",
		zap.Int("scored", len(scored)),
		zap.Int("output", len(filtered)),
	)

	if err := outputScoreResults(filtered, format, outputPath); err != nil {
		return err
	}
	if save && len(filtered) > 0 {
		if err := st.SaveScores(ctx, filtered, scoring.ConfigHash(scoringCfg)); err != nil {
			return eris.Wrap(err, "score: save")
		}
		fmt.Printf("Saved %d scores to history.\n", len(filtered))
	}

	printScoreSummary(filtered)
	return nil
}

func printSingleScore(sc scoring.ScoredCompany) {
	s := sc.Score
	fmt.Printf("Domain:       %s\n", sc.Company.Domain)
	if sc.Company.CompanyName != "" {
		fmt.Printf("Company:      %s\n", sc.Company.CompanyName)
	}
	if sc.Company.Vertical != "" {
		fmt.Printf("Vertical:     %s\n", sc.Company.Vertical)
	}
	fmt.Printf("Total:        %d / 100 (%s)\n", s.Total, s.Tier)
	fmt.Printf("Confidence:   %s (%d%% complete)\n", s.Confidence, s.DataCompleteness)
	fmt.Println("\nFactors:")
	printFactor("fit", s.Factors.Fit)
	printFactor("intent", s.Factors.Intent)
	printFactor("value", s.Factors.Value)
	printFactor("displacement", s.Factors.Displacement)
}

func printFactor(name string, f scoring.FactorScore) {
	fmt.Printf("  %-14s %3d\n", name, f.Score)
	for _, sig := range f.Signals {
		fmt.Printf("    - %s\n", sig)
	}
}

func printScoreSummary(results []scoring.ScoredCompany) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	tiers := map[scoring.Tier]int{}
	var sum, maxTotal int
	minTotal := 101
	for _, r := range results {
		sum += r.Score.Total
		if r.Score.Total > maxTotal {
			maxTotal = r.Score.Total
		}
		if r.Score.Total < minTotal {
			minTotal = r.Score.Total
		}
		tiers[r.Score.Tier]++
	}
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Total scored:  %d\n", len(results))
	fmt.Printf("Hot/Warm/Cold: %d / %d / %d\n",
		tiers[scoring.TierHot], tiers[scoring.TierWarm], tiers[scoring.TierCold])
	fmt.Printf("Score range:   %d - %d\n", minTotal, maxTotal)
	fmt.Printf("Average score: %.1f\n", float64(sum)/float64(len(results)))
}

func outputScoreResults(results []scoring.ScoredCompany, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return export.WriteCSV(w, results)
	case "table":
		return writeScoreTable(w, results)
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeScoreTable(w *os.File, results []scoring.ScoredCompany) error {
	header := fmt.Sprintf("%-30s %-30s %-14s %5s %5s %-6s %-10s\n",
		"Domain", "Company", "Vertical", "Total", "Disp", "Tier", "Confidence")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 106)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, r := range results {
		line := fmt.Sprintf("%-30s %-30s %-14s %5d %5d %-6s %-10s\n",
			truncate(r.Company.Domain, 30),
			truncate(r.Company.CompanyName, 30),
			truncate(r.Company.Vertical, 14),
			r.Score.Total,
			r.Score.Factors.Displacement.Score,
			r.Score.Tier,
			r.Score.Confidence)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
