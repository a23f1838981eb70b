package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partnerforge/partnerforge/internal/distribution"
	"github.com/partnerforge/partnerforge/internal/export"
	"github.com/partnerforge/partnerforge/internal/scoring"
	"github.com/partnerforge/partnerforge/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored companies to CSV or XLSX",
	Long: `Scores the current company collection and writes the results to a file.
XLSX output includes a second sheet with the tier/vertical distribution grid.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("output", "", "output file path (required)")
	f.String("format", "xlsx", "output format: csv or xlsx")
	f.String("vertical", "", "filter companies by vertical substring")
	f.Int("top", distribution.DefaultTopVerticals, "vertical columns on the grid sheet")
	f.Int("workers", 0, "scoring concurrency (default from config)")
	f.String("keywords", "", "YAML file overriding keyword tables")
	_ = exportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scoringCfg, err := scoringConfig(cmd)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	vertical, _ := cmd.Flags().GetString("vertical")
	topN, _ := cmd.Flags().GetInt("top")

	if format != "csv" && format != "xlsx" {
		return eris.Errorf("export: --format must be csv or xlsx (got %q)", format)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	companies, err := st.ListCompanies(ctx, store.CompanyFilter{Vertical: vertical})
	if err != nil {
		return eris.Wrap(err, "export: list companies")
	}

	scored, err := scoring.ScoreAll(ctx, companies, scoringCfg)
	if err != nil {
		return eris.Wrap(err, "export: scoring")
	}

	switch format {
	case "csv":
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteCSV(f, scored); err != nil {
			return err
		}
	case "xlsx":
		grid := distribution.Aggregate(scored, topN)
		if err := export.WriteXLSX(outputPath, scored, grid); err != nil {
			return err
		}
	}

	zap.L().Info("export complete",
		zap.String("output", outputPath),
		zap.String("format", format),
		zap.Int("companies", len(scored)),
	)
	return nil
}
