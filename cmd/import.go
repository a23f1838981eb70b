package main

import (
	"encoding/csv"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partnerforge/partnerforge/internal/model"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import company records from an enrichment export CSV",
	Long: `Reads a CSV of enrichment facts, normalizes domains, and upserts the
records into the store. Columns are matched by header name; unknown columns
are ignored. Rows without a usable domain are skipped with a warning.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrapf(err, "import: open %s", importCSVPath)
		}
		defer f.Close() //nolint:errcheck

		batchID := uuid.NewString()
		companies, skipped, err := parseCompanyCSV(f, batchID)
		if err != nil {
			return eris.Wrapf(err, "import: parse %s", importCSVPath)
		}
		if len(companies) == 0 {
			return eris.Errorf("import: no valid rows in %s", importCSVPath)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertCompanies(ctx, companies)
		if err != nil {
			return eris.Wrap(err, "import: upsert")
		}

		zap.L().Info("import complete",
			zap.String("batch_id", batchID),
			zap.Int64("upserted", n),
			zap.Int("skipped", skipped),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}

// parseCompanyCSV reads header-mapped company rows. It returns the parsed
// records and the count of rows skipped for missing/invalid domains.
func parseCompanyCSV(r io.Reader, batchID string) ([]model.Company, int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, eris.Wrap(err, "read header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := firstColumn(cols, "domain", "website", "url"); !ok {
		return nil, 0, eris.New("no domain column found")
	}

	var companies []model.Company
	var skipped int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, eris.Wrap(err, "read row")
		}

		c, err := companyFromRow(cols, record)
		if err != nil {
			skipped++
			zap.L().Warn("import: skipping row", zap.Error(err))
			continue
		}
		c.ImportBatchID = batchID
		companies = append(companies, *c)
	}
	return companies, skipped, nil
}

func companyFromRow(cols map[string]int, record []string) (*model.Company, error) {
	field := func(names ...string) string {
		if i, ok := firstColumn(cols, names...); ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	rawDomain := field("domain", "website", "url")
	domain, err := model.NormalizeDomain(rawDomain)
	if err != nil {
		return nil, err
	}

	c := &model.Company{
		Domain:        domain,
		CompanyName:   field("company_name", "name", "company"),
		Vertical:      field("vertical"),
		Industry:      field("industry"),
		HQCountry:     field("hq_country", "country", "headquarters_country"),
		CurrentSearch: field("current_search", "search_provider"),
	}

	c.EmployeeCount = parseIntField(field("employee_count", "employees"))
	c.FoundedYear = parseIntField(field("founded_year", "founded"))
	c.StoreCount = parseIntField(field("store_count", "stores"))
	c.Revenue = parseInt64Field(field("revenue", "annual_revenue"))
	c.MonthlyVisits = parseInt64Field(field("sw_monthly_visits", "monthly_visits"))

	if v := field("is_public", "public"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IsPublic = &b
		}
	}
	c.ExecQuote = parseBoolField(field("exec_quote"))
	c.DisplacementAngle = parseBoolField(field("displacement_angle"))

	if v := field("partner_tech", "technologies"); v != "" {
		c.PartnerTech = splitList(v)
	}
	if v := field("competitors_using_algolia"); v != "" {
		for _, name := range splitList(v) {
			c.Competitors = append(c.Competitors, model.Competitor{Name: name, UsingAlgolia: true})
		}
	}

	return c, nil
}

func firstColumn(cols map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func parseIntField(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(cleanNumber(s))
	if err != nil {
		return nil
	}
	return &v
}

func parseInt64Field(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(cleanNumber(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseBoolField(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// cleanNumber strips separators and currency symbols from numeric cells.
func cleanNumber(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', ' ', '_':
			return -1
		}
		return r
	}, s)
}

// splitList splits multi-value cells on semicolons or pipes.
func splitList(s string) []string {
	seps := ";"
	if strings.Contains(s, "|") {
		seps = "|"
	}
	var out []string
	for _, part := range strings.Split(s, seps) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
