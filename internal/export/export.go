// Package export writes scored companies and distribution grids to CSV and
// XLSX for hand-off outside the dashboard.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/partnerforge/partnerforge/internal/distribution"
	"github.com/partnerforge/partnerforge/internal/scoring"
)

var csvHeader = []string{
	"domain", "company_name", "vertical", "tier", "total",
	"fit", "intent", "value", "displacement",
	"confidence", "data_completeness", "signals",
}

// WriteCSV writes scored companies as CSV.
func WriteCSV(w io.Writer, scored []scoring.ScoredCompany) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "export: write CSV header")
	}

	for _, sc := range scored {
		if err := cw.Write(csvRow(sc)); err != nil {
			return eris.Wrapf(err, "export: write CSV row for %s", sc.Company.Domain)
		}
	}
	return nil
}

func csvRow(sc scoring.ScoredCompany) []string {
	s := sc.Score
	return []string{
		sc.Company.Domain,
		sc.Company.CompanyName,
		sc.Company.Vertical,
		string(s.Tier),
		fmt.Sprintf("%d", s.Total),
		fmt.Sprintf("%d", s.Factors.Fit.Score),
		fmt.Sprintf("%d", s.Factors.Intent.Score),
		fmt.Sprintf("%d", s.Factors.Value.Score),
		fmt.Sprintf("%d", s.Factors.Displacement.Score),
		string(s.Confidence),
		fmt.Sprintf("%d", s.DataCompleteness),
		strings.Join(allSignals(s.Factors), "; "),
	}
}

func allSignals(f scoring.Factors) []string {
	var signals []string
	for _, fs := range []scoring.FactorScore{f.Fit, f.Intent, f.Value, f.Displacement} {
		signals = append(signals, fs.Signals...)
	}
	return signals
}

// WriteXLSX writes a workbook with a scored-companies sheet and, when a grid
// is given, a distribution sheet.
func WriteXLSX(path string, scored []scoring.ScoredCompany, grid *distribution.Grid) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Companies")
	if err != nil {
		return eris.Wrap(err, "export: add companies sheet")
	}
	headerRow := sheet.AddRow()
	for _, h := range csvHeader {
		headerRow.AddCell().Value = h
	}
	for _, sc := range scored {
		row := sheet.AddRow()
		for _, v := range csvRow(sc) {
			row.AddCell().Value = v
		}
	}

	if grid != nil {
		if err := addGridSheet(f, grid); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addGridSheet(f *xlsx.File, grid *distribution.Grid) error {
	sheet, err := f.AddSheet("Distribution")
	if err != nil {
		return eris.Wrap(err, "export: add distribution sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "tier"
	for _, col := range grid.Columns {
		name := col
		if col == distribution.OtherVertical {
			name = grid.OtherLabel()
		}
		header.AddCell().Value = name
	}

	for _, tier := range scoring.Tiers {
		row := sheet.AddRow()
		row.AddCell().Value = string(tier)
		for _, col := range grid.Columns {
			cell := grid.Cell(tier, col)
			row.AddCell().Value = fmt.Sprintf("%d (%.1f%%)", cell.Count, cell.Percent)
		}
	}

	totals := sheet.AddRow()
	totals.AddCell().Value = "total"
	for _, col := range grid.Columns {
		var sum int
		for _, tier := range scoring.Tiers {
			sum += grid.Cell(tier, col).Count
		}
		totals.AddCell().Value = fmt.Sprintf("%d", sum)
	}

	return nil
}
