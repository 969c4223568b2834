// =============================================================================
// Loyalty Card Report - Report Workbook Writer
// =============================================================================
//
// This module renders the grouped records into the single-sheet summary
// workbook that is mailed to the business and archived with the sources.
//
// SHEET LAYOUT:
//
//   | Row | A               | B           | C               | D          |
//   |-----|-----------------|-------------|-----------------|------------|
//   | 1   | caption (merged A:D)                                         |
//   | 2   | card number     | owner       | revenue         | card count |
//   | 3   | totals label    |             | grand total     | pair count |
//   | 4.. | card number     | owner       | revenue total   |            |
//
//   Column widths: A=11, B=65, C=15, D=11 (D carries no column style).
//
// TOTALS:
//   The grand total is the sum of the rendered revenue totals and the card
//   count is the number of rendered card/owner pairs.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls the texts of the report.
type Options struct {
	// SheetName is the name of the only sheet.
	SheetName string

	// Caption is written into the merged first row.
	Caption string

	// Headers are the four column headers, the last one being the
	// card count header that only the totals row fills.
	Headers [4]string

	// TotalsLabel is written into column A of the totals row.
	TotalsLabel string

	// CurrencySuffix is appended to every amount, e.g. "р.".
	CurrencySuffix string
}

// DefaultOptions returns the texts used by the business report.
func DefaultOptions() Options {
	return Options{
		SheetName:      "Данные",
		Caption:        "Продажи по картам лояльности СТО",
		Headers:        [4]string{"Номер карты", "Владелец карты", "Выручка", "Кол-во карт"},
		TotalsLabel:    "Компания MaCar:",
		CurrencySuffix: "р.",
	}
}

// Row numbers (1-based) of the fixed layout.
const (
	captionRow   = 1
	headerRow    = 2
	totalsRow    = 3
	firstDataRow = 4
)

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 11},
	{"B", 65},
	{"C", 15},
	{"D", 11},
}

// =============================================================================
// WRITER
// =============================================================================

// Write renders records into a workbook at path, replacing any existing
// file, and returns the totals written into the totals row.
func Write(path string, records []types.AggregatedRecord, opts Options) (types.Totals, error) {
	f, totals, err := Build(records, opts)
	if err != nil {
		return types.Totals{}, err
	}
	defer f.Close()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.Totals{}, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return types.Totals{}, fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return totals, nil
}

// Build renders records into a new in-memory workbook.
func Build(records []types.AggregatedRecord, opts Options) (*excelize.File, types.Totals, error) {
	f := excelize.NewFile()
	totals := types.ComputeTotals(records)

	if err := render(f, records, totals, opts); err != nil {
		f.Close()
		return nil, types.Totals{}, err
	}
	return f, totals, nil
}

func render(f *excelize.File, records []types.AggregatedRecord, totals types.Totals, opts Options) error {
	sheet := opts.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := registerStyles(f, opts.CurrencySuffix)
	if err != nil {
		return err
	}

	// Column layout.
	for _, c := range columnWidths {
		if err := f.SetColWidth(sheet, c.col, c.col, c.width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", c.col, err)
		}
	}
	colStyles := map[string]Role{"A": RoleDataRow, "B": RoleDataName, "C": RoleCurrency}
	for col, role := range colStyles {
		if err := f.SetColStyle(sheet, col, styles[role]); err != nil {
			return fmt.Errorf("failed to style column %s: %w", col, err)
		}
	}

	// Caption.
	if err := setCell(f, sheet, "A", captionRow, opts.Caption, styles[RoleCaption]); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, cellName("A", captionRow), cellName("D", captionRow)); err != nil {
		return fmt.Errorf("failed to merge caption: %w", err)
	}

	// Column headers.
	for i, header := range opts.Headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := setCell(f, sheet, col, headerRow, header, styles[RoleColumnHeader]); err != nil {
			return err
		}
	}

	// Totals row.
	totalCells := []struct {
		col   string
		value interface{}
		role  Role
	}{
		{"A", opts.TotalsLabel, RoleTotalLabel},
		{"B", nil, RoleTotalBlank},
		{"C", totals.RevenueGrandTotal.Round(2).InexactFloat64(), RoleTotalAmount},
		{"D", totals.CardCount, RoleTotalCount},
	}
	for _, c := range totalCells {
		if err := setCell(f, sheet, c.col, totalsRow, c.value, styles[c.role]); err != nil {
			return err
		}
	}

	// Data rows.
	for i, r := range records {
		row := firstDataRow + i
		if err := f.SetCellStr(sheet, cellName("A", row), r.CardNumber); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := f.SetCellStr(sheet, cellName("B", row), r.OwnerName); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := f.SetCellFloat(sheet, cellName("C", row), r.RevenueTotal.InexactFloat64(), 2, 64); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if len(records) > 0 {
		last := firstDataRow + len(records) - 1
		for col, role := range colStyles {
			if err := f.SetCellStyle(sheet, cellName(col, firstDataRow), cellName(col, last), styles[role]); err != nil {
				return fmt.Errorf("failed to style column %s: %w", col, err)
			}
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func setCell(f *excelize.File, sheet, col string, row int, value interface{}, style int) error {
	cell := cellName(col, row)
	if value != nil {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to style %s: %w", cell, err)
	}
	return nil
}

func cellName(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
