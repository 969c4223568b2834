// =============================================================================
// Loyalty Card Report - Source Workbook Normalizer
// =============================================================================
//
// This module reads one loyalty-card sales workbook exported by a service
// station and maps it onto the canonical three-field SalesRecord shape.
//
// SOURCE LAYOUT (first sheet):
//
//   | Row 0-5 | report preamble (title, period, station, filters)        |
//   | Row 6   | column headers                                            |
//   | Row 7.. | data rows                                                 |
//
//   After the preamble the exports contain a varying number of spacer
//   columns that are empty in every data row, followed by five populated
//   columns:
//
//   | Card number | Owner | Sales count | Card count | Revenue |
//
// NORMALIZATION:
//   1. Drop rows that are empty in every cell
//   2. Drop columns that are empty in every remaining data row
//   3. Drop the 3rd and 4th remaining columns (the two count columns)
//   4. Require exactly three columns to remain
//   5. Map them, in order, to card number, owner name and revenue
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/ginjaninja78/loyalty-card-report/internal/validation"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Layout describes where the data lives in a source workbook.
type Layout struct {
	// HeaderRow is the 0-based index of the column header row.
	// Every row above it is preamble, every row below it is data.
	// Default: 6
	HeaderRow int

	// DropColumns lists 0-based positions, counted after empty columns
	// are removed, that hold extraneous count columns.
	// Default: [2, 3]
	DropColumns []int

	// ExpectedColumns is the number of columns that must remain.
	// Default: 3 (card number, owner name, revenue)
	ExpectedColumns int
}

// DefaultLayout returns the layout of the station sales exports.
func DefaultLayout() Layout {
	return Layout{
		HeaderRow:       6,
		DropColumns:     []int{2, 3},
		ExpectedColumns: 3,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrMalformedSource is matched by every MalformedSourceError.
var ErrMalformedSource = errors.New("malformed source workbook")

// MalformedSourceError reports a workbook that has data but does not reduce
// to the canonical columns. It is distinct from the no-data condition.
type MalformedSourceError struct {
	// Source is the file name the workbook was read from.
	Source string

	// Columns is the number of columns left after pruning, or -1 when the
	// failure happened before pruning.
	Columns int

	// Row is the 0-based sheet row of a bad cell, or -1.
	Row int

	// Reason is a human-readable description.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *MalformedSourceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Reason)
	if e.Row >= 0 {
		msg = fmt.Sprintf("%s: row %d: %s", e.Source, e.Row+1, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrMalformedSource.
func (e *MalformedSourceError) Is(target error) bool {
	return target == ErrMalformedSource
}

func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}

// =============================================================================
// NORMALIZER
// =============================================================================

// NormalizeFile opens a local workbook and normalizes it.
func NormalizeFile(path string, layout Layout) ([]types.SalesRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	return Normalize(file, path, layout)
}

// Normalize reads a workbook from r and returns its canonical records.
// name is used only for error messages and logs. A workbook without data
// rows yields an empty slice and no error.
func Normalize(r io.Reader, name string, layout Layout) ([]types.SalesRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &MalformedSourceError{Source: name, Columns: -1, Row: -1, Reason: "not a readable workbook", Err: err}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &MalformedSourceError{Source: name, Columns: -1, Row: -1, Reason: "workbook has no sheets"}
	}

	// Raw values keep numbers free of the display formats used by the exports.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", name, err)
	}

	return normalizeRows(rows, name, layout)
}

// normalizeRows applies the pruning and mapping steps to an in-memory sheet.
func normalizeRows(rows [][]string, name string, layout Layout) ([]types.SalesRecord, error) {
	if len(rows) <= layout.HeaderRow+1 {
		slog.Debug("Source has no data rows", slog.String("source", name), slog.Int("rows", len(rows)))
		return []types.SalesRecord{}, nil
	}

	header := rows[layout.HeaderRow]

	// Keep the original row index next to each data row for error reporting.
	type dataRow struct {
		index int
		cells []string
	}
	var data []dataRow
	width := len(header)
	for i := layout.HeaderRow + 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		data = append(data, dataRow{index: i, cells: rows[i]})
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}

	if len(data) == 0 {
		slog.Debug("Source has only empty data rows", slog.String("source", name))
		return []types.SalesRecord{}, nil
	}

	// Step 2: columns that carry a value in at least one data row.
	var populated []int
	for col := 0; col < width; col++ {
		for _, row := range data {
			if cellAt(row.cells, col) != "" {
				populated = append(populated, col)
				break
			}
		}
	}

	// Step 3 + 4: positional drop, then the fixed-arity contract.
	columns, err := dropPositions(populated, layout.DropColumns)
	if err != nil {
		return nil, &MalformedSourceError{
			Source:  name,
			Columns: len(populated),
			Row:     -1,
			Reason:  fmt.Sprintf("only %d populated columns, cannot drop count columns", len(populated)),
			Err:     err,
		}
	}
	if len(columns) != layout.ExpectedColumns {
		return nil, &MalformedSourceError{
			Source:  name,
			Columns: len(columns),
			Row:     -1,
			Reason:  fmt.Sprintf("expected %d columns after pruning, found %d", layout.ExpectedColumns, len(columns)),
		}
	}

	slog.Debug("Mapped source columns",
		slog.String("source", name),
		slog.String("card_number", cellAt(header, columns[0])),
		slog.String("owner_name", cellAt(header, columns[1])),
		slog.String("revenue", cellAt(header, columns[2])))

	// Step 5: map and type the remaining columns.
	records := make([]types.SalesRecord, 0, len(data))
	for _, row := range data {
		card, verr := validation.CardNumber(cellAt(row.cells, columns[0]), row.index)
		if verr != nil {
			return nil, &MalformedSourceError{Source: name, Columns: len(columns), Row: row.index, Reason: "invalid card number", Err: verr}
		}
		revenue, verr := validation.Revenue(cellAt(row.cells, columns[2]), row.index)
		if verr != nil {
			return nil, &MalformedSourceError{Source: name, Columns: len(columns), Row: row.index, Reason: "invalid revenue", Err: verr}
		}

		records = append(records, types.SalesRecord{
			CardNumber: card,
			OwnerName:  cellAt(row.cells, columns[1]),
			Revenue:    revenue,
		})
	}

	return records, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// dropPositions removes the given positions from columns. Every position
// must exist.
func dropPositions(columns []int, positions []int) ([]int, error) {
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(columns) {
			return nil, fmt.Errorf("column position %d out of range", p)
		}
		drop[p] = true
	}

	kept := make([]int, 0, len(columns))
	for i, col := range columns {
		if !drop[i] {
			kept = append(kept, col)
		}
	}
	return kept, nil
}

// cellAt safely returns the trimmed value of a cell.
func cellAt(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
