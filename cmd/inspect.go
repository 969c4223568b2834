// =============================================================================
// Loyalty Card Report - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which normalizes one local export
// and prints what the run would read from it. Nothing is mailed or moved.
//
// COMMAND USAGE:
//   loyalty-report inspect <file.xlsx> [--header-row N] [--grouped]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/loyalty-card-report/internal/converter"
	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/ginjaninja78/loyalty-card-report/internal/xlsxparser"
	"github.com/spf13/cobra"
)

var inspectHeaderRow int

var inspectGrouped bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the records one export normalizes to",
	Long: `The inspect command reads one station export from the local disk, applies
the same normalization as the run command and prints the records and their
totals. A malformed export is reported with the reason it was rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectFile(args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVar(
		&inspectHeaderRow,
		"header-row",
		xlsxparser.DefaultLayout().HeaderRow,
		"0-based row of the column headers",
	)

	inspectCmd.Flags().BoolVar(
		&inspectGrouped,
		"grouped",
		false,
		"Print card/owner totals instead of raw records",
	)
}

func inspectFile(path string) error {
	layout := xlsxparser.DefaultLayout()
	layout.HeaderRow = inspectHeaderRow

	records, err := xlsxparser.NormalizeFile(path, layout)
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", path)
	fmt.Printf("Records: %d\n\n", len(records))
	if len(records) == 0 {
		fmt.Println("No data rows.")
		return nil
	}

	if inspectGrouped {
		grouped := converter.Group(records)
		for _, g := range grouped {
			fmt.Printf("%s  %-50s %14s\n", g.CardNumber, g.OwnerName, g.RevenueTotal.StringFixed(2))
		}
		totals := types.ComputeTotals(grouped)
		fmt.Printf("\nCards: %d  Total: %s\n", totals.CardCount, totals.RevenueGrandTotal.StringFixed(2))
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %-50s %14s\n", r.CardNumber, r.OwnerName, r.Revenue.StringFixed(2))
	}
	fmt.Printf("\nTotal: %s\n", types.SumRevenue(records).StringFixed(2))
	return nil
}
