// =============================================================================
// Loyalty Card Report - Shared Types
// =============================================================================
//
// This package contains the record shapes passed between pipeline stages.
// Types defined here are used by:
//   - xlsxparser (produces SalesRecord)
//   - ingest     (concatenates SalesRecord)
//   - converter  (groups into AggregatedRecord)
//   - xlsxwriter (renders AggregatedRecord)
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// CardNumberLength is the fixed width of a normalized loyalty card number.
const CardNumberLength = 5

// =============================================================================
// CANONICAL RECORDS
// =============================================================================

// SalesRecord is one canonical row read from a source report.
// Values are copied by value between stages and never modified.
type SalesRecord struct {
	// CardNumber is always CardNumberLength digits, left-padded with '0'.
	CardNumber string

	// OwnerName is the card owner exactly as it appears in the source.
	OwnerName string

	// Revenue is the sales amount attributed to the card in this row.
	Revenue decimal.Decimal
}

// Key returns the grouping identity of the record.
func (r SalesRecord) Key() CardKey {
	return CardKey{CardNumber: r.CardNumber, OwnerName: r.OwnerName}
}

// CardKey identifies one card/owner pair.
type CardKey struct {
	CardNumber string
	OwnerName  string
}

// AggregatedRecord is the revenue total for one card/owner pair.
type AggregatedRecord struct {
	CardNumber   string
	OwnerName    string
	RevenueTotal decimal.Decimal
}

// =============================================================================
// TOTALS
// =============================================================================

// Totals is the footer computed over a grouped record set.
type Totals struct {
	// RevenueGrandTotal is the sum of every RevenueTotal.
	RevenueGrandTotal decimal.Decimal

	// CardCount is the number of distinct card/owner pairs, not raw rows.
	CardCount int
}

// ComputeTotals sums the grouped records into a Totals footer.
func ComputeTotals(records []AggregatedRecord) Totals {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.RevenueTotal)
	}
	return Totals{RevenueGrandTotal: total, CardCount: len(records)}
}

// SumRevenue returns the revenue sum over raw records.
func SumRevenue(records []SalesRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Revenue)
	}
	return total
}
