// =============================================================================
// Loyalty Card Report - Field Validation
// =============================================================================
//
// This module validates and normalizes the individual cells of a source row
// before they become a SalesRecord:
//   - Card numbers: digits only, at most 5 characters, left-padded with '0'
//   - Revenue: a decimal amount, blank meaning zero
//
// ERROR HANDLING:
//   - Each failure is returned as a *ValidationError with the row, field,
//     value and violated rule, so the caller can report exactly which cell
//     broke the fixed schema.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION ERROR TYPE
// =============================================================================

// ValidationError represents a single rejected cell.
type ValidationError struct {
	// Field is the canonical name of the field that failed validation.
	Field string

	// Value is the raw cell value.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the 0-based sheet row.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s' value '%s': %s (%s)", e.Field, e.Value, e.Message, e.Rule)
}

// =============================================================================
// FIELD RULES
// =============================================================================

// CardNumber validates a raw card identifier and returns it zero-padded to
// types.CardNumberLength characters.
//
// Numeric cells may arrive as "7" or "7.0" depending on how the exporting
// system typed the column; both become "00007".
func CardNumber(raw string, row int) (string, *ValidationError) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", &ValidationError{Field: "card_number", Value: raw, Rule: "required", Message: "card number is empty", RowNumber: row}
	}

	if strings.ContainsAny(value, ".eE") {
		if d, err := decimal.NewFromString(value); err == nil && d.IsInteger() && !d.IsNegative() {
			value = d.String()
		}
	}

	if !isDigits(value) {
		return "", &ValidationError{Field: "card_number", Value: raw, Rule: "digits", Message: "card number must contain digits only", RowNumber: row}
	}
	if len(value) > types.CardNumberLength {
		return "", &ValidationError{
			Field:     "card_number",
			Value:     raw,
			Rule:      fmt.Sprintf("max_length(%d)", types.CardNumberLength),
			Message:   "card number is too long",
			RowNumber: row,
		}
	}

	return PadLeft(value, types.CardNumberLength, '0'), nil
}

// Revenue parses a raw revenue cell. Blank cells count as zero. Text cells
// written with grouping spaces or a decimal comma are accepted.
func Revenue(raw string, row int) (decimal.Decimal, *ValidationError) {
	value := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if value == "" {
		return decimal.Zero, nil
	}
	value = strings.Replace(value, ",", ".", 1)

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "revenue", Value: raw, Rule: "decimal", Message: "revenue is not a number", RowNumber: row}
	}
	return d, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads s on the left with padChar up to length characters.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}

// isDigits reports whether s is non-empty and made of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
