// Package period derives the reporting month a run covers.
//
// The run is triggered early in the month following the reported one, so
// the period is taken from "now" minus a fixed lookback rather than from a
// calendar previous-month computation.
package period

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLookbackDays is how far back from the run date the period is read.
const DefaultLookbackDays = 25

var monthNames = map[string][12]string{
	"ru": {"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"},
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

// Period is one reporting month.
type Period struct {
	Year   int
	Month  time.Month
	locale string
}

// Derive returns the period for a run executed at now.
func Derive(now time.Time, lookbackDays int, locale string) (Period, error) {
	if _, ok := monthNames[strings.ToLower(locale)]; !ok {
		return Period{}, fmt.Errorf("unsupported locale %q", locale)
	}
	d := now.AddDate(0, 0, -lookbackDays)
	return Period{Year: d.Year(), Month: d.Month(), locale: strings.ToLower(locale)}, nil
}

// MonthName is the localized month name, e.g. "Сентябрь".
func (p Period) MonthName() string {
	return monthNames[p.locale][p.Month-1]
}

// Label is the localized month name and 4-digit year, e.g. "Сентябрь 2026".
func (p Period) Label() string {
	return fmt.Sprintf("%s %04d", p.MonthName(), p.Year)
}

// Numeric is the period as MM.YYYY, e.g. "09.2026".
func (p Period) Numeric() string {
	return fmt.Sprintf("%02d.%04d", int(p.Month), p.Year)
}
