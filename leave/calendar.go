package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BUSINESS-DAY COUNTING
// =============================================================================

// IsBusinessDay reports whether a date is Monday through Friday.
// School holidays are not modelled; weekends are the only non-working days.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDays counts the business days in [start, end], inclusive.
// An inverted range counts zero.
func BusinessDays(start, end time.Time) decimal.Decimal {
	start = truncateDay(start)
	end = truncateDay(end)

	count := int64(0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return decimal.NewFromInt(count)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
