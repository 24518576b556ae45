package payroll

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PAY PERIOD - A (month, year) pair payroll is generated for
// =============================================================================

// PayPeriod identifies a single payroll month.
type PayPeriod struct {
	Month time.Month
	Year  int
}

// NewPayPeriod builds a period from a numeric month (1-12).
func NewPayPeriod(month int, year int) (PayPeriod, error) {
	if month < 1 || month > 12 {
		return PayPeriod{}, fmt.Errorf("invalid month %d: %w", month, ErrInvalidStructure)
	}
	return PayPeriod{Month: time.Month(month), Year: year}, nil
}

// Label returns the human-readable period name, e.g. "March 2026".
func (p PayPeriod) Label() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// Key returns the canonical storage key, e.g. "2026-03".
func (p PayPeriod) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// RecordID returns the deterministic payslip identifier for an employee,
// e.g. PAY-MARCH-2026-EMP001.
func (p PayPeriod) RecordID(employeeID EmployeeID) RecordID {
	return RecordID(fmt.Sprintf("PAY-%s-%d-%s",
		strings.ToUpper(p.Month.String()), p.Year, employeeID))
}

// Days returns the number of calendar days in the period.
func (p PayPeriod) Days() int {
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// WorkingDays returns the number of Monday-Friday days in the period.
// Used as the default when the caller supplies no attendance facts.
func (p PayPeriod) WorkingDays() int {
	count := 0
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == p.Month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

func (p PayPeriod) String() string { return p.Label() }
