/*
arithmetic.go - Payslip number computation

PURPOSE:
  Pure functions turning a SalaryStructure plus attendance facts into the
  numeric fields of a payslip. No storage, no clock, no side effects:
  everything here is deterministic and safe to run concurrently.

PRORATION:
  Basic pay defaults to the flat base salary regardless of attendance.
  Schools that dock pay for loss-of-pay days opt in to attendance
  proration, which scales base salary by presentDays/workingDays.
  The policy is an explicit strategy so the choice is visible at the
  call site rather than buried in the arithmetic.

SEE ALSO:
  - types.go: SalaryStructure, Attendance, PayrollRecord
  - generator.go: Applies this per employee during batch runs
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRORATION POLICY - How basic pay responds to attendance
// =============================================================================

// ProrationPolicy computes basic pay from base salary and attendance.
type ProrationPolicy interface {
	BasicPay(baseSalary decimal.Decimal, att Attendance) decimal.Decimal
}

// NoProration pays the flat base salary regardless of attendance.
// This is the default policy.
type NoProration struct{}

func (NoProration) BasicPay(baseSalary decimal.Decimal, _ Attendance) decimal.Decimal {
	return baseSalary
}

// AttendanceProration scales base salary by presentDays/workingDays,
// rounded to 2 decimal places. Zero working days pays zero.
type AttendanceProration struct{}

func (AttendanceProration) BasicPay(baseSalary decimal.Decimal, att Attendance) decimal.Decimal {
	if att.WorkingDays == 0 {
		return decimal.Zero
	}
	present := decimal.NewFromInt(int64(att.PresentDays))
	working := decimal.NewFromInt(int64(att.WorkingDays))
	return baseSalary.Mul(present).Div(working).Round(2)
}

// =============================================================================
// PAYSLIP COMPUTATION
// =============================================================================

// Payslip holds the computed numeric fields for one employee-month.
type Payslip struct {
	BasicPay        decimal.Decimal
	Allowances      AllowanceSet
	Deductions      DeductionSet
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPayable      decimal.Decimal
}

// Compute produces the payslip numbers for one employee-month.
// The structure and attendance are validated first; a negative monetary
// field or impossible day count fails with ErrInvalidStructure.
func Compute(s SalaryStructure, att Attendance, policy ProrationPolicy) (Payslip, error) {
	if err := s.Validate(); err != nil {
		return Payslip{}, err
	}
	if err := att.Validate(); err != nil {
		return Payslip{}, err
	}
	if policy == nil {
		policy = NoProration{}
	}

	basic := policy.BasicPay(s.BaseSalary, att)
	allowances := s.Allowances.Total()
	deductions := s.Deductions.Total()

	return Payslip{
		BasicPay:        basic,
		Allowances:      s.Allowances,
		Deductions:      s.Deductions,
		TotalAllowances: allowances,
		TotalDeductions: deductions,
		NetPayable:      basic.Add(allowances).Sub(deductions),
	}, nil
}
