/*
Package payroll computes and manages monthly payslips for school staff.

PURPOSE:
  This package contains the domain types and algorithms for payroll:
  salary structures, attendance facts, payslip arithmetic, batch
  generation across the active staff roster, and the payslip status
  lifecycle (draft -> approved -> paid).

KEY CONCEPTS IN THIS FILE (types.go):
  - SalaryStructure: Per-employee pay configuration for an academic year
  - Attendance: Working/present/loss-of-pay day counts for one period
  - PayrollRecord: The generated payslip for one (employee, period)
  - PayrollSummary: The outcome of a batch generation run

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Explicit validation: Negative monetary fields are rejected, never clamped
  3. Monotonic lifecycle: Payslip status only ever moves forward
  4. Append semantics: Generated records are never updated in place,
     except for the status advance

SEE ALSO:
  - arithmetic.go: Payslip number computation
  - generator.go: Batch generation across employees
  - store.go: Repository contracts
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RecordID string

// Employee is the directory entry batch generation iterates over.
type Employee struct {
	ID        EmployeeID
	Name      string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// =============================================================================
// SALARY STRUCTURE - Per-employee pay configuration
// =============================================================================

// PayFrequency is how often the structure pays out. Only monthly is
// supported; the field exists so structures remain self-describing.
type PayFrequency string

const (
	FrequencyMonthly PayFrequency = "monthly"
)

// AllowanceSet is the fixed allowance breakdown of a salary structure.
type AllowanceSet struct {
	HouseRent decimal.Decimal
	Dearness  decimal.Decimal
	Transport decimal.Decimal
}

// Total returns the sum of all allowance components.
func (a AllowanceSet) Total() decimal.Decimal {
	return a.HouseRent.Add(a.Dearness).Add(a.Transport)
}

// DeductionSet is the fixed deduction breakdown of a salary structure.
type DeductionSet struct {
	ProvidentFund decimal.Decimal
	Tax           decimal.Decimal
}

// Total returns the sum of all deduction components.
func (d DeductionSet) Total() decimal.Decimal {
	return d.ProvidentFund.Add(d.Tax)
}

// SalaryStructure is one employee's pay configuration for an academic year.
// All monetary fields must be >= 0; Validate enforces this.
type SalaryStructure struct {
	EmployeeID   EmployeeID
	AcademicYear int
	BaseSalary   decimal.Decimal
	Allowances   AllowanceSet
	Deductions   DeductionSet
	Frequency    PayFrequency
	UpdatedAt    time.Time
}

// Validate checks the non-negativity invariant on every monetary field.
func (s SalaryStructure) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"base_salary", s.BaseSalary},
		{"house_rent_allowance", s.Allowances.HouseRent},
		{"dearness_allowance", s.Allowances.Dearness},
		{"transport_allowance", s.Allowances.Transport},
		{"provident_fund", s.Deductions.ProvidentFund},
		{"tax", s.Deductions.Tax},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return &InvalidStructureError{
				EmployeeID: s.EmployeeID,
				Field:      f.name,
				Value:      f.value,
			}
		}
	}
	return nil
}

// =============================================================================
// ATTENDANCE - Day counts for one pay period
// =============================================================================

// Attendance carries the day counts recorded against a pay period.
// Invariant: PresentDays + LossOfPayDays <= WorkingDays.
type Attendance struct {
	WorkingDays   int
	PresentDays   int
	LossOfPayDays int
}

// Validate checks the attendance day-count invariant.
func (a Attendance) Validate() error {
	if a.WorkingDays < 0 || a.PresentDays < 0 || a.LossOfPayDays < 0 {
		return &InvalidAttendanceError{Attendance: a}
	}
	if a.PresentDays+a.LossOfPayDays > a.WorkingDays {
		return &InvalidAttendanceError{Attendance: a}
	}
	return nil
}

// =============================================================================
// PAYROLL RECORD - One payslip per (employee, pay period)
// =============================================================================

// PayslipStatus is the payroll record lifecycle state.
// Transitions are strictly forward: Draft -> Approved -> Paid.
type PayslipStatus string

const (
	StatusDraft    PayslipStatus = "draft"
	StatusApproved PayslipStatus = "approved"
	StatusPaid     PayslipStatus = "paid"
)

// rank orders statuses for monotonicity checks.
func (s PayslipStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusApproved:
		return 1
	case StatusPaid:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next is a single valid
// forward step. Skipping a state (Draft -> Paid) is not allowed.
func (s PayslipStatus) CanAdvanceTo(next PayslipStatus) bool {
	return s.rank() >= 0 && next.rank() == s.rank()+1
}

// PayrollRecord is a generated payslip. Numeric fields satisfy
// NetPayable == BasicPay + TotalAllowances - TotalDeductions.
type PayrollRecord struct {
	ID         RecordID
	EmployeeID EmployeeID
	Period     PayPeriod

	Attendance Attendance

	BasicPay        decimal.Decimal
	Allowances      AllowanceSet
	Deductions      DeductionSet
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPayable      decimal.Decimal

	Status      PayslipStatus
	PaymentDate *time.Time
	GeneratedAt time.Time
}

// =============================================================================
// BATCH SUMMARY - Outcome of one generation run
// =============================================================================

// BatchStatus is the terminal state of a generation run.
type BatchStatus string

const (
	BatchProcessed BatchStatus = "processed"
)

// SkippedEmployee records why an employee produced no payslip in a batch.
type SkippedEmployee struct {
	EmployeeID EmployeeID
	Reason     string
}

// PayrollSummary reports the outcome of one batch generation run.
// Skipped employees are listed individually so a partial run is
// distinguishable from a full one.
type PayrollSummary struct {
	Period      PayPeriod
	PeriodLabel string
	Processed   int
	Skipped     []SkippedEmployee
	TotalPayout decimal.Decimal
	Status      BatchStatus
	GeneratedAt time.Time
}
