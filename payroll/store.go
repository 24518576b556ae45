/*
store.go - Repository contracts for payroll persistence

PURPOSE:
  Defines the interfaces between the payroll domain and the database.
  Payroll records are append-plus-status-advance: creation appends, the
  only mutation ever allowed is the monotonic status move, enforced here
  so every implementation shares the rule.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - store/memory: In-memory store for tests and dev

SEE ALSO:
  - generator.go: Writes records through RecordStore
  - types.go: PayslipStatus.CanAdvanceTo
*/
package payroll

import (
	"context"
	"time"
)

// =============================================================================
// EMPLOYEE DIRECTORY - External collaborator consumed by batch generation
// =============================================================================

// EmployeeDirectory lists the staff roster.
type EmployeeDirectory interface {
	// ActiveEmployees returns employees eligible for payroll generation.
	ActiveEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns one employee, or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
}

// =============================================================================
// SALARY STRUCTURE REPOSITORY
// =============================================================================

// StructureRepository stores per-employee salary configuration.
type StructureRepository interface {
	// GetStructure returns the structure for (employee, academic year),
	// or ErrMissingSalaryStructure.
	GetStructure(ctx context.Context, id EmployeeID, year int) (*SalaryStructure, error)

	// SaveStructure upserts a structure. The structure must validate.
	SaveStructure(ctx context.Context, s SalaryStructure) error
}

// =============================================================================
// RECORD STORE - Generated payslips
// =============================================================================

// RecordStore persists generated payroll records.
//
// Creation is append-only: regenerating a period appends a second record
// for the same (employee, period) rather than replacing the first. The
// single permitted mutation is AdvanceStatus, one forward step at a time.
type RecordStore interface {
	// AppendRecord persists a new payslip.
	AppendRecord(ctx context.Context, rec PayrollRecord) error

	// GetRecord returns a payslip by ID, or ErrRecordNotFound.
	GetRecord(ctx context.Context, id RecordID) (*PayrollRecord, error)

	// FindByEmployeePeriod returns all payslips for (employee, period),
	// oldest first. Duplicates from re-generation all appear.
	FindByEmployeePeriod(ctx context.Context, id EmployeeID, period PayPeriod) ([]PayrollRecord, error)

	// ListRecords returns all payslips, newest generation first.
	ListRecords(ctx context.Context) ([]PayrollRecord, error)

	// AdvanceStatus moves a payslip one step forward
	// (Draft -> Approved -> Paid). Backward or skipping moves fail with
	// ErrInvalidStatusTransition. Advancing to Paid stamps paidAt as the
	// payment date.
	AdvanceStatus(ctx context.Context, id RecordID, next PayslipStatus, paidAt time.Time) (*PayrollRecord, error)
}
