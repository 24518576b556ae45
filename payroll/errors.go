/*
errors.go - Centralized error types for the payroll domain

PURPOSE:
  All payroll error types in one place for consistency and
  discoverability. Callers match with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Configuration errors - Bad salary structures or attendance facts
  2. Lifecycle errors - Invalid payslip status moves
  3. Batch errors - Generation timed out or was cancelled

USAGE:
  if errors.Is(err, payroll.ErrInvalidStructure) {
      // surface as a 400 to the caller
  }
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidStructure is returned when a salary structure or attendance
	// record violates a basic invariant (negative money, impossible days).
	ErrInvalidStructure = errors.New("invalid salary structure")

	// ErrMissingSalaryStructure is returned when an employee has no salary
	// structure on file for the requested year.
	ErrMissingSalaryStructure = errors.New("missing salary structure")

	// ErrInvalidStatusTransition is returned on a backward or skipping
	// payslip status move.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrBatchTimeout is returned when batch generation exceeds the
	// caller-supplied deadline. Records written before the deadline remain.
	ErrBatchTimeout = errors.New("payroll batch generation timed out")

	// ErrRecordNotFound is returned when a payroll record lookup misses.
	ErrRecordNotFound = errors.New("payroll record not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidStructureError identifies the offending monetary field.
type InvalidStructureError struct {
	EmployeeID EmployeeID
	Field      string
	Value      decimal.Decimal
}

func (e *InvalidStructureError) Error() string {
	return fmt.Sprintf("invalid salary structure for %s: %s is negative (%s)",
		e.EmployeeID, e.Field, e.Value)
}

func (e *InvalidStructureError) Unwrap() error { return ErrInvalidStructure }

// InvalidAttendanceError reports impossible day counts.
type InvalidAttendanceError struct {
	Attendance Attendance
}

func (e *InvalidAttendanceError) Error() string {
	return fmt.Sprintf("invalid attendance: present %d + loss-of-pay %d exceeds working days %d",
		e.Attendance.PresentDays, e.Attendance.LossOfPayDays, e.Attendance.WorkingDays)
}

func (e *InvalidAttendanceError) Unwrap() error { return ErrInvalidStructure }

// MissingStructureError identifies which employee lacked configuration.
type MissingStructureError struct {
	EmployeeID EmployeeID
	Year       int
}

func (e *MissingStructureError) Error() string {
	return fmt.Sprintf("no salary structure on file for %s in %d", e.EmployeeID, e.Year)
}

func (e *MissingStructureError) Unwrap() error { return ErrMissingSalaryStructure }

// TransitionError describes a rejected status move.
type TransitionError struct {
	RecordID RecordID
	From     PayslipStatus
	To       PayslipStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("payslip %s: cannot move status %s -> %s", e.RecordID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStatusTransition }

// BatchTimeoutError reports how far a timed-out run got before aborting.
type BatchTimeoutError struct {
	Period    PayPeriod
	Processed int
}

func (e *BatchTimeoutError) Error() string {
	return fmt.Sprintf("batch for %s timed out after %d employees", e.Period.Label(), e.Processed)
}

func (e *BatchTimeoutError) Unwrap() error { return ErrBatchTimeout }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidStructure) ||
		errors.Is(err, ErrInvalidStatusTransition)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrMissingSalaryStructure)
}
