/*
Package leave manages leave policies, balances, and the request workflow
for school staff.

PURPOSE:
  - LeaveType: Admin-defined policy (paid/unpaid, annual quota, roles)
  - LeaveBalance: Per (employee, type, academic year) entitlement ledger
  - LeaveRequest: The PENDING -> APPROVED/REJECTED/CANCELLED state machine

BALANCE SEMANTICS:
  balance == totalGranted - totalUsed, always. Approval debits the
  balance by the business-day span of the request (half-day = 0.5),
  atomically with the status transition. Overdraw is permitted: the
  balance may go negative, surfacing as a visible deficit rather than a
  hard rejection.

SEE ALSO:
  - lifecycle.go: Request state machine and side effects
  - calendar.go: Business-day counting
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPE - Policy definition
// =============================================================================

// LeaveType is an admin-managed leave policy.
type LeaveType struct {
	ID               string
	Name             string
	Paid             bool
	DefaultQuota     decimal.Decimal // days granted per academic year
	ApplicableRoles  []string        // empty = all roles
	RequiresDocument bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AppliesTo reports whether the policy covers a role.
func (t LeaveType) AppliesTo(role string) bool {
	if len(t.ApplicableRoles) == 0 {
		return true
	}
	for _, r := range t.ApplicableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// =============================================================================
// LEAVE BALANCE - Entitlement per (employee, type, academic year)
// =============================================================================

// LeaveBalance tracks one employee's entitlement under one leave type
// for one academic year. Balance() is derived, never stored drift-prone.
type LeaveBalance struct {
	EmployeeID   string
	LeaveTypeID  string
	AcademicYear int
	TotalGranted decimal.Decimal
	TotalUsed    decimal.Decimal
	UpdatedAt    time.Time
}

// Balance returns granted minus used. May be negative: overdraw is
// reported, not prevented.
func (b LeaveBalance) Balance() decimal.Decimal {
	return b.TotalGranted.Sub(b.TotalUsed)
}

// =============================================================================
// LEAVE REQUEST - One employee's application
// =============================================================================

// RequestStatus is the leave request lifecycle state.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Decision is the approver's verdict when processing a request.
type Decision string

const (
	DecisionApprove Decision = "APPROVED"
	DecisionReject  Decision = "REJECTED"
)

// LeaveRequest is one application, from submission to decision.
type LeaveRequest struct {
	ID           string
	EmployeeID   string
	LeaveTypeID  string
	AcademicYear int

	StartDate time.Time
	EndDate   time.Time
	HalfDay   bool
	Reason    string

	Status RequestStatus

	// Days debited from the balance when approved. Recorded on the
	// request so cancellation knows exactly what to re-credit.
	DaysDebited decimal.Decimal

	ApproverID       string
	ApproverComments string
	DecidedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Span returns the business-day length of the request.
func (r LeaveRequest) Span() decimal.Decimal {
	if r.HalfDay {
		return decimal.NewFromFloat(0.5)
	}
	return BusinessDays(r.StartDate, r.EndDate)
}
