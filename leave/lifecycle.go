/*
lifecycle.go - Leave request state machine

PURPOSE:
  Handles the full lifecycle of leave requests:
  1. Apply: Validate dates, create request in PENDING
  2. Process: Approver moves PENDING -> APPROVED or REJECTED
  3. Cancel: Requester withdraws, PENDING -> CANCELLED

REQUEST FLOW:

   apply()              process(approve)
  ─────────▶ PENDING ──────────────────▶ APPROVED  (balance debited)
               │  │
               │  └────────────────────▶ REJECTED  (balance untouched)
               │       process(reject)
               └───────────────────────▶ CANCELLED (re-credit if debited)
                       cancel()

ATOMICITY:
  Approval performs two sequenced steps inside one store transaction:
  (a) validate and persist the status transition, (b) debit the balance.
  Either both commit or neither does. Cancellation mirrors this with the
  re-credit.

CANCELLATION POLICY:
  Only PENDING requests can be cancelled; terminal states are final.
  The re-credit path checks DaysDebited rather than status, so a request
  that somehow carried a debit into cancellation gives the days back.
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE - Request lifecycle with balance side effects
// =============================================================================

// Service orchestrates the leave request lifecycle.
type Service struct {
	Store TxStore

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(store TxStore) *Service {
	return &Service{Store: store}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ApplyInput is a new leave application.
type ApplyInput struct {
	EmployeeID   string
	LeaveTypeID  string
	AcademicYear int
	StartDate    time.Time
	EndDate      time.Time
	HalfDay      bool
	Reason       string
}

// Apply creates a request in PENDING after validating the date range.
// A half-day request is pinned to its start date.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*LeaveRequest, error) {
	start := truncateDay(in.StartDate)
	end := truncateDay(in.EndDate)
	if in.HalfDay {
		end = start
	}
	if end.Before(start) {
		return nil, &DateRangeError{Start: start, End: end}
	}

	if _, err := s.Store.GetType(ctx, in.LeaveTypeID); err != nil {
		return nil, err
	}

	now := s.now()
	req := LeaveRequest{
		ID:           uuid.NewString(),
		EmployeeID:   in.EmployeeID,
		LeaveTypeID:  in.LeaveTypeID,
		AcademicYear: in.AcademicYear,
		StartDate:    start,
		EndDate:      end,
		HalfDay:      in.HalfDay,
		Reason:       in.Reason,
		Status:       StatusPending,
		DaysDebited:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save leave request: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("request", req.ID).
		Str("employee", req.EmployeeID).
		Str("span", req.Span().String()).
		Msg("leave request submitted")

	return &req, nil
}

// Process records an approver's decision on a PENDING request.
//
// On approval the requester's balance is debited by the request's
// business-day span in the same transaction as the status change.
// Rejection leaves the balance untouched.
func (s *Service) Process(ctx context.Context, requestID string, decision Decision, approverID, comments string) (*LeaveRequest, error) {
	var result *LeaveRequest

	err := s.Store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return &TransitionError{RequestID: requestID, Status: req.Status, Action: "process"}
		}

		now := s.now()
		req.ApproverID = approverID
		req.ApproverComments = comments
		req.DecidedAt = &now
		req.UpdatedAt = now

		switch decision {
		case DecisionApprove:
			req.Status = StatusApproved
			req.DaysDebited = req.Span()
			if err := s.debit(ctx, tx, req, req.DaysDebited); err != nil {
				return err
			}
		case DecisionReject:
			req.Status = StatusRejected
		default:
			return fmt.Errorf("unknown decision %q: %w", decision, ErrInvalidTransition)
		}

		if err := tx.SaveRequest(ctx, *req); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("request", result.ID).
		Str("status", string(result.Status)).
		Str("approver", approverID).
		Msg("leave request processed")

	return result, nil
}

// Cancel withdraws a PENDING request. Any days already debited are
// re-credited in the same transaction.
func (s *Service) Cancel(ctx context.Context, requestID string) (*LeaveRequest, error) {
	var result *LeaveRequest

	err := s.Store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return &TransitionError{RequestID: requestID, Status: req.Status, Action: "cancel"}
		}

		if req.DaysDebited.IsPositive() {
			if err := s.credit(ctx, tx, req, req.DaysDebited); err != nil {
				return err
			}
			req.DaysDebited = decimal.Zero
		}

		req.Status = StatusCancelled
		req.UpdatedAt = s.now()

		if err := tx.SaveRequest(ctx, *req); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) debit(ctx context.Context, tx Store, req *LeaveRequest, days decimal.Decimal) error {
	bal, err := tx.GetBalance(ctx, req.EmployeeID, req.LeaveTypeID, req.AcademicYear)
	if err != nil {
		return err
	}
	bal.TotalUsed = bal.TotalUsed.Add(days)
	bal.UpdatedAt = s.now()
	return tx.SaveBalance(ctx, *bal)
}

func (s *Service) credit(ctx context.Context, tx Store, req *LeaveRequest, days decimal.Decimal) error {
	bal, err := tx.GetBalance(ctx, req.EmployeeID, req.LeaveTypeID, req.AcademicYear)
	if err != nil {
		return err
	}
	bal.TotalUsed = bal.TotalUsed.Sub(days)
	bal.UpdatedAt = s.now()
	return tx.SaveBalance(ctx, *bal)
}

// =============================================================================
// BALANCE INITIALIZATION
// =============================================================================

// RosterEntry is the minimal employee shape balance seeding needs.
type RosterEntry struct {
	EmployeeID string
	Role       string
}

// InitializeBalances bulk-creates balance rows for every (employee,
// applicable type) pair at the type's default quota. Pairs that already
// have a balance for the year are skipped, so repeated calls are safe.
// Returns (created, skipped).
func (s *Service) InitializeBalances(ctx context.Context, roster []RosterEntry, academicYear int) (int, int, error) {
	types, err := s.Store.ListTypes(ctx)
	if err != nil {
		return 0, 0, err
	}

	created, skipped := 0, 0
	for _, entry := range roster {
		for _, t := range types {
			if !t.AppliesTo(entry.Role) {
				continue
			}

			existing, err := s.Store.GetBalance(ctx, entry.EmployeeID, t.ID, academicYear)
			if err != nil && !IsNotFound(err) {
				return created, skipped, err
			}
			if existing != nil {
				skipped++
				continue
			}

			bal := LeaveBalance{
				EmployeeID:   entry.EmployeeID,
				LeaveTypeID:  t.ID,
				AcademicYear: academicYear,
				TotalGranted: t.DefaultQuota,
				TotalUsed:    decimal.Zero,
				UpdatedAt:    s.now(),
			}
			if err := s.Store.SaveBalance(ctx, bal); err != nil {
				return created, skipped, err
			}
			created++
		}
	}

	zerolog.Ctx(ctx).Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("academic_year", academicYear).
		Msg("leave balances initialized")

	return created, skipped, nil
}
