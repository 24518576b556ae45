package leave

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when a request ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrInvalidTransition is returned when processing or cancelling a
	// request that is no longer PENDING.
	ErrInvalidTransition = errors.New("invalid leave request transition")

	// ErrRequestNotFound is returned when a request lookup misses.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrTypeNotFound is returned when a leave type lookup misses.
	ErrTypeNotFound = errors.New("leave type not found")

	// ErrBalanceNotFound is returned when no balance row exists for the
	// (employee, type, year) a decision needs to mutate.
	ErrBalanceNotFound = errors.New("leave balance not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DateRangeError carries the offending dates.
type DateRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s ends before it starts (%s)",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

func (e *DateRangeError) Unwrap() error { return ErrInvalidDateRange }

// TransitionError describes a rejected lifecycle move.
type TransitionError struct {
	RequestID string
	Status    RequestStatus
	Action    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("leave request %s: cannot %s from status %s", e.RequestID, e.Action, e.Status)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrTypeNotFound) ||
		errors.Is(err, ErrBalanceNotFound)
}
