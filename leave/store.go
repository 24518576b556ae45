/*
store.go - Persistence contracts for leave data

PURPOSE:
  Interfaces between the leave workflow and the database. The lifecycle
  service requires a TxStore: approval must persist the status change and
  the balance debit together or not at all.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - store/memory: In-memory store for tests and dev
*/
package leave

import "context"

// =============================================================================
// STORE - Leave types, balances, requests
// =============================================================================

// Store persists leave policies, balances, and requests.
type Store interface {
	// Leave types (admin CRUD). Deleting a type does not cascade;
	// balances and requests keep their type reference.
	SaveType(ctx context.Context, t LeaveType) error
	GetType(ctx context.Context, id string) (*LeaveType, error)
	ListTypes(ctx context.Context) ([]LeaveType, error)
	DeleteType(ctx context.Context, id string) error

	// Balances, keyed by (employee, type, academic year).
	GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	SaveBalance(ctx context.Context, b LeaveBalance) error
	ListBalances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)

	// Requests.
	SaveRequest(ctx context.Context, r LeaveRequest) error
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)
	ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	ListPendingRequests(ctx context.Context) ([]LeaveRequest, error)
}

// TxStore wraps Store with transaction support. The lifecycle service
// runs every decision inside WithTx so the status transition and the
// balance mutation commit together.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error,
	// nothing persists.
	WithTx(ctx context.Context, fn func(Store) error) error
}
