package leave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestService(t *testing.T) (*leave.Service, *memory.Store) {
	store := memory.New()
	svc := leave.NewService(store)

	err := store.SaveType(context.Background(), leave.LeaveType{
		ID:           "casual",
		Name:         "Casual Leave",
		Paid:         true,
		DefaultQuota: decimal.NewFromInt(12),
	})
	if err != nil {
		t.Fatalf("failed to seed leave type: %v", err)
	}
	return svc, store
}

func seedBalance(t *testing.T, store *memory.Store, employeeID string, granted float64) {
	t.Helper()
	err := store.SaveBalance(context.Background(), leave.LeaveBalance{
		EmployeeID:   employeeID,
		LeaveTypeID:  "casual",
		AcademicYear: 2026,
		TotalGranted: decimal.NewFromFloat(granted),
		TotalUsed:    decimal.Zero,
	})
	if err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func apply(t *testing.T, svc *leave.Service, start, end time.Time, halfDay bool) *leave.LeaveRequest {
	t.Helper()
	req, err := svc.Apply(context.Background(), leave.ApplyInput{
		EmployeeID:   "EMP001",
		LeaveTypeID:  "casual",
		AcademicYear: 2026,
		StartDate:    start,
		EndDate:      end,
		HalfDay:      halfDay,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return req
}

// =============================================================================
// APPLICATION TESTS
// =============================================================================

func TestApply_InvalidDateRange(t *testing.T) {
	// GIVEN: end before start
	// WHEN: Applying
	// THEN: Rejected with ErrInvalidDateRange

	svc, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), leave.ApplyInput{
		EmployeeID:   "EMP001",
		LeaveTypeID:  "casual",
		AcademicYear: 2026,
		StartDate:    day(2026, time.March, 10),
		EndDate:      day(2026, time.March, 5),
	})
	if !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestApply_UnknownType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), leave.ApplyInput{
		EmployeeID:   "EMP001",
		LeaveTypeID:  "sabbatical",
		AcademicYear: 2026,
		StartDate:    day(2026, time.March, 2),
		EndDate:      day(2026, time.March, 2),
	})
	if !errors.Is(err, leave.ErrTypeNotFound) {
		t.Fatalf("expected ErrTypeNotFound, got %v", err)
	}
}

func TestApply_CreatesPending(t *testing.T) {
	svc, store := newTestService(t)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 4), false)
	if req.Status != leave.StatusPending {
		t.Errorf("new request status = %s, want PENDING", req.Status)
	}
	if !req.DaysDebited.IsZero() {
		t.Errorf("nothing should be debited on apply, got %v", req.DaysDebited)
	}

	stored, err := store.GetRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("stored request lookup failed: %v", err)
	}
	if stored.Status != leave.StatusPending {
		t.Errorf("stored status = %s, want PENDING", stored.Status)
	}
}

func TestApply_HalfDayPinnedToStart(t *testing.T) {
	svc, _ := newTestService(t)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 6), true)
	if !req.EndDate.Equal(req.StartDate) {
		t.Errorf("half-day end %v should equal start %v", req.EndDate, req.StartDate)
	}
	if !req.Span().Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("half-day span = %v, want 0.5", req.Span())
	}
}

// =============================================================================
// DECISION TESTS
// =============================================================================

func TestProcess_ApproveDebitsBusinessDays(t *testing.T) {
	// GIVEN: Balance of 5 and a Mon-Wed request (3 business days)
	// WHEN: Approving
	// THEN: Status APPROVED and balance drops to 2, atomically

	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 5)

	// 2026-03-02 is a Monday
	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 4), false)

	decided, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", "ok")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if decided.Status != leave.StatusApproved {
		t.Errorf("status = %s, want APPROVED", decided.Status)
	}
	if !decided.DaysDebited.Equal(decimal.NewFromInt(3)) {
		t.Errorf("days debited = %v, want 3", decided.DaysDebited)
	}
	if decided.DecidedAt == nil {
		t.Error("decided at should be stamped")
	}

	bal, err := store.GetBalance(context.Background(), "EMP001", "casual", 2026)
	if err != nil {
		t.Fatalf("balance lookup failed: %v", err)
	}
	if !bal.Balance().Equal(decimal.NewFromInt(2)) {
		t.Errorf("balance = %v, want 2", bal.Balance())
	}
}

func TestProcess_SpanSkipsWeekend(t *testing.T) {
	// Friday through Monday is 2 business days, not 4.
	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 10)

	// 2026-03-06 is a Friday, 2026-03-09 a Monday
	req := apply(t, svc, day(2026, time.March, 6), day(2026, time.March, 9), false)

	decided, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !decided.DaysDebited.Equal(decimal.NewFromInt(2)) {
		t.Errorf("days debited = %v, want 2", decided.DaysDebited)
	}
}

func TestProcess_HalfDayDebitsHalf(t *testing.T) {
	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 5)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 2), true)

	if _, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", ""); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	bal, _ := store.GetBalance(context.Background(), "EMP001", "casual", 2026)
	if !bal.Balance().Equal(decimal.NewFromFloat(4.5)) {
		t.Errorf("balance = %v, want 4.5", bal.Balance())
	}
}

func TestProcess_RejectLeavesBalance(t *testing.T) {
	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 5)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 4), false)

	decided, err := svc.Process(context.Background(), req.ID, leave.DecisionReject, "PRINCIPAL", "exam week")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if decided.Status != leave.StatusRejected {
		t.Errorf("status = %s, want REJECTED", decided.Status)
	}
	if decided.ApproverComments != "exam week" {
		t.Errorf("comments not recorded: %q", decided.ApproverComments)
	}

	bal, _ := store.GetBalance(context.Background(), "EMP001", "casual", 2026)
	if !bal.Balance().Equal(decimal.NewFromInt(5)) {
		t.Errorf("rejected request must not touch the balance, got %v", bal.Balance())
	}
}

func TestProcess_DecidedRequestIsFinal(t *testing.T) {
	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 5)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 2), false)
	if _, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", ""); err != nil {
		t.Fatalf("first decision failed: %v", err)
	}

	_, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", "")
	if !errors.Is(err, leave.ErrInvalidTransition) {
		t.Fatalf("second decision should fail, got %v", err)
	}

	// The double approval must not double-debit.
	bal, _ := store.GetBalance(context.Background(), "EMP001", "casual", 2026)
	if !bal.Balance().Equal(decimal.NewFromInt(4)) {
		t.Errorf("balance = %v, want 4", bal.Balance())
	}
}

func TestProcess_MissingBalanceRollsBack(t *testing.T) {
	// GIVEN: No balance row for the requester
	// WHEN: Approving
	// THEN: The error surfaces and the status change is rolled back too

	svc, store := newTestService(t)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 4), false)

	_, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", "")
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}

	stored, _ := store.GetRequest(context.Background(), req.ID)
	if stored.Status != leave.StatusPending {
		t.Errorf("failed approval must roll back the status, got %s", stored.Status)
	}
}

func TestProcess_AllowsOverdraw(t *testing.T) {
	// Approval does not gate on remaining balance; the balance may go
	// negative and reads as an advance against next year's quota.
	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 1)

	req := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 6), false)

	if _, err := svc.Process(context.Background(), req.ID, leave.DecisionApprove, "PRINCIPAL", ""); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	bal, _ := store.GetBalance(context.Background(), "EMP001", "casual", 2026)
	if !bal.Balance().Equal(decimal.NewFromInt(-4)) {
		t.Errorf("balance = %v, want -4", bal.Balance())
	}
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func TestCancel_PendingOnly(t *testing.T) {
	svc, store := newTestService(t)
	seedBalance(t, store, "EMP001", 5)

	pending := apply(t, svc, day(2026, time.March, 2), day(2026, time.March, 3), false)

	cancelled, err := svc.Cancel(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != leave.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	approved := apply(t, svc, day(2026, time.March, 9), day(2026, time.March, 10), false)
	if _, err := svc.Process(context.Background(), approved.ID, leave.DecisionApprove, "PRINCIPAL", ""); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	_, err = svc.Cancel(context.Background(), approved.ID)
	if !errors.Is(err, leave.ErrInvalidTransition) {
		t.Fatalf("cancelling a decided request should fail, got %v", err)
	}
}

func TestCancel_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Cancel(context.Background(), "missing")
	if !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

// =============================================================================
// BALANCE INITIALIZATION TESTS
// =============================================================================

func TestInitializeBalances(t *testing.T) {
	// GIVEN: A second type restricted to teachers
	// WHEN: Seeding a mixed roster twice
	// THEN: First run creates per applicable pair; second run skips all

	svc, store := newTestService(t)
	ctx := context.Background()

	err := store.SaveType(ctx, leave.LeaveType{
		ID:              "earned",
		Name:            "Earned Leave",
		Paid:            true,
		DefaultQuota:    decimal.NewFromInt(15),
		ApplicableRoles: []string{"teacher"},
	})
	if err != nil {
		t.Fatalf("failed to seed type: %v", err)
	}

	roster := []leave.RosterEntry{
		{EmployeeID: "EMP001", Role: "teacher"},
		{EmployeeID: "EMP002", Role: "admin"},
	}

	created, skipped, err := svc.InitializeBalances(ctx, roster, 2026)
	if err != nil {
		t.Fatalf("InitializeBalances failed: %v", err)
	}
	// casual applies to both, earned only to the teacher.
	if created != 3 || skipped != 0 {
		t.Errorf("first run = %d created / %d skipped, want 3/0", created, skipped)
	}

	bal, err := store.GetBalance(ctx, "EMP001", "earned", 2026)
	if err != nil {
		t.Fatalf("balance lookup failed: %v", err)
	}
	if !bal.TotalGranted.Equal(decimal.NewFromInt(15)) {
		t.Errorf("granted = %v, want default quota 15", bal.TotalGranted)
	}
	if _, err := store.GetBalance(ctx, "EMP002", "earned", 2026); !errors.Is(err, leave.ErrBalanceNotFound) {
		t.Errorf("admin should not receive a teacher-only balance, got %v", err)
	}

	// Re-run: existing rows untouched, nothing new.
	bal.TotalUsed = decimal.NewFromInt(5)
	if err := store.SaveBalance(ctx, *bal); err != nil {
		t.Fatalf("failed to update balance: %v", err)
	}

	created, skipped, err = svc.InitializeBalances(ctx, roster, 2026)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if created != 0 || skipped != 3 {
		t.Errorf("second run = %d created / %d skipped, want 0/3", created, skipped)
	}

	bal, _ = store.GetBalance(ctx, "EMP001", "earned", 2026)
	if !bal.TotalUsed.Equal(decimal.NewFromInt(5)) {
		t.Errorf("re-run must not reset usage, got %v", bal.TotalUsed)
	}
}
