/*
handlers_test.go - HTTP-level tests for the API handlers

Tests drive the chi router through httptest with the in-memory store,
covering the payroll, grading, and leave endpoints end to end.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/api"
	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/payroll"
	"github.com/campushq/school-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	store := memory.New()
	handler := api.NewHandler(store)
	server := httptest.NewServer(api.NewRouter(handler, zerolog.Nop()))
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func seedStaff(t *testing.T, store *memory.Store, withStructure bool) {
	t.Helper()
	ctx := context.Background()

	err := store.SaveEmployee(ctx, payroll.Employee{
		ID: "EMP001", Name: "Asha Verma", Role: "teacher", Active: true,
	})
	if err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}

	if withStructure {
		err = store.SaveStructure(ctx, payroll.SalaryStructure{
			EmployeeID:   "EMP001",
			AcademicYear: 2026,
			BaseSalary:   decimal.NewFromInt(40000),
			Allowances:   payroll.AllowanceSet{HouseRent: decimal.NewFromInt(8000)},
			Deductions:   payroll.DeductionSet{Tax: decimal.NewFromInt(2000)},
		})
		if err != nil {
			t.Fatalf("failed to seed structure: %v", err)
		}
	}
}

// =============================================================================
// EMPLOYEE ENDPOINT TESTS
// =============================================================================

func TestCreateAndGetEmployee(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/employees", map[string]any{
		"id": "EMP001", "name": "Asha Verma", "role": "teacher",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}

	resp = doJSON(t, "GET", server.URL+"/api/employees/EMP001", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}

	var emp api.EmployeeDTO
	decodeBody(t, resp, &emp)
	if emp.Name != "Asha Verma" || !emp.Active {
		t.Errorf("employee = %+v", emp)
	}
}

func TestGetEmployee_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/employees/NOPE", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateEmployee_Validation(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/employees", map[string]any{"name": "No ID"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing id should 400, got %d", resp.StatusCode)
	}
}

// =============================================================================
// SALARY STRUCTURE ENDPOINT TESTS
// =============================================================================

func TestSalaryStructureRoundTrip(t *testing.T) {
	server, store := newTestServer(t)
	seedStaff(t, store, false)

	resp := doJSON(t, "PUT", server.URL+"/api/employees/EMP001/salary-structure", map[string]any{
		"academic_year": 2026,
		"base_salary":   "40000",
		"house_rent":    "8000",
		"tax":           "2000",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, "GET", server.URL+"/api/employees/EMP001/salary-structure?year=2026", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}

	var s api.SalaryStructureDTO
	decodeBody(t, resp, &s)
	if s.BaseSalary != "40000" || s.HouseRent != "8000" {
		t.Errorf("structure = %+v", s)
	}
}

func TestSalaryStructure_NegativeRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "PUT", server.URL+"/api/employees/EMP001/salary-structure", map[string]any{
		"academic_year": 2026,
		"base_salary":   "-100",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative salary should 400, got %d", resp.StatusCode)
	}
}

// =============================================================================
// PAYROLL ENDPOINT TESTS
// =============================================================================

func TestGeneratePayroll(t *testing.T) {
	server, store := newTestServer(t)
	seedStaff(t, store, true)

	resp := doJSON(t, "POST", server.URL+"/api/payroll/generate", map[string]any{
		"month": 3, "year": 2026,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d, want 200", resp.StatusCode)
	}

	var summary api.PayrollSummaryDTO
	decodeBody(t, resp, &summary)
	if summary.Processed != 1 || len(summary.Skipped) != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalPayout != "46000" {
		t.Errorf("total payout = %s, want 46000", summary.TotalPayout)
	}

	resp = doJSON(t, "GET", server.URL+"/api/payroll/records/PAY-MARCH-2026-EMP001", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record lookup = %d, want 200", resp.StatusCode)
	}

	var rec api.PayrollRecordDTO
	decodeBody(t, resp, &rec)
	if rec.Status != "draft" || rec.PeriodLabel != "March 2026" {
		t.Errorf("record = %+v", rec)
	}
}

func TestGeneratePayroll_InvalidMonth(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/payroll/generate", map[string]any{
		"month": 13, "year": 2026,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("month 13 should 400, got %d", resp.StatusCode)
	}
}

func TestAdvancePayrollStatus(t *testing.T) {
	server, store := newTestServer(t)
	seedStaff(t, store, true)
	doJSON(t, "POST", server.URL+"/api/payroll/generate", map[string]any{"month": 3, "year": 2026})

	url := server.URL + "/api/payroll/records/PAY-MARCH-2026-EMP001/status"

	resp := doJSON(t, "POST", url, map[string]any{"status": "approved"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status = %d, want 200", resp.StatusCode)
	}

	// Skipping back to draft is a conflict, not a validation error.
	resp = doJSON(t, "POST", url, map[string]any{"status": "approved"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("repeat approval should 409, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "POST", url, map[string]any{"status": "paid", "payment_date": "2026-04-01"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pay status = %d, want 200", resp.StatusCode)
	}

	var rec api.PayrollRecordDTO
	decodeBody(t, resp, &rec)
	if rec.Status != "paid" || rec.PaymentDate == "" {
		t.Errorf("record = %+v", rec)
	}
}

// =============================================================================
// GRADE ENDPOINT TESTS
// =============================================================================

func TestEvaluateGrade(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/grades/evaluate", map[string]any{
		"marks_obtained": 47, "max_marks": 60,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var g api.GradeDTO
	decodeBody(t, resp, &g)
	if g.Percentage != 78.33 || g.Grade != "B+" || g.Points != 8 {
		t.Errorf("grade = %+v", g)
	}
}

// =============================================================================
// LEAVE ENDPOINT TESTS
// =============================================================================

func seedLeave(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	err := store.SaveType(ctx, leave.LeaveType{
		ID: "casual", Name: "Casual Leave", Paid: true, DefaultQuota: decimal.NewFromInt(12),
	})
	if err != nil {
		t.Fatalf("failed to seed leave type: %v", err)
	}
	err = store.SaveBalance(ctx, leave.LeaveBalance{
		EmployeeID: "EMP001", LeaveTypeID: "casual", AcademicYear: 2026,
		TotalGranted: decimal.NewFromInt(5), TotalUsed: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
}

func TestLeaveLifecycleOverHTTP(t *testing.T) {
	// Apply -> pending queue -> approve -> balance debited.
	server, store := newTestServer(t)
	seedStaff(t, store, false)
	seedLeave(t, store)

	resp := doJSON(t, "POST", server.URL+"/api/leaves", map[string]any{
		"employee_id":   "EMP001",
		"leave_type_id": "casual",
		"academic_year": 2026,
		"start_date":    "2026-03-02",
		"end_date":      "2026-03-04",
		"reason":        "family function",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("apply status = %d, want 201", resp.StatusCode)
	}

	var req api.LeaveRequestDTO
	decodeBody(t, resp, &req)
	if req.Status != "PENDING" {
		t.Fatalf("new request status = %s", req.Status)
	}

	resp = doJSON(t, "GET", server.URL+"/api/leaves/pending", nil)
	var pending []api.LeaveRequestDTO
	decodeBody(t, resp, &pending)
	if len(pending) != 1 {
		t.Fatalf("pending queue = %d, want 1", len(pending))
	}

	resp = doJSON(t, "POST", fmt.Sprintf("%s/api/leaves/%s/process", server.URL, req.ID), map[string]any{
		"decision": "APPROVED", "approver_id": "EMP005", "comments": "ok",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("process status = %d, want 200", resp.StatusCode)
	}

	var decided api.LeaveRequestDTO
	decodeBody(t, resp, &decided)
	if decided.Status != "APPROVED" || decided.DaysDebited != "3" {
		t.Errorf("decided = %+v", decided)
	}

	resp = doJSON(t, "GET", server.URL+"/api/employees/EMP001/leave-balances?year=2026", nil)
	var balances []api.LeaveBalanceDTO
	decodeBody(t, resp, &balances)
	if len(balances) != 1 || balances[0].Balance != "2" {
		t.Errorf("balances = %+v", balances)
	}
}

func TestApplyLeave_InvalidRange(t *testing.T) {
	server, store := newTestServer(t)
	seedLeave(t, store)

	resp := doJSON(t, "POST", server.URL+"/api/leaves", map[string]any{
		"employee_id":   "EMP001",
		"leave_type_id": "casual",
		"academic_year": 2026,
		"start_date":    "2026-03-10",
		"end_date":      "2026-03-05",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("inverted range should 400, got %d", resp.StatusCode)
	}
}

func TestCancelLeave_DecidedConflicts(t *testing.T) {
	server, store := newTestServer(t)
	seedStaff(t, store, false)
	seedLeave(t, store)

	resp := doJSON(t, "POST", server.URL+"/api/leaves", map[string]any{
		"employee_id":   "EMP001",
		"leave_type_id": "casual",
		"academic_year": 2026,
		"start_date":    "2026-03-02",
		"end_date":      "2026-03-02",
	})
	var req api.LeaveRequestDTO
	decodeBody(t, resp, &req)

	doJSON(t, "POST", fmt.Sprintf("%s/api/leaves/%s/process", server.URL, req.ID), map[string]any{
		"decision": "REJECTED", "approver_id": "EMP005",
	})

	resp = doJSON(t, "POST", fmt.Sprintf("%s/api/leaves/%s/cancel", server.URL, req.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("cancelling a decided request should 409, got %d", resp.StatusCode)
	}
}

func TestInitializeBalances(t *testing.T) {
	server, store := newTestServer(t)
	seedStaff(t, store, false)
	if err := store.SaveType(context.Background(), leave.LeaveType{
		ID: "casual", Name: "Casual Leave", Paid: true, DefaultQuota: decimal.NewFromInt(12),
	}); err != nil {
		t.Fatalf("failed to seed type: %v", err)
	}

	resp := doJSON(t, "POST", server.URL+"/api/admin/initialize-balances", map[string]any{
		"academic_year": 2026,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out api.InitializeBalancesResponse
	decodeBody(t, resp, &out)
	if out.Created != 1 || out.Skipped != 0 {
		t.Errorf("first run = %+v, want 1 created", out)
	}

	resp = doJSON(t, "POST", server.URL+"/api/admin/initialize-balances", map[string]any{
		"academic_year": 2026,
	})
	decodeBody(t, resp, &out)
	if out.Created != 0 || out.Skipped != 1 {
		t.Errorf("second run = %+v, want 1 skipped", out)
	}
}
