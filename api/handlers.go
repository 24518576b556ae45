/*
handlers.go - HTTP API handlers for the school administration engine

PURPOSE:
  Exposes payroll, grading, and leave management via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                     List all employees
    GET    /api/employees/active              List active employees
    POST   /api/employees                     Create/update employee
    GET    /api/employees/{id}                Get employee details
    GET    /api/employees/{id}/salary-structure   Get salary structure
    PUT    /api/employees/{id}/salary-structure   Upsert salary structure
    GET    /api/employees/{id}/leave-balances     Leave balances for a year
    GET    /api/employees/{id}/leaves             Employee's leave requests

  Payroll:
    POST   /api/payroll/generate              Run a monthly batch
    GET    /api/payroll/records               List payslips (filterable)
    GET    /api/payroll/records/{id}          Get one payslip
    POST   /api/payroll/records/{id}/status   Advance payslip status

  Grades:
    POST   /api/grades/evaluate               Marks -> percentage + grade

  Leave:
    GET    /api/leave-types                   List policies
    POST   /api/leave-types                   Create/update policy
    DELETE /api/leave-types/{id}              Delete policy
    POST   /api/leaves                        Apply for leave
    GET    /api/leaves/pending                Approval queue
    GET    /api/leaves/{id}                   Get one request
    POST   /api/leaves/{id}/process           Approve/reject
    POST   /api/leaves/{id}/cancel            Cancel a pending request

  Admin:
    POST   /api/admin/initialize-balances     Seed yearly balances
    POST   /api/reset                         Clear all data (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (illegal lifecycle transition)
  - 408: Batch cut short by its deadline
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/campushq/school-engine/grading"
	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store aggregates every persistence contract the handlers need. Both
// the SQLite and the in-memory store satisfy it.
type Store interface {
	payroll.EmployeeDirectory
	payroll.StructureRepository
	payroll.RecordStore
	leave.TxStore

	SaveEmployee(ctx context.Context, emp payroll.Employee) error
	ListEmployees(ctx context.Context) ([]payroll.Employee, error)
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Store
	Generator *payroll.BatchGenerator
	Leave     *leave.Service

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store: store,
		Generator: &payroll.BatchGenerator{
			Directory:  store,
			Structures: store,
			Records:    store,
		},
		Leave:    leave.NewService(store),
		validate: validator.New(),
	}
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListActiveEmployees returns the payroll-eligible roster.
func (h *Handler) ListActiveEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ActiveEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list active employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), payroll.EmployeeID(id))
	if err != nil {
		h.domainError(w, err, "Failed to get employee")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	emp := payroll.Employee{
		ID:        payroll.EmployeeID(req.ID),
		Name:      req.Name,
		Role:      req.Role,
		Active:    active,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// SALARY STRUCTURE HANDLERS
// =============================================================================

// GetSalaryStructure returns the structure for ?year= (default: current).
func (h *Handler) GetSalaryStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	year := queryYear(r)

	structure, err := h.Store.GetStructure(r.Context(), payroll.EmployeeID(id), year)
	if err != nil {
		h.domainError(w, err, "Failed to get salary structure")
		return
	}
	writeJSON(w, http.StatusOK, toStructureDTO(*structure))
}

// SaveSalaryStructure upserts an employee's salary structure.
func (h *Handler) SaveSalaryStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SaveStructureRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	structure := payroll.SalaryStructure{
		EmployeeID:   payroll.EmployeeID(id),
		AcademicYear: req.AcademicYear,
		Frequency:    payroll.PayFrequency(req.Frequency),
	}

	var err error
	if structure.BaseSalary, err = parseAmount(req.BaseSalary); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base_salary", err)
		return
	}
	if structure.Allowances.HouseRent, err = parseAmount(req.HouseRent); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid house_rent", err)
		return
	}
	if structure.Allowances.Dearness, err = parseAmount(req.Dearness); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dearness", err)
		return
	}
	if structure.Allowances.Transport, err = parseAmount(req.Transport); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transport", err)
		return
	}
	if structure.Deductions.ProvidentFund, err = parseAmount(req.ProvidentFund); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid provident_fund", err)
		return
	}
	if structure.Deductions.Tax, err = parseAmount(req.Tax); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tax", err)
		return
	}

	if err := h.Store.SaveStructure(r.Context(), structure); err != nil {
		h.domainError(w, err, "Failed to save salary structure")
		return
	}
	writeJSON(w, http.StatusOK, toStructureDTO(structure))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GeneratePayroll runs a batch for the requested month.
func (h *Handler) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	var req GeneratePayrollRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := payroll.NewPayPeriod(req.Month, req.Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pay period", err)
		return
	}

	summary, err := h.Generator.Generate(r.Context(), payroll.GenerateInput{
		Period: period,
		Attendance: payroll.Attendance{
			WorkingDays:   req.WorkingDays,
			PresentDays:   req.PresentDays,
			LossOfPayDays: req.LossOfPayDays,
		},
	})
	if err != nil {
		h.domainError(w, err, "Failed to generate payroll")
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("period", summary.PeriodLabel).
		Int("processed", summary.Processed).
		Int("skipped", len(summary.Skipped)).
		Msg("payroll batch complete")

	writeJSON(w, http.StatusOK, toSummaryDTO(*summary))
}

// ListPayrollRecords returns payslips, optionally filtered by
// ?employee_id, ?month and ?year.
func (h *Handler) ListPayrollRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := r.URL.Query().Get("employee_id")

	var (
		records []payroll.PayrollRecord
		err     error
	)
	if employeeID != "" && r.URL.Query().Get("month") != "" {
		var period payroll.PayPeriod
		period, err = payroll.NewPayPeriod(queryInt(r, "month"), queryInt(r, "year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid pay period", err)
			return
		}
		records, err = h.Store.FindByEmployeePeriod(ctx, payroll.EmployeeID(employeeID), period)
	} else {
		records, err = h.Store.ListRecords(ctx)
		if employeeID != "" {
			filtered := records[:0]
			for _, rec := range records {
				if string(rec.EmployeeID) == employeeID {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payroll records", err)
		return
	}

	dtos := make([]PayrollRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toPayrollRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayrollRecord returns the newest payslip for an ID.
func (h *Handler) GetPayrollRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetRecord(r.Context(), payroll.RecordID(id))
	if err != nil {
		h.domainError(w, err, "Failed to get payroll record")
		return
	}
	writeJSON(w, http.StatusOK, toPayrollRecordDTO(*rec))
}

// AdvancePayrollStatus moves a payslip one lifecycle step forward.
func (h *Handler) AdvancePayrollStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AdvanceStatusRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paidAt := time.Now().UTC()
	if req.PaymentDate != "" {
		t, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment_date format (use YYYY-MM-DD)", err)
			return
		}
		paidAt = t
	}

	rec, err := h.Store.AdvanceStatus(r.Context(), payroll.RecordID(id), payroll.PayslipStatus(req.Status), paidAt)
	if err != nil {
		h.domainError(w, err, "Failed to advance payroll status")
		return
	}
	writeJSON(w, http.StatusOK, toPayrollRecordDTO(*rec))
}

// =============================================================================
// GRADE HANDLERS
// =============================================================================

// EvaluateGrade converts a mark pair into a percentage and grade band.
func (h *Handler) EvaluateGrade(w http.ResponseWriter, r *http.Request) {
	var req EvaluateGradeRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pct, grade := grading.Evaluate(req.MarksObtained, req.MaxMarks)
	writeJSON(w, http.StatusOK, GradeDTO{
		Percentage: pct,
		Grade:      grade.Grade,
		Points:     grade.Points,
		Remarks:    grade.Remarks,
	})
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

// ListLeaveTypes returns all leave policies.
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}

	dtos := make([]LeaveTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = toLeaveTypeDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveLeaveType creates or updates a leave policy.
func (h *Handler) SaveLeaveType(w http.ResponseWriter, r *http.Request) {
	var req SaveLeaveTypeRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	quota, err := parseAmount(req.DefaultQuota)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid default_quota", err)
		return
	}

	t := leave.LeaveType{
		ID:               req.ID,
		Name:             req.Name,
		Paid:             req.Paid,
		DefaultQuota:     quota,
		ApplicableRoles:  req.ApplicableRoles,
		RequiresDocument: req.RequiresDocument,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.Store.SaveType(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveTypeDTO(t))
}

// GetLeaveType returns one leave policy.
func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.GetType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.domainError(w, err, "Failed to get leave type")
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTO(*t))
}

// DeleteLeaveType removes a leave policy.
func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteType(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete leave type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ApplyLeave submits a leave request.
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req ApplyLeaveRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	request, err := h.Leave.Apply(r.Context(), leave.ApplyInput{
		EmployeeID:   req.EmployeeID,
		LeaveTypeID:  req.LeaveTypeID,
		AcademicYear: req.AcademicYear,
		StartDate:    start,
		EndDate:      end,
		HalfDay:      req.HalfDay,
		Reason:       req.Reason,
	})
	if err != nil {
		h.domainError(w, err, "Failed to apply for leave")
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(*request))
}

// GetLeaveRequest returns one leave request.
func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.Store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.domainError(w, err, "Failed to get leave request")
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*request))
}

// ListEmployeeLeaves returns an employee's leave requests.
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListRequestsByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPendingLeaves returns the approval queue.
func (h *Handler) ListPendingLeaves(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListPendingRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ProcessLeave approves or rejects a pending request.
func (h *Handler) ProcessLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProcessLeaveRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	request, err := h.Leave.Process(r.Context(), id, leave.Decision(req.Decision), req.ApproverID, req.Comments)
	if err != nil {
		h.domainError(w, err, "Failed to process leave request")
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*request))
}

// CancelLeave cancels a pending request.
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	request, err := h.Leave.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.domainError(w, err, "Failed to cancel leave request")
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*request))
}

// ListLeaveBalances returns an employee's balances for ?year=.
func (h *Handler) ListLeaveBalances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	year := queryYear(r)

	balances, err := h.Store.ListBalances(r.Context(), id, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave balances", err)
		return
	}

	dtos := make([]LeaveBalanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = toBalanceDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// InitializeBalances seeds leave balances for every active employee.
// Existing rows are left untouched, so the endpoint is safe to re-run.
func (h *Handler) InitializeBalances(w http.ResponseWriter, r *http.Request) {
	var req InitializeBalancesRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employees, err := h.Store.ActiveEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}

	roster := make([]leave.RosterEntry, len(employees))
	for i, e := range employees {
		roster[i] = leave.RosterEntry{EmployeeID: string(e.ID), Role: e.Role}
	}

	created, skipped, err := h.Leave.InitializeBalances(r.Context(), roster, req.AcademicYear)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to initialize balances", err)
		return
	}
	writeJSON(w, http.StatusOK, InitializeBalancesResponse{Created: created, Skipped: skipped})
}

// ResetDatabase clears all data (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

// domainError maps domain errors onto HTTP statuses.
func (h *Handler) domainError(w http.ResponseWriter, err error, message string) {
	switch {
	case payroll.IsNotFound(err) || leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, payroll.ErrInvalidStatusTransition) || errors.Is(err, leave.ErrInvalidTransition):
		writeError(w, http.StatusConflict, message, err)
	case payroll.IsClientError(err) || leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, payroll.ErrBatchTimeout):
		writeError(w, http.StatusRequestTimeout, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func queryYear(r *http.Request) int {
	if y := queryInt(r, "year"); y != 0 {
		return y
	}
	return time.Now().Year()
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
