/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(e.ID),
		Name:      e.Name,
		Role:      e.Role,
		Active:    e.Active,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SALARY STRUCTURES
// =============================================================================

// SalaryStructureDTO represents a salary structure in API responses.
type SalaryStructureDTO struct {
	EmployeeID    string `json:"employee_id"`
	AcademicYear  int    `json:"academic_year"`
	BaseSalary    string `json:"base_salary"`
	HouseRent     string `json:"house_rent"`
	Dearness      string `json:"dearness"`
	Transport     string `json:"transport"`
	ProvidentFund string `json:"provident_fund"`
	Tax           string `json:"tax"`
	Frequency     string `json:"frequency"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// SaveStructureRequest is the request to upsert a salary structure.
// Amounts are decimal strings to avoid float rounding on the wire.
type SaveStructureRequest struct {
	AcademicYear  int    `json:"academic_year" validate:"required,min=2000"`
	BaseSalary    string `json:"base_salary" validate:"required"`
	HouseRent     string `json:"house_rent"`
	Dearness      string `json:"dearness"`
	Transport     string `json:"transport"`
	ProvidentFund string `json:"provident_fund"`
	Tax           string `json:"tax"`
	Frequency     string `json:"frequency"`
}

func toStructureDTO(s payroll.SalaryStructure) SalaryStructureDTO {
	return SalaryStructureDTO{
		EmployeeID:    string(s.EmployeeID),
		AcademicYear:  s.AcademicYear,
		BaseSalary:    s.BaseSalary.String(),
		HouseRent:     s.Allowances.HouseRent.String(),
		Dearness:      s.Allowances.Dearness.String(),
		Transport:     s.Allowances.Transport.String(),
		ProvidentFund: s.Deductions.ProvidentFund.String(),
		Tax:           s.Deductions.Tax.String(),
		Frequency:     string(s.Frequency),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PAYROLL
// =============================================================================

// GeneratePayrollRequest triggers one batch run.
type GeneratePayrollRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000"`

	// Optional batch-wide attendance. Omitted means full presence for
	// the period's working days.
	WorkingDays   int `json:"working_days"`
	PresentDays   int `json:"present_days"`
	LossOfPayDays int `json:"loss_of_pay_days"`
}

// PayrollRecordDTO represents a payslip in API responses.
type PayrollRecordDTO struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	PeriodLabel     string `json:"period_label"`
	WorkingDays     int    `json:"working_days"`
	PresentDays     int    `json:"present_days"`
	LossOfPayDays   int    `json:"loss_of_pay_days"`
	BasicPay        string `json:"basic_pay"`
	TotalAllowances string `json:"total_allowances"`
	TotalDeductions string `json:"total_deductions"`
	NetPayable      string `json:"net_payable"`
	Status          string `json:"status"`
	PaymentDate     string `json:"payment_date,omitempty"`
	GeneratedAt     string `json:"generated_at"`
}

// PayrollSummaryDTO is the outcome of one batch run.
type PayrollSummaryDTO struct {
	Month       int                  `json:"month"`
	Year        int                  `json:"year"`
	PeriodLabel string               `json:"period_label"`
	Processed   int                  `json:"processed"`
	Skipped     []SkippedEmployeeDTO `json:"skipped"`
	TotalPayout string               `json:"total_payout"`
	Status      string               `json:"status"`
	GeneratedAt string               `json:"generated_at"`
}

// SkippedEmployeeDTO names an employee the batch could not pay.
type SkippedEmployeeDTO struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// AdvanceStatusRequest moves a payslip one step through its lifecycle.
type AdvanceStatusRequest struct {
	Status      string `json:"status" validate:"required,oneof=approved paid"`
	PaymentDate string `json:"payment_date"`
}

func toPayrollRecordDTO(rec payroll.PayrollRecord) PayrollRecordDTO {
	dto := PayrollRecordDTO{
		ID:              string(rec.ID),
		EmployeeID:      string(rec.EmployeeID),
		Month:           int(rec.Period.Month),
		Year:            rec.Period.Year,
		PeriodLabel:     rec.Period.Label(),
		WorkingDays:     rec.Attendance.WorkingDays,
		PresentDays:     rec.Attendance.PresentDays,
		LossOfPayDays:   rec.Attendance.LossOfPayDays,
		BasicPay:        rec.BasicPay.String(),
		TotalAllowances: rec.TotalAllowances.String(),
		TotalDeductions: rec.TotalDeductions.String(),
		NetPayable:      rec.NetPayable.String(),
		Status:          string(rec.Status),
		GeneratedAt:     rec.GeneratedAt.Format(time.RFC3339),
	}
	if rec.PaymentDate != nil {
		dto.PaymentDate = rec.PaymentDate.Format(time.RFC3339)
	}
	return dto
}

func toSummaryDTO(sum payroll.PayrollSummary) PayrollSummaryDTO {
	skipped := make([]SkippedEmployeeDTO, len(sum.Skipped))
	for i, s := range sum.Skipped {
		skipped[i] = SkippedEmployeeDTO{EmployeeID: string(s.EmployeeID), Reason: s.Reason}
	}
	return PayrollSummaryDTO{
		Month:       int(sum.Period.Month),
		Year:        sum.Period.Year,
		PeriodLabel: sum.PeriodLabel,
		Processed:   sum.Processed,
		Skipped:     skipped,
		TotalPayout: sum.TotalPayout.String(),
		Status:      string(sum.Status),
		GeneratedAt: sum.GeneratedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// GRADES
// =============================================================================

// EvaluateGradeRequest converts marks into a grade.
type EvaluateGradeRequest struct {
	MarksObtained float64 `json:"marks_obtained" validate:"min=0"`
	MaxMarks      float64 `json:"max_marks" validate:"min=0"`
}

// GradeDTO is the outcome of a grade evaluation.
type GradeDTO struct {
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	Points     int     `json:"points"`
	Remarks    string  `json:"remarks"`
}

// =============================================================================
// LEAVE
// =============================================================================

// LeaveTypeDTO represents a leave policy in API responses.
type LeaveTypeDTO struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Paid             bool     `json:"paid"`
	DefaultQuota     string   `json:"default_quota"`
	ApplicableRoles  []string `json:"applicable_roles"`
	RequiresDocument bool     `json:"requires_document"`
	CreatedAt        string   `json:"created_at,omitempty"`
}

// SaveLeaveTypeRequest is the request to create or update a leave policy.
type SaveLeaveTypeRequest struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	Paid             bool     `json:"paid"`
	DefaultQuota     string   `json:"default_quota" validate:"required"`
	ApplicableRoles  []string `json:"applicable_roles"`
	RequiresDocument bool     `json:"requires_document"`
}

// LeaveBalanceDTO represents one entitlement row.
type LeaveBalanceDTO struct {
	EmployeeID   string `json:"employee_id"`
	LeaveTypeID  string `json:"leave_type_id"`
	AcademicYear int    `json:"academic_year"`
	TotalGranted string `json:"total_granted"`
	TotalUsed    string `json:"total_used"`
	Balance      string `json:"balance"`
}

// ApplyLeaveRequest is the request to apply for leave.
// Dates use YYYY-MM-DD.
type ApplyLeaveRequest struct {
	EmployeeID   string `json:"employee_id" validate:"required"`
	LeaveTypeID  string `json:"leave_type_id" validate:"required"`
	AcademicYear int    `json:"academic_year" validate:"required,min=2000"`
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
	HalfDay      bool   `json:"half_day"`
	Reason       string `json:"reason"`
}

// ProcessLeaveRequest records an approver's decision.
type ProcessLeaveRequest struct {
	Decision   string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	ApproverID string `json:"approver_id" validate:"required"`
	Comments   string `json:"comments"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	LeaveTypeID      string `json:"leave_type_id"`
	AcademicYear     int    `json:"academic_year"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	HalfDay          bool   `json:"half_day"`
	Reason           string `json:"reason,omitempty"`
	Status           string `json:"status"`
	DaysDebited      string `json:"days_debited"`
	ApproverID       string `json:"approver_id,omitempty"`
	ApproverComments string `json:"approver_comments,omitempty"`
	DecidedAt        string `json:"decided_at,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// InitializeBalancesRequest seeds balances for the active roster.
type InitializeBalancesRequest struct {
	AcademicYear int `json:"academic_year" validate:"required,min=2000"`
}

// InitializeBalancesResponse reports what the seeding run did.
type InitializeBalancesResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func toLeaveTypeDTO(t leave.LeaveType) LeaveTypeDTO {
	roles := t.ApplicableRoles
	if roles == nil {
		roles = []string{}
	}
	return LeaveTypeDTO{
		ID:               t.ID,
		Name:             t.Name,
		Paid:             t.Paid,
		DefaultQuota:     t.DefaultQuota.String(),
		ApplicableRoles:  roles,
		RequiresDocument: t.RequiresDocument,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}
}

func toBalanceDTO(b leave.LeaveBalance) LeaveBalanceDTO {
	return LeaveBalanceDTO{
		EmployeeID:   b.EmployeeID,
		LeaveTypeID:  b.LeaveTypeID,
		AcademicYear: b.AcademicYear,
		TotalGranted: b.TotalGranted.String(),
		TotalUsed:    b.TotalUsed.String(),
		Balance:      b.Balance().String(),
	}
}

func toLeaveRequestDTO(r leave.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		LeaveTypeID:      r.LeaveTypeID,
		AcademicYear:     r.AcademicYear,
		StartDate:        r.StartDate.Format("2006-01-02"),
		EndDate:          r.EndDate.Format("2006-01-02"),
		HalfDay:          r.HalfDay,
		Reason:           r.Reason,
		Status:           string(r.Status),
		DaysDebited:      r.DaysDebited.String(),
		ApproverID:       r.ApproverID,
		ApproverComments: r.ApproverComments,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		dto.DecidedAt = r.DecidedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SHARED
// =============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
