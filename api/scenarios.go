/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built data scenarios that can be loaded via API. Each
  scenario resets the database and seeds a coherent school state so the
  payroll and leave flows can be exercised immediately.

SCENARIOS:
  fresh-school:   A small staff with salary structures and leave types,
                  no payroll run yet
  mid-year:       Same staff after one payroll run and a few leave
                  requests in various states

USAGE:
  POST /api/scenarios/load {"scenario": "fresh-school"}

SEE ALSO:
  - handlers.go: Handler struct these methods hang off
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/payroll"
)

// ScenarioDTO describes one loadable scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	Scenario string `json:"scenario" validate:"required"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-school",
		Name:        "Fresh School",
		Description: "Five staff members with salary structures and leave types; no payroll run yet",
	},
	{
		ID:          "mid-year",
		Name:        "Mid Year",
		Description: "Staff after one payroll run with leave requests in several states",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and seeds the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.Scenario {
	case "fresh-school":
		err = h.loadFreshSchool(ctx)
	case "mid-year":
		err = h.loadMidYear(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.Scenario), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"scenario": req.Scenario, "status": "loaded"})
}

func (h *Handler) loadFreshSchool(ctx context.Context) error {
	now := time.Now().UTC()
	year := now.Year()

	staff := []struct {
		id, name, role string
		base           int64
	}{
		{"EMP001", "Asha Verma", "teacher", 42000},
		{"EMP002", "Ravi Iyer", "teacher", 45000},
		{"EMP003", "Meena Joshi", "librarian", 30000},
		{"EMP004", "Suresh Nair", "admin", 38000},
		{"EMP005", "Priya Menon", "principal", 75000},
	}

	for _, s := range staff {
		emp := payroll.Employee{
			ID:        payroll.EmployeeID(s.id),
			Name:      s.name,
			Role:      s.role,
			Active:    true,
			CreatedAt: now,
		}
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return err
		}

		base := decimal.NewFromInt(s.base)
		structure := payroll.SalaryStructure{
			EmployeeID:   emp.ID,
			AcademicYear: year,
			BaseSalary:   base,
			Allowances: payroll.AllowanceSet{
				HouseRent: base.Mul(decimal.NewFromFloat(0.2)).Round(2),
				Dearness:  base.Mul(decimal.NewFromFloat(0.1)).Round(2),
				Transport: decimal.NewFromInt(1600),
			},
			Deductions: payroll.DeductionSet{
				ProvidentFund: base.Mul(decimal.NewFromFloat(0.12)).Round(2),
				Tax:           base.Mul(decimal.NewFromFloat(0.05)).Round(2),
			},
			Frequency: payroll.FrequencyMonthly,
		}
		if err := h.Store.SaveStructure(ctx, structure); err != nil {
			return err
		}
	}

	types := []leave.LeaveType{
		{ID: "casual", Name: "Casual Leave", Paid: true, DefaultQuota: decimal.NewFromInt(12), CreatedAt: now},
		{ID: "sick", Name: "Sick Leave", Paid: true, DefaultQuota: decimal.NewFromInt(10), RequiresDocument: true, CreatedAt: now},
		{ID: "earned", Name: "Earned Leave", Paid: true, DefaultQuota: decimal.NewFromInt(15), ApplicableRoles: []string{"teacher", "principal"}, CreatedAt: now},
	}
	for _, t := range types {
		if err := h.Store.SaveType(ctx, t); err != nil {
			return err
		}
	}

	roster := make([]leave.RosterEntry, len(staff))
	for i, s := range staff {
		roster[i] = leave.RosterEntry{EmployeeID: s.id, Role: s.role}
	}
	_, _, err := h.Leave.InitializeBalances(ctx, roster, year)
	return err
}

func (h *Handler) loadMidYear(ctx context.Context) error {
	if err := h.loadFreshSchool(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	year := now.Year()

	// One completed payroll run for last month.
	lastMonth := now.AddDate(0, -1, 0)
	period, err := payroll.NewPayPeriod(int(lastMonth.Month()), lastMonth.Year())
	if err != nil {
		return err
	}
	if _, err := h.Generator.Generate(ctx, payroll.GenerateInput{Period: period}); err != nil {
		return err
	}

	// A decided, a rejected, and a pending leave request.
	nextMonday := now.AddDate(0, 0, (8-int(now.Weekday()))%7+7)
	applied, err := h.Leave.Apply(ctx, leave.ApplyInput{
		EmployeeID:   "EMP001",
		LeaveTypeID:  "casual",
		AcademicYear: year,
		StartDate:    nextMonday,
		EndDate:      nextMonday.AddDate(0, 0, 2),
		Reason:       "Family function",
	})
	if err != nil {
		return err
	}
	if _, err := h.Leave.Process(ctx, applied.ID, leave.DecisionApprove, "EMP005", "Enjoy"); err != nil {
		return err
	}

	rejected, err := h.Leave.Apply(ctx, leave.ApplyInput{
		EmployeeID:   "EMP002",
		LeaveTypeID:  "earned",
		AcademicYear: year,
		StartDate:    nextMonday,
		EndDate:      nextMonday.AddDate(0, 0, 9),
		Reason:       "Travel",
	})
	if err != nil {
		return err
	}
	if _, err := h.Leave.Process(ctx, rejected.ID, leave.DecisionReject, "EMP005", "Exam week"); err != nil {
		return err
	}

	_, err = h.Leave.Apply(ctx, leave.ApplyInput{
		EmployeeID:   "EMP003",
		LeaveTypeID:  "sick",
		AcademicYear: year,
		StartDate:    nextMonday,
		EndDate:      nextMonday,
		HalfDay:      true,
		Reason:       "Clinic visit",
	})
	return err
}
