/*
generator.go - Batch payroll generation

PURPOSE:
  Orchestrates payslip computation across the active staff roster for a
  target pay period. Each employee's computation is independent; the only
  shared state is the record store append, which the store serializes.

PARTIAL-FAILURE POLICY:
  Collect-and-continue. An employee with no salary structure on file is
  skipped with a recorded reason and the batch moves on. The summary
  lists both the processed count and every skip, so a partial run is
  always distinguishable from a full one.

CANCELLATION:
  The batch checks the context between employees. On deadline it fails
  with ErrBatchTimeout; on cancellation it returns the context error.
  Either way, records already appended stay in place - there is no
  rollback.

DUPLICATE RUNS:
  Generation is NOT idempotent. Running the same period twice appends a
  second record per employee. Callers that want exactly-once runs must
  guard submission themselves.
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// BATCH GENERATOR
// =============================================================================

// BatchGenerator produces one payroll record per active employee for a
// pay period and persists them through the record store.
type BatchGenerator struct {
	Directory  EmployeeDirectory
	Structures StructureRepository
	Records    RecordStore
	Proration  ProrationPolicy

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// GenerateInput is one batch request.
type GenerateInput struct {
	Period PayPeriod

	// Attendance applies to every employee in the batch. Zero-value
	// attendance falls back to the period's working-day count with full
	// presence, matching how a school records a no-absence month.
	Attendance Attendance
}

// Generate runs one batch for the given period.
//
// Per-employee configuration failures are collected into the summary,
// not raised. The returned error is non-nil only for batch-level
// failures: directory errors, store errors, cancellation, or timeout.
func (g *BatchGenerator) Generate(ctx context.Context, in GenerateInput) (*PayrollSummary, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	log := zerolog.Ctx(ctx)

	att := in.Attendance
	if att == (Attendance{}) {
		wd := in.Period.WorkingDays()
		att = Attendance{WorkingDays: wd, PresentDays: wd}
	}
	if err := att.Validate(); err != nil {
		return nil, err
	}

	employees, err := g.Directory.ActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	summary := &PayrollSummary{
		Period:      in.Period,
		PeriodLabel: in.Period.Label(),
		TotalPayout: decimal.Zero,
		Status:      BatchProcessed,
		GeneratedAt: now(),
	}

	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &BatchTimeoutError{Period: in.Period, Processed: summary.Processed}
			}
			return nil, err
		}

		structure, err := g.Structures.GetStructure(ctx, emp.ID, in.Period.Year)
		if err != nil {
			if errors.Is(err, ErrMissingSalaryStructure) {
				log.Warn().Str("employee", string(emp.ID)).Msg("skipping employee: no salary structure")
				summary.Skipped = append(summary.Skipped, SkippedEmployee{
					EmployeeID: emp.ID,
					Reason:     "no salary structure on file",
				})
				continue
			}
			return nil, fmt.Errorf("failed to load structure for %s: %w", emp.ID, err)
		}

		slip, err := Compute(*structure, att, g.Proration)
		if err != nil {
			// A stored structure that fails validation is a configuration
			// problem for that employee, not the whole batch.
			summary.Skipped = append(summary.Skipped, SkippedEmployee{
				EmployeeID: emp.ID,
				Reason:     err.Error(),
			})
			continue
		}

		rec := PayrollRecord{
			ID:              in.Period.RecordID(emp.ID),
			EmployeeID:      emp.ID,
			Period:          in.Period,
			Attendance:      att,
			BasicPay:        slip.BasicPay,
			Allowances:      slip.Allowances,
			Deductions:      slip.Deductions,
			TotalAllowances: slip.TotalAllowances,
			TotalDeductions: slip.TotalDeductions,
			NetPayable:      slip.NetPayable,
			Status:          StatusDraft,
			GeneratedAt:     now(),
		}

		if err := g.Records.AppendRecord(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to persist payslip for %s: %w", emp.ID, err)
		}

		summary.Processed++
		summary.TotalPayout = summary.TotalPayout.Add(slip.NetPayable)
	}

	log.Info().
		Str("period", summary.PeriodLabel).
		Int("processed", summary.Processed).
		Int("skipped", len(summary.Skipped)).
		Str("total_payout", summary.TotalPayout.String()).
		Msg("payroll batch complete")

	return summary, nil
}
