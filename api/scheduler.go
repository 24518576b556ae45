/*
scheduler.go - Automated monthly payroll scheduler

PURPOSE:
  Periodically checks whether the previous month's payroll has been
  generated and runs the batch automatically when it has not. Lets a
  school run hands-off payroll while keeping the manual endpoint for
  re-runs and corrections.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Targets the previous calendar month once the month has rolled over
  - Skips months that already have at least one generated payslip
  - Each run is bounded by RunTimeout so a stuck batch cannot wedge
    the scheduler

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - RunTimeout:    Deadline for one batch run (default: 2 minutes)
  - Enabled:       Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPayrollScheduler(handler, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GeneratePayroll endpoint (manual runs)
  - payroll/generator.go: BatchGenerator
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campushq/school-engine/payroll"
)

// PayrollScheduler handles automated monthly payroll generation.
type PayrollScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	RunTimeout    time.Duration
	Enabled       bool

	logger zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPayrollScheduler creates a new scheduler.
func NewPayrollScheduler(handler *Handler, logger zerolog.Logger) *PayrollScheduler {
	return &PayrollScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		RunTimeout:    2 * time.Minute,
		Enabled:       true,
		logger:        logger.With().Str("component", "payroll-scheduler").Logger(),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.logger.Info().Msg("scheduler disabled, not starting")
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)
	go ps.run()

	ps.logger.Info().Dur("interval", ps.CheckInterval).Msg("scheduler started")
}

// Stop halts the scheduler and waits for any in-flight run.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	if ps.ticker == nil {
		ps.mu.Unlock()
		return
	}
	ps.ticker.Stop()
	close(ps.stop)
	ps.mu.Unlock()

	ps.wg.Wait()
	ps.logger.Info().Msg("scheduler stopped")
}

func (ps *PayrollScheduler) run() {
	defer ps.wg.Done()

	// Check once immediately so a restart right after month-end does
	// not wait a full interval.
	ps.checkAndGenerate()

	for {
		select {
		case <-ps.ticker.C:
			ps.checkAndGenerate()
		case <-ps.stop:
			return
		}
	}
}

// checkAndGenerate runs last month's batch if no payslip exists for it.
func (ps *PayrollScheduler) checkAndGenerate() {
	ctx, cancel := context.WithTimeout(context.Background(), ps.RunTimeout)
	defer cancel()
	ctx = ps.logger.WithContext(ctx)

	lastMonth := time.Now().UTC().AddDate(0, -1, 0)
	period, err := payroll.NewPayPeriod(int(lastMonth.Month()), lastMonth.Year())
	if err != nil {
		ps.logger.Error().Err(err).Msg("cannot derive previous period")
		return
	}

	done, err := ps.periodGenerated(ctx, period)
	if err != nil {
		ps.logger.Error().Err(err).Msg("failed to inspect payroll history")
		return
	}
	if done {
		return
	}

	summary, err := ps.Handler.Generator.Generate(ctx, payroll.GenerateInput{Period: period})
	if err != nil {
		ps.logger.Error().Err(err).Str("period", period.Label()).Msg("automatic payroll run failed")
		return
	}

	ps.logger.Info().
		Str("period", summary.PeriodLabel).
		Int("processed", summary.Processed).
		Int("skipped", len(summary.Skipped)).
		Msg("automatic payroll run complete")
}

func (ps *PayrollScheduler) periodGenerated(ctx context.Context, period payroll.PayPeriod) (bool, error) {
	records, err := ps.Handler.Store.ListRecords(ctx)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.Period == period {
			return true, nil
		}
	}
	return false, nil
}
