/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence contract of the engine
  (payroll.EmployeeDirectory, payroll.StructureRepository,
  payroll.RecordStore, leave.TxStore) using SQLite. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:         Staff directory
  salary_structures: Per-employee pay configuration, keyed by (employee, year)
  payroll_records:   Generated payslips. Creation only appends; rows are
                     keyed by an internal sequence because regenerating a
                     period legitimately writes a second row with the same
                     payslip ID. Lookups by ID resolve to the newest row.
  leave_types:       Admin-defined leave policies
  leave_balances:    Per (employee, type, academic year) entitlement,
                     unique on that triple
  leave_requests:    Leave applications and their decisions

MONEY:
  Monetary and day amounts are stored as TEXT holding the decimal string
  representation, never as floats.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead. SQLite is
  opened in WAL mode so readers don't block the single writer.

USAGE:
  store, err := sqlite.New("./data/school.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go, leave/store.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/payroll"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Staff directory
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_active ON employees(active);

	-- Salary structures, one per (employee, academic year)
	CREATE TABLE IF NOT EXISTS salary_structures (
		employee_id TEXT NOT NULL,
		academic_year INTEGER NOT NULL,
		base_salary TEXT NOT NULL,
		house_rent TEXT NOT NULL,
		dearness TEXT NOT NULL,
		transport TEXT NOT NULL,
		provident_fund TEXT NOT NULL,
		tax TEXT NOT NULL,
		frequency TEXT NOT NULL DEFAULT 'monthly',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, academic_year)
	);

	-- Payslips. seq is the storage key: generation appends, and
	-- re-running a period appends a duplicate row for the same record_id.
	CREATE TABLE IF NOT EXISTS payroll_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		period_month INTEGER NOT NULL,
		period_year INTEGER NOT NULL,
		working_days INTEGER NOT NULL,
		present_days INTEGER NOT NULL,
		loss_of_pay_days INTEGER NOT NULL,
		basic_pay TEXT NOT NULL,
		house_rent TEXT NOT NULL,
		dearness TEXT NOT NULL,
		transport TEXT NOT NULL,
		provident_fund TEXT NOT NULL,
		tax TEXT NOT NULL,
		total_allowances TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_payable TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		payment_date TEXT,
		generated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_record_id ON payroll_records(record_id);
	CREATE INDEX IF NOT EXISTS idx_payroll_employee_period
		ON payroll_records(employee_id, period_year, period_month);

	-- Leave policies
	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT TRUE,
		default_quota TEXT NOT NULL,
		applicable_roles TEXT NOT NULL DEFAULT '[]',
		requires_document BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Entitlement per (employee, type, academic year)
	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		academic_year INTEGER NOT NULL,
		total_granted TEXT NOT NULL,
		total_used TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, leave_type_id, academic_year)
	);

	-- Leave applications
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		academic_year INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		half_day BOOLEAN NOT NULL DEFAULT FALSE,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		days_debited TEXT NOT NULL DEFAULT '0',
		approver_id TEXT,
		approver_comments TEXT,
		decided_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status ON leave_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the leave queries can
// run inside or outside an explicit transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EMPLOYEE DIRECTORY (payroll.EmployeeDirectory)
// =============================================================================

// SaveEmployee upserts a directory entry.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, role, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			active = excluded.active
	`

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Role, emp.Active, createdAt.Format(time.RFC3339))
	return err
}

// ActiveEmployees returns the payroll-eligible roster.
func (s *Store) ActiveEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, active, created_at FROM employees WHERE active = TRUE ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// ListEmployees returns every employee, active or not.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, active, created_at FROM employees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// GetEmployee returns one employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp payroll.Employee
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, role, active, created_at FROM employees WHERE id = ?", id,
	).Scan(&emp.ID, &emp.Name, &emp.Role, &emp.Active, &createdAt)

	if err == sql.ErrNoRows {
		return nil, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

func scanEmployees(rows *sql.Rows) ([]payroll.Employee, error) {
	var out []payroll.Employee
	for rows.Next() {
		var emp payroll.Employee
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Role, &emp.Active, &createdAt); err != nil {
			return nil, err
		}
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, emp)
	}
	return out, rows.Err()
}

// =============================================================================
// SALARY STRUCTURES (payroll.StructureRepository)
// =============================================================================

// SaveStructure upserts a salary structure after validating it.
func (s *Store) SaveStructure(ctx context.Context, structure payroll.SalaryStructure) error {
	if err := structure.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO salary_structures
		(employee_id, academic_year, base_salary, house_rent, dearness, transport,
		 provident_fund, tax, frequency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, academic_year) DO UPDATE SET
			base_salary = excluded.base_salary,
			house_rent = excluded.house_rent,
			dearness = excluded.dearness,
			transport = excluded.transport,
			provident_fund = excluded.provident_fund,
			tax = excluded.tax,
			frequency = excluded.frequency,
			updated_at = excluded.updated_at
	`

	frequency := structure.Frequency
	if frequency == "" {
		frequency = payroll.FrequencyMonthly
	}

	_, err := s.db.ExecContext(ctx, query,
		structure.EmployeeID, structure.AcademicYear,
		structure.BaseSalary.String(),
		structure.Allowances.HouseRent.String(),
		structure.Allowances.Dearness.String(),
		structure.Allowances.Transport.String(),
		structure.Deductions.ProvidentFund.String(),
		structure.Deductions.Tax.String(),
		frequency,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetStructure returns the structure for (employee, academic year).
func (s *Store) GetStructure(ctx context.Context, id payroll.EmployeeID, year int) (*payroll.SalaryStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT employee_id, academic_year, base_salary, house_rent, dearness, transport,
		       provident_fund, tax, frequency, updated_at
		FROM salary_structures
		WHERE employee_id = ? AND academic_year = ?
	`

	var (
		structure                             payroll.SalaryStructure
		base, hra, da, ta, pf, tax, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, id, year).Scan(
		&structure.EmployeeID, &structure.AcademicYear,
		&base, &hra, &da, &ta, &pf, &tax, &structure.Frequency, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &payroll.MissingStructureError{EmployeeID: id, Year: year}
	}
	if err != nil {
		return nil, err
	}

	structure.BaseSalary = mustDecimal(base)
	structure.Allowances = payroll.AllowanceSet{
		HouseRent: mustDecimal(hra),
		Dearness:  mustDecimal(da),
		Transport: mustDecimal(ta),
	}
	structure.Deductions = payroll.DeductionSet{
		ProvidentFund: mustDecimal(pf),
		Tax:           mustDecimal(tax),
	}
	structure.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &structure, nil
}

// =============================================================================
// PAYROLL RECORDS (payroll.RecordStore)
// =============================================================================

const payrollColumns = `record_id, employee_id, period_month, period_year,
	working_days, present_days, loss_of_pay_days,
	basic_pay, house_rent, dearness, transport, provident_fund, tax,
	total_allowances, total_deductions, net_payable,
	status, payment_date, generated_at`

// AppendRecord persists a new payslip. Creation never replaces an
// existing row: duplicate runs stack.
func (s *Store) AppendRecord(ctx context.Context, rec payroll.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO payroll_records (` + payrollColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var paymentDate *string
	if rec.PaymentDate != nil {
		v := rec.PaymentDate.Format(time.RFC3339)
		paymentDate = &v
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, int(rec.Period.Month), rec.Period.Year,
		rec.Attendance.WorkingDays, rec.Attendance.PresentDays, rec.Attendance.LossOfPayDays,
		rec.BasicPay.String(),
		rec.Allowances.HouseRent.String(), rec.Allowances.Dearness.String(), rec.Allowances.Transport.String(),
		rec.Deductions.ProvidentFund.String(), rec.Deductions.Tax.String(),
		rec.TotalAllowances.String(), rec.TotalDeductions.String(), rec.NetPayable.String(),
		rec.Status, paymentDate, rec.GeneratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append payroll record: %w", err)
	}
	return nil
}

// GetRecord returns the newest row for a payslip ID.
func (s *Store) GetRecord(ctx context.Context, id payroll.RecordID) (*payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getRecord(ctx, id)
}

func (s *Store) getRecord(ctx context.Context, id payroll.RecordID) (*payroll.PayrollRecord, error) {
	query := `
		SELECT ` + payrollColumns + `
		FROM payroll_records
		WHERE record_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs, err := scanPayrollRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, payroll.ErrRecordNotFound
	}
	return &recs[0], nil
}

// FindByEmployeePeriod returns all payslips for (employee, period),
// oldest first. Duplicates from re-generation all appear.
func (s *Store) FindByEmployeePeriod(ctx context.Context, id payroll.EmployeeID, period payroll.PayPeriod) ([]payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + payrollColumns + `
		FROM payroll_records
		WHERE employee_id = ? AND period_year = ? AND period_month = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayrollRecords(rows)
}

// ListRecords returns every payslip, newest first.
func (s *Store) ListRecords(ctx context.Context) ([]payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + payrollColumns + `
		FROM payroll_records
		ORDER BY seq DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayrollRecords(rows)
}

// AdvanceStatus moves the newest row for a payslip ID one step forward.
func (s *Store) AdvanceStatus(ctx context.Context, id payroll.RecordID, next payroll.PayslipStatus, paidAt time.Time) (*payroll.PayrollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.CanAdvanceTo(next) {
		return nil, &payroll.TransitionError{RecordID: id, From: rec.Status, To: next}
	}

	var paymentDate *string
	if next == payroll.StatusPaid {
		v := paidAt.UTC().Format(time.RFC3339)
		paymentDate = &v
		utc := paidAt.UTC()
		rec.PaymentDate = &utc
	}

	query := `
		UPDATE payroll_records
		SET status = ?, payment_date = COALESCE(?, payment_date)
		WHERE seq = (SELECT MAX(seq) FROM payroll_records WHERE record_id = ?)
	`
	if _, err := s.db.ExecContext(ctx, query, next, paymentDate, id); err != nil {
		return nil, fmt.Errorf("failed to advance payslip status: %w", err)
	}

	rec.Status = next
	return rec, nil
}

func scanPayrollRecords(rows *sql.Rows) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for rows.Next() {
		var (
			rec                                              payroll.PayrollRecord
			month                                            int
			basic, hra, da, ta, pf, tax, totalA, totalD, net string
			paymentDate                                      sql.NullString
			generatedAt                                      string
		)
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &month, &rec.Period.Year,
			&rec.Attendance.WorkingDays, &rec.Attendance.PresentDays, &rec.Attendance.LossOfPayDays,
			&basic, &hra, &da, &ta, &pf, &tax,
			&totalA, &totalD, &net,
			&rec.Status, &paymentDate, &generatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}

		rec.Period.Month = time.Month(month)
		rec.BasicPay = mustDecimal(basic)
		rec.Allowances = payroll.AllowanceSet{
			HouseRent: mustDecimal(hra),
			Dearness:  mustDecimal(da),
			Transport: mustDecimal(ta),
		}
		rec.Deductions = payroll.DeductionSet{
			ProvidentFund: mustDecimal(pf),
			Tax:           mustDecimal(tax),
		}
		rec.TotalAllowances = mustDecimal(totalA)
		rec.TotalDeductions = mustDecimal(totalD)
		rec.NetPayable = mustDecimal(net)
		rec.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
		if paymentDate.Valid {
			t, _ := time.Parse(time.RFC3339, paymentDate.String)
			rec.PaymentDate = &t
		}

		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// LEAVE TYPES (leave.Store)
// =============================================================================

// SaveType upserts a leave policy.
func (s *Store) SaveType(ctx context.Context, t leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveType(ctx, s.db, t)
}

func saveType(ctx context.Context, db dbtx, t leave.LeaveType) error {
	roles, _ := json.Marshal(t.ApplicableRoles)

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO leave_types
		(id, name, paid, default_quota, applicable_roles, requires_document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			paid = excluded.paid,
			default_quota = excluded.default_quota,
			applicable_roles = excluded.applicable_roles,
			requires_document = excluded.requires_document,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		t.ID, t.Name, t.Paid, t.DefaultQuota.String(), string(roles),
		t.RequiresDocument,
		createdAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetType returns a leave policy by ID.
func (s *Store) GetType(ctx context.Context, id string) (*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getType(ctx, s.db, id)
}

func getType(ctx context.Context, db dbtx, id string) (*leave.LeaveType, error) {
	var (
		t                    leave.LeaveType
		quota, roles         string
		createdAt, updatedAt string
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, name, paid, default_quota, applicable_roles, requires_document, created_at, updated_at
		 FROM leave_types WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Paid, &quota, &roles, &t.RequiresDocument, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, leave.ErrTypeNotFound
	}
	if err != nil {
		return nil, err
	}

	t.DefaultQuota = mustDecimal(quota)
	json.Unmarshal([]byte(roles), &t.ApplicableRoles)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &t, nil
}

// ListTypes returns all leave policies.
func (s *Store) ListTypes(ctx context.Context) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTypes(ctx, s.db)
}

func listTypes(ctx context.Context, db dbtx) ([]leave.LeaveType, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, paid, default_quota, applicable_roles, requires_document, created_at, updated_at
		 FROM leave_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.LeaveType
	for rows.Next() {
		var (
			t                    leave.LeaveType
			quota, roles         string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Paid, &quota, &roles, &t.RequiresDocument, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.DefaultQuota = mustDecimal(quota)
		json.Unmarshal([]byte(roles), &t.ApplicableRoles)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteType removes a leave policy. Balances and requests referencing
// it are left in place.
func (s *Store) DeleteType(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM leave_types WHERE id = ?", id)
	return err
}

// =============================================================================
// LEAVE BALANCES (leave.Store)
// =============================================================================

// GetBalance returns the balance row for (employee, type, year).
func (s *Store) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBalance(ctx, s.db, employeeID, leaveTypeID, year)
}

func getBalance(ctx context.Context, db dbtx, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	var (
		b                        leave.LeaveBalance
		granted, used, updatedAt string
	)
	err := db.QueryRowContext(ctx,
		`SELECT employee_id, leave_type_id, academic_year, total_granted, total_used, updated_at
		 FROM leave_balances
		 WHERE employee_id = ? AND leave_type_id = ? AND academic_year = ?`,
		employeeID, leaveTypeID, year,
	).Scan(&b.EmployeeID, &b.LeaveTypeID, &b.AcademicYear, &granted, &used, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, leave.ErrBalanceNotFound
	}
	if err != nil {
		return nil, err
	}

	b.TotalGranted = mustDecimal(granted)
	b.TotalUsed = mustDecimal(used)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &b, nil
}

// SaveBalance upserts a balance row.
func (s *Store) SaveBalance(ctx context.Context, b leave.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBalance(ctx, s.db, b)
}

func saveBalance(ctx context.Context, db dbtx, b leave.LeaveBalance) error {
	query := `
		INSERT INTO leave_balances
		(employee_id, leave_type_id, academic_year, total_granted, total_used, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type_id, academic_year) DO UPDATE SET
			total_granted = excluded.total_granted,
			total_used = excluded.total_used,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		b.EmployeeID, b.LeaveTypeID, b.AcademicYear,
		b.TotalGranted.String(), b.TotalUsed.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListBalances returns all balance rows for an employee in a year.
func (s *Store) ListBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBalances(ctx, s.db, employeeID, year)
}

func listBalances(ctx context.Context, db dbtx, employeeID string, year int) ([]leave.LeaveBalance, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT employee_id, leave_type_id, academic_year, total_granted, total_used, updated_at
		 FROM leave_balances
		 WHERE employee_id = ? AND academic_year = ?
		 ORDER BY leave_type_id`,
		employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.LeaveBalance
	for rows.Next() {
		var (
			b                        leave.LeaveBalance
			granted, used, updatedAt string
		)
		if err := rows.Scan(&b.EmployeeID, &b.LeaveTypeID, &b.AcademicYear, &granted, &used, &updatedAt); err != nil {
			return nil, err
		}
		b.TotalGranted = mustDecimal(granted)
		b.TotalUsed = mustDecimal(used)
		b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, b)
	}
	return out, rows.Err()
}

// =============================================================================
// LEAVE REQUESTS (leave.Store)
// =============================================================================

// SaveRequest upserts a leave request.
func (s *Store) SaveRequest(ctx context.Context, r leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRequest(ctx, s.db, r)
}

func saveRequest(ctx context.Context, db dbtx, r leave.LeaveRequest) error {
	var decidedAt *string
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		decidedAt = &v
	}

	query := `
		INSERT INTO leave_requests
		(id, employee_id, leave_type_id, academic_year, start_date, end_date, half_day,
		 reason, status, days_debited, approver_id, approver_comments, decided_at,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			days_debited = excluded.days_debited,
			approver_id = excluded.approver_id,
			approver_comments = excluded.approver_comments,
			decided_at = excluded.decided_at,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.LeaveTypeID, r.AcademicYear,
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.HalfDay,
		r.Reason, r.Status, r.DaysDebited.String(),
		r.ApproverID, r.ApproverComments, decidedAt,
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

const leaveRequestColumns = `id, employee_id, leave_type_id, academic_year,
	start_date, end_date, half_day, reason, status, days_debited,
	approver_id, approver_comments, decided_at, created_at, updated_at`

// GetRequest returns a leave request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, db dbtx, id string) (*leave.LeaveRequest, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+leaveRequestColumns+" FROM leave_requests WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs, err := scanLeaveRequests(rows)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, leave.ErrRequestNotFound
	}
	return &reqs[0], nil
}

// ListRequestsByEmployee returns an employee's requests, newest first.
func (s *Store) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequestsByEmployee(ctx, s.db, employeeID)
}

func listRequestsByEmployee(ctx context.Context, db dbtx, employeeID string) ([]leave.LeaveRequest, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+leaveRequestColumns+" FROM leave_requests WHERE employee_id = ? ORDER BY created_at DESC",
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeaveRequests(rows)
}

// ListPendingRequests returns all PENDING requests, oldest first.
func (s *Store) ListPendingRequests(ctx context.Context) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPendingRequests(ctx, s.db)
}

func listPendingRequests(ctx context.Context, db dbtx) ([]leave.LeaveRequest, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+leaveRequestColumns+" FROM leave_requests WHERE status = ? ORDER BY created_at ASC",
		leave.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeaveRequests(rows)
}

func scanLeaveRequests(rows *sql.Rows) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for rows.Next() {
		var (
			r                            leave.LeaveRequest
			startDate, endDate, debited  string
			reason                       sql.NullString
			approverID, approverComments sql.NullString
			decidedAt                    sql.NullString
			createdAt, updatedAt         string
		)
		if err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.LeaveTypeID, &r.AcademicYear,
			&startDate, &endDate, &r.HalfDay, &reason, &r.Status, &debited,
			&approverID, &approverComments, &decidedAt, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}

		r.StartDate, _ = time.Parse("2006-01-02", startDate)
		r.EndDate, _ = time.Parse("2006-01-02", endDate)
		r.Reason = reason.String
		r.DaysDebited = mustDecimal(debited)
		r.ApproverID = approverID.String
		r.ApproverComments = approverComments.String
		if decidedAt.Valid {
			t, _ := time.Parse(time.RFC3339, decidedAt.String)
			r.DecidedAt = &t
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// TRANSACTIONS (leave.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs the leave queries against an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveType(ctx context.Context, t leave.LeaveType) error {
	return saveType(ctx, ts.tx, t)
}

func (ts *txStore) GetType(ctx context.Context, id string) (*leave.LeaveType, error) {
	return getType(ctx, ts.tx, id)
}

func (ts *txStore) ListTypes(ctx context.Context) ([]leave.LeaveType, error) {
	return listTypes(ctx, ts.tx)
}

func (ts *txStore) DeleteType(ctx context.Context, id string) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM leave_types WHERE id = ?", id)
	return err
}

func (ts *txStore) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return getBalance(ctx, ts.tx, employeeID, leaveTypeID, year)
}

func (ts *txStore) SaveBalance(ctx context.Context, b leave.LeaveBalance) error {
	return saveBalance(ctx, ts.tx, b)
}

func (ts *txStore) ListBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	return listBalances(ctx, ts.tx, employeeID, year)
}

func (ts *txStore) SaveRequest(ctx context.Context, r leave.LeaveRequest) error {
	return saveRequest(ctx, ts.tx, r)
}

func (ts *txStore) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return listRequestsByEmployee(ctx, ts.tx, employeeID)
}

func (ts *txStore) ListPendingRequests(ctx context.Context) ([]leave.LeaveRequest, error) {
	return listPendingRequests(ctx, ts.tx)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"payroll_records", "salary_structures", "employees",
		"leave_requests", "leave_balances", "leave_types",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
