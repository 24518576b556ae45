// Package memory provides in-memory store implementations for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campushq/school-engine/leave"
	"github.com/campushq/school-engine/payroll"
)

// =============================================================================
// MEMORY STORE - Implements the payroll and leave repository contracts
// =============================================================================

type structKey struct {
	EmployeeID payroll.EmployeeID
	Year       int
}

type balanceKey struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
}

type Store struct {
	mu sync.RWMutex

	employees  map[payroll.EmployeeID]payroll.Employee
	structures map[structKey]payroll.SalaryStructure

	// records is append-only; regenerating a period appends a second row
	// with the same record ID. Lookups by ID return the newest row.
	records []payroll.PayrollRecord

	leaveTypes map[string]leave.LeaveType
	balances   map[balanceKey]leave.LeaveBalance
	requests   map[string]leave.LeaveRequest
}

func New() *Store {
	return &Store{
		employees:  make(map[payroll.EmployeeID]payroll.Employee),
		structures: make(map[structKey]payroll.SalaryStructure),
		leaveTypes: make(map[string]leave.LeaveType),
		balances:   make(map[balanceKey]leave.LeaveBalance),
		requests:   make(map[string]leave.LeaveRequest),
	}
}

// =============================================================================
// EMPLOYEE DIRECTORY (payroll.EmployeeDirectory)
// =============================================================================

func (m *Store) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Store) ActiveEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.Employee
	for _, emp := range m.employees {
		if emp.Active {
			out = append(out, emp)
		}
	}
	sortEmployees(out)
	return out, nil
}

func (m *Store) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]payroll.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, emp)
	}
	sortEmployees(out)
	return out, nil
}

func (m *Store) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, payroll.ErrEmployeeNotFound
	}
	return &emp, nil
}

func sortEmployees(emps []payroll.Employee) {
	sort.Slice(emps, func(i, j int) bool { return emps[i].ID < emps[j].ID })
}

// =============================================================================
// SALARY STRUCTURES (payroll.StructureRepository)
// =============================================================================

func (m *Store) GetStructure(_ context.Context, id payroll.EmployeeID, year int) (*payroll.SalaryStructure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.structures[structKey{EmployeeID: id, Year: year}]
	if !ok {
		return nil, &payroll.MissingStructureError{EmployeeID: id, Year: year}
	}
	return &s, nil
}

func (m *Store) SaveStructure(_ context.Context, s payroll.SalaryStructure) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.structures[structKey{EmployeeID: s.EmployeeID, Year: s.AcademicYear}] = s
	return nil
}

// =============================================================================
// PAYROLL RECORDS (payroll.RecordStore)
// =============================================================================

func (m *Store) AppendRecord(_ context.Context, rec payroll.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *Store) GetRecord(_ context.Context, id payroll.RecordID) (*payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.latestIndex(id); i >= 0 {
		rec := m.records[i]
		return &rec, nil
	}
	return nil, payroll.ErrRecordNotFound
}

func (m *Store) FindByEmployeePeriod(_ context.Context, id payroll.EmployeeID, period payroll.PayPeriod) ([]payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.PayrollRecord
	for _, rec := range m.records {
		if rec.EmployeeID == id && rec.Period == period {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Store) ListRecords(_ context.Context) ([]payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]payroll.PayrollRecord, len(m.records))
	for i, rec := range m.records {
		out[len(m.records)-1-i] = rec
	}
	return out, nil
}

func (m *Store) AdvanceStatus(_ context.Context, id payroll.RecordID, next payroll.PayslipStatus, paidAt time.Time) (*payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.latestIndex(id)
	if i < 0 {
		return nil, payroll.ErrRecordNotFound
	}

	rec := m.records[i]
	if !rec.Status.CanAdvanceTo(next) {
		return nil, &payroll.TransitionError{RecordID: id, From: rec.Status, To: next}
	}
	rec.Status = next
	if next == payroll.StatusPaid {
		rec.PaymentDate = &paidAt
	}
	m.records[i] = rec
	return &rec, nil
}

// latestIndex returns the newest row for a record ID, or -1.
func (m *Store) latestIndex(id payroll.RecordID) int {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// LEAVE STORE (leave.TxStore)
// =============================================================================

func (m *Store) SaveType(_ context.Context, t leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveTypes[t.ID] = t
	return nil
}

func (m *Store) GetType(_ context.Context, id string) (*leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTypeLocked(id)
}

func (m *Store) getTypeLocked(id string) (*leave.LeaveType, error) {
	t, ok := m.leaveTypes[id]
	if !ok {
		return nil, leave.ErrTypeNotFound
	}
	return &t, nil
}

func (m *Store) ListTypes(_ context.Context) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.LeaveType
	for _, t := range m.leaveTypes {
		out = append(out, t)
	}
	return out, nil
}

func (m *Store) DeleteType(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.leaveTypes, id)
	return nil
}

func (m *Store) GetBalance(_ context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getBalanceLocked(employeeID, leaveTypeID, year)
}

func (m *Store) getBalanceLocked(employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	b, ok := m.balances[balanceKey{EmployeeID: employeeID, LeaveTypeID: leaveTypeID, Year: year}]
	if !ok {
		return nil, leave.ErrBalanceNotFound
	}
	return &b, nil
}

func (m *Store) SaveBalance(_ context.Context, b leave.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveBalanceLocked(b)
	return nil
}

func (m *Store) saveBalanceLocked(b leave.LeaveBalance) {
	m.balances[balanceKey{EmployeeID: b.EmployeeID, LeaveTypeID: b.LeaveTypeID, Year: b.AcademicYear}] = b
}

func (m *Store) ListBalances(_ context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.LeaveBalance
	for k, b := range m.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Store) SaveRequest(_ context.Context, r leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *Store) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRequestLocked(id)
}

func (m *Store) getRequestLocked(id string) (*leave.LeaveRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &r, nil
}

func (m *Store) ListRequestsByEmployee(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Store) ListPendingRequests(_ context.Context) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if r.Status == leave.StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// =============================================================================
// TRANSACTIONS - Snapshot and rollback
// =============================================================================

// WithTx executes fn against a transactional view. For the memory store
// this is simulated with a snapshot restored on error.
func (m *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	view := &txView{parent: m}

	if err := fn(view); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	balances map[balanceKey]leave.LeaveBalance
	requests map[string]leave.LeaveRequest
}

func (m *Store) snapshot() memorySnapshot {
	balances := make(map[balanceKey]leave.LeaveBalance, len(m.balances))
	for k, v := range m.balances {
		balances[k] = v
	}
	requests := make(map[string]leave.LeaveRequest, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	return memorySnapshot{balances: balances, requests: requests}
}

func (m *Store) restore(s memorySnapshot) {
	m.balances = s.balances
	m.requests = s.requests
}

// txView runs against the already-locked parent.
type txView struct {
	parent *Store
}

func (tv *txView) SaveType(_ context.Context, t leave.LeaveType) error {
	tv.parent.leaveTypes[t.ID] = t
	return nil
}

func (tv *txView) GetType(_ context.Context, id string) (*leave.LeaveType, error) {
	return tv.parent.getTypeLocked(id)
}

func (tv *txView) ListTypes(_ context.Context) ([]leave.LeaveType, error) {
	var out []leave.LeaveType
	for _, t := range tv.parent.leaveTypes {
		out = append(out, t)
	}
	return out, nil
}

func (tv *txView) DeleteType(_ context.Context, id string) error {
	delete(tv.parent.leaveTypes, id)
	return nil
}

func (tv *txView) GetBalance(_ context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return tv.parent.getBalanceLocked(employeeID, leaveTypeID, year)
}

func (tv *txView) SaveBalance(_ context.Context, b leave.LeaveBalance) error {
	tv.parent.saveBalanceLocked(b)
	return nil
}

func (tv *txView) ListBalances(_ context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	var out []leave.LeaveBalance
	for k, b := range tv.parent.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (tv *txView) SaveRequest(_ context.Context, r leave.LeaveRequest) error {
	tv.parent.requests[r.ID] = r
	return nil
}

func (tv *txView) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	return tv.parent.getRequestLocked(id)
}

func (tv *txView) ListRequestsByEmployee(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range tv.parent.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (tv *txView) ListPendingRequests(_ context.Context) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range tv.parent.requests {
		if r.Status == leave.StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// Reset clears all data.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees = make(map[payroll.EmployeeID]payroll.Employee)
	m.structures = make(map[structKey]payroll.SalaryStructure)
	m.records = nil
	m.leaveTypes = make(map[string]leave.LeaveType)
	m.balances = make(map[balanceKey]leave.LeaveBalance)
	m.requests = make(map[string]leave.LeaveRequest)
	return nil
}
