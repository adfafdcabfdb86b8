// Package memory provides in-process implementations of the repositories,
// used for local development and service tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
)

type txKey struct{}

type sessionKey struct {
	employeeID  string
	workDate    string
	sessionType attendance.SessionType
}

type approvalKey struct {
	periodID     string
	departmentID string
}

// Store keeps all tables in maps guarded by one lock. Transactions are
// serialized on txMu and rolled back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	employees     map[string]employee.Employee
	sessions      map[string]attendance.AttendanceSession
	sessionIndex  map[sessionKey]string
	periods       map[string]payroll.Period
	records       map[string]payroll.Record
	approvals     map[string]payroll.DepartmentApproval
	approvalIndex map[approvalKey]string
	adjustments   map[string]payroll.AdjustmentType
	events        map[string]outbox.Event
	eventOrder    []string
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[string]employee.Employee),
		sessions:      make(map[string]attendance.AttendanceSession),
		sessionIndex:  make(map[sessionKey]string),
		periods:       make(map[string]payroll.Period),
		records:       make(map[string]payroll.Record),
		approvals:     make(map[string]payroll.DepartmentApproval),
		approvalIndex: make(map[approvalKey]string),
		adjustments:   make(map[string]payroll.AdjustmentType),
		events:        make(map[string]outbox.Event),
	}
}

var _ database.Transactor = (*Store)(nil)

// WithinTransaction runs fn with exclusive write access. Any error returned by
// fn (or a panic) restores the state as it was before fn started.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lockWrite takes the locks a mutation needs. Outside a transaction the
// write also waits for running transactions so a rollback cannot erase it.
func (s *Store) lockWrite(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type snapshot struct {
	employees     map[string]employee.Employee
	sessions      map[string]attendance.AttendanceSession
	sessionIndex  map[sessionKey]string
	periods       map[string]payroll.Period
	records       map[string]payroll.Record
	approvals     map[string]payroll.DepartmentApproval
	approvalIndex map[approvalKey]string
	adjustments   map[string]payroll.AdjustmentType
	events        map[string]outbox.Event
	eventOrder    []string
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		employees:     maps.Clone(s.employees),
		sessions:      maps.Clone(s.sessions),
		sessionIndex:  maps.Clone(s.sessionIndex),
		periods:       maps.Clone(s.periods),
		records:       maps.Clone(s.records),
		approvals:     maps.Clone(s.approvals),
		approvalIndex: maps.Clone(s.approvalIndex),
		adjustments:   maps.Clone(s.adjustments),
		events:        maps.Clone(s.events),
		eventOrder:    slices.Clone(s.eventOrder),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.sessions = snap.sessions
	s.sessionIndex = snap.sessionIndex
	s.periods = snap.periods
	s.records = snap.records
	s.approvals = snap.approvals
	s.approvalIndex = snap.approvalIndex
	s.adjustments = snap.adjustments
	s.events = snap.events
	s.eventOrder = snap.eventOrder
}

// Attendance returns the attendance repository view of the store.
func (s *Store) Attendance() attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

// Employees returns the employee repository view of the store.
func (s *Store) Employees() employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

// Payroll returns the payroll repository view of the store.
func (s *Store) Payroll() payroll.PayrollRepository {
	return &payrollRepository{s: s}
}

// Outbox returns the outbox repository view of the store.
func (s *Store) Outbox() outbox.Repository {
	return &outboxRepository{s: s}
}
