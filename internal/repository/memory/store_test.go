package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newSession(employeeID string, t attendance.SessionType, at time.Time) attendance.AttendanceSession {
	return attendance.AttendanceSession{
		EmployeeID:       employeeID,
		WorkDate:         testDate,
		SessionType:      t,
		RecordedAt:       at,
		VerificationHash: "hash",
	}
}

// ===== TRANSACTION TESTS =====

func TestStore_WithinTransaction_RollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Attendance()

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Create(ctx, newSession("emp-1", attendance.SessionMorningIn, testDate.Add(time.Hour)))
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sessions, err := repo.ListByEmployeeDate(ctx, "emp-1", testDate)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStore_WithinTransaction_CommitsAndNests(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Attendance()

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, newSession("emp-1", attendance.SessionMorningIn, testDate.Add(time.Hour))); err != nil {
			return err
		}
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := repo.Create(ctx, newSession("emp-1", attendance.SessionMorningOut, testDate.Add(5*time.Hour)))
			return err
		})
	})
	require.NoError(t, err)

	sessions, err := repo.ListByEmployeeDate(ctx, "emp-1", testDate)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, attendance.SessionMorningIn, sessions[0].SessionType)
	assert.Equal(t, attendance.SessionMorningOut, sessions[1].SessionType)
}

func TestStore_WithinTransaction_RollsBackOnPanic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, _ = s.Attendance().Create(ctx, newSession("emp-1", attendance.SessionMorningIn, testDate))
			panic("unexpected")
		})
	})

	sessions, err := s.Attendance().ListByEmployeeDate(ctx, "emp-1", testDate)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

// ===== ATTENDANCE TESTS =====

func TestAttendance_UniquePerEmployeeDateType(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Attendance()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, newSession("emp-1", attendance.SessionAfternoonIn, testDate.Add(6*time.Hour)))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, attendance.ErrSessionExists)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestAttendance_ListByEmployeeRange(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Attendance()

	for d := 0; d < 3; d++ {
		session := newSession("emp-1", attendance.SessionMorningIn, testDate.AddDate(0, 0, d).Add(time.Hour))
		session.WorkDate = testDate.AddDate(0, 0, d)
		_, err := repo.Create(ctx, session)
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, newSession("emp-2", attendance.SessionMorningIn, testDate.Add(time.Hour)))
	require.NoError(t, err)

	sessions, err := repo.ListByEmployeeRange(ctx, "emp-1", testDate, testDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].WorkDate.Before(sessions[1].WorkDate))
}

// ===== EMPLOYEE TESTS =====

func TestEmployees_ListActiveForPayroll(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	s.PutEmployee(employee.Employee{ID: "b", DepartmentID: "d1", EmploymentStatus: employee.EmploymentStatusActive})
	s.PutEmployee(employee.Employee{ID: "a", DepartmentID: "d2", EmploymentStatus: employee.EmploymentStatusActive})
	s.PutEmployee(employee.Employee{ID: "c", DepartmentID: "d1", EmploymentStatus: employee.EmploymentStatusResigned})

	all, err := s.Employees().ListActiveForPayroll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	dept := "d1"
	filtered, err := s.Employees().ListActiveForPayroll(ctx, &dept)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].ID)

	_, err = s.Employees().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

// ===== PAYROLL TESTS =====

func TestPayroll_TransitionStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Payroll()

	period, err := repo.CreatePeriod(ctx, payroll.Period{Name: "March", StartDate: testDate, EndDate: testDate})
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, period.Status)

	now := time.Now()
	_, err = repo.TransitionStatus(ctx, period.ID, payroll.GenerateFrom(), payroll.PeriodStatusProcessing, now)
	require.NoError(t, err)

	_, err = repo.TransitionStatus(ctx, period.ID, payroll.GenerateFrom(), payroll.PeriodStatusProcessing, now)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)

	_, err = repo.TransitionStatus(ctx, "missing", payroll.GenerateFrom(), payroll.PeriodStatusProcessing, now)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)

	done, err := repo.TransitionStatus(ctx, period.ID, []payroll.PeriodStatus{payroll.PeriodStatusProcessing}, payroll.PeriodStatusSentForReview, now)
	require.NoError(t, err)
	require.NotNil(t, done.GeneratedAt)

	// completed is terminal even when the caller lists it as a source
	_, err = repo.TransitionStatus(ctx, period.ID, []payroll.PeriodStatus{payroll.PeriodStatusSentForReview}, payroll.PeriodStatusCompleted, now)
	require.NoError(t, err)
	_, err = repo.TransitionStatus(ctx, period.ID, []payroll.PeriodStatus{payroll.PeriodStatusCompleted}, payroll.PeriodStatusDraft, now)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriodState)
}

func TestPayroll_RecordsStatusAndApprovals(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Payroll()

	records, err := repo.CreateRecords(ctx, []payroll.Record{
		{PeriodID: "p1", EmployeeID: "e1", DepartmentID: "d1", Status: payroll.RecordStatusDraft},
		{PeriodID: "p1", EmployeeID: "e2", DepartmentID: "d2", Status: payroll.RecordStatusDraft},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = repo.CreateRecords(ctx, []payroll.Record{{PeriodID: "p1", EmployeeID: "e1", DepartmentID: "d1"}})
	assert.ErrorIs(t, err, payroll.ErrRecordExists)

	departments, err := repo.ListRecordDepartments(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, departments)

	d1 := "d1"
	n, err := repo.UpdateRecordStatus(ctx, payroll.RecordStatusFilter{PeriodID: "p1", DepartmentID: &d1},
		payroll.RecordStatusDraft, payroll.RecordStatusProcessed, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.UpdateRecordStatus(ctx, payroll.RecordStatusFilter{PeriodID: "p1", RecordIDs: []string{records[1].ID}},
		payroll.RecordStatusProcessed, payroll.RecordStatusPaid, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "draft record must not be paid")

	approval := payroll.DepartmentApproval{PeriodID: "p1", DepartmentID: "d1", ApproverID: "a", ApprovedAt: time.Now()}
	_, err = repo.CreateApproval(ctx, approval)
	require.NoError(t, err)
	_, err = repo.CreateApproval(ctx, approval)
	assert.ErrorIs(t, err, payroll.ErrApprovalExists)

	require.NoError(t, repo.DeleteApprovals(ctx, "p1", nil))
	_, err = repo.CreateApproval(ctx, approval)
	assert.NoError(t, err)
}

// ===== OUTBOX TESTS =====

func TestOutbox_PendingAndRetry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Outbox()
	now := time.Now()

	first, err := outbox.NewEvent(outbox.AggregatePayroll, "p1", outbox.EventRecordsGenerated, outbox.RecordsGenerated{PeriodID: "p1"}, now)
	require.NoError(t, err)
	second, err := outbox.NewEvent(outbox.AggregatePayroll, "p1", outbox.EventPeriodCompleted, outbox.PeriodCompleted{PeriodID: "p1"}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	pending, err := repo.ListPending(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)

	require.NoError(t, repo.MarkSent(ctx, first.ID, now))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "broker down", now.Add(time.Minute)))

	pending, err = repo.ListPending(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = repo.ListPending(ctx, now.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, outbox.StatusFailed, pending[0].Status)
}
