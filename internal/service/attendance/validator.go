package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
)

// CanPerform implements attendance.AttendanceService. It only reads.
func (s *AttendanceServiceImpl) CanPerform(ctx context.Context, employeeID string, sessionType attendance.SessionType, now time.Time) (attendance.Decision, error) {
	if !sessionType.IsValid() {
		return attendance.Decision{}, attendance.ErrInvalidSessionType
	}

	active, today, err := s.loadDay(ctx, employeeID, s.policy.WorkDate(now))
	if err != nil {
		return attendance.Decision{}, err
	}
	return attendance.Check(active, today, sessionType, now, s.policy), nil
}

// NextSession implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) NextSession(ctx context.Context, employeeID string) (attendance.NextSession, error) {
	now := s.clock.Now()
	workDate := s.policy.WorkDate(now)

	active, today, err := s.loadDay(ctx, employeeID, workDate)
	if err != nil {
		return attendance.NextSession{}, err
	}

	expectation := s.policy.NextExpected(now, attendance.NewSessionSet(today))
	next := attendance.NextSession{
		EmployeeID:  employeeID,
		WorkDate:    workDate,
		Expectation: expectation,
	}

	// the window shown is the one the employee can act on next
	target := expectation.Type
	if expectation.Status == attendance.ExpectationMissed && expectation.Next != nil {
		target = expectation.Next
	}
	if target == nil {
		if !active {
			d := attendance.Check(false, today, attendance.SessionMorningIn, now, s.policy)
			next.Decision = &d
		}
		return next, nil
	}

	decision := attendance.Check(active, today, *target, now, s.policy)
	next.Decision = &decision

	start, end := s.policy.Windows[*target].On(workDate, s.policy.Location)
	next.WindowStart = &start
	next.WindowEnd = &end
	return next, nil
}

// loadDay returns whether the employee may record at all and the sessions
// already recorded on workDate. An unknown employee is treated as not active.
func (s *AttendanceServiceImpl) loadDay(ctx context.Context, employeeID string, workDate time.Time) (bool, []attendance.AttendanceSession, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("failed to get employee: %w", err)
	}

	today, err := s.AttendanceRepository.ListByEmployeeDate(ctx, employeeID, workDate)
	if err != nil {
		return false, nil, fmt.Errorf("failed to list today's sessions: %w", err)
	}
	return emp.IsActive(), today, nil
}
