package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
)

// TodaySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) TodaySummary(ctx context.Context, employeeID string) (attendance.DaySummary, error) {
	return s.Summarize(ctx, employeeID, s.policy.WorkDate(s.clock.Now()))
}

// Summarize implements attendance.AttendanceService. Summaries are served
// from the cache when present; concurrent misses for the same day share one load.
func (s *AttendanceServiceImpl) Summarize(ctx context.Context, employeeID string, workDate time.Time) (attendance.DaySummary, error) {
	workDate = normalizeDate(workDate)

	cached, err := s.cache.Get(ctx, employeeID, workDate)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, attendance.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "day summary cache read failed", "employee_id", employeeID, "error", err)
	}

	key := employeeID + "/" + workDate.Format("2006-01-02")
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		version := s.writes.Load()
		sessions, err := s.AttendanceRepository.ListByEmployeeDate(ctx, employeeID, workDate)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		summary := attendance.Summarize(employeeID, workDate, sessions, s.rules)
		s.fillCache(ctx, summary, version)
		return summary, nil
	})
	if err != nil {
		return attendance.DaySummary{}, err
	}
	return v.(attendance.DaySummary), nil
}

// fillCache stores a summary read at the given write version. A session
// recorded after the read either skips the write or removes it again.
func (s *AttendanceServiceImpl) fillCache(ctx context.Context, summary attendance.DaySummary, version uint64) {
	if s.writes.Load() != version {
		return
	}
	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "day summary cache write failed", "employee_id", summary.EmployeeID, "error", err)
		return
	}
	if s.writes.Load() != version {
		if err := s.cache.Invalidate(ctx, summary.EmployeeID, summary.WorkDate); err != nil {
			s.logger.WarnContext(ctx, "day summary cache write failed", "employee_id", summary.EmployeeID, "error", err)
		}
	}
}

// SummarizeRange implements attendance.AttendanceService. It reads sessions
// straight from storage and returns one summary per day that has sessions,
// in date order.
func (s *AttendanceServiceImpl) SummarizeRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.DaySummary, error) {
	start, end = normalizeDate(start), normalizeDate(end)
	if end.Before(start) {
		return nil, attendance.ErrInvalidRange
	}

	sessions, err := s.AttendanceRepository.ListByEmployeeRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	byDate := make(map[time.Time][]attendance.AttendanceSession)
	for _, session := range sessions {
		d := normalizeDate(session.WorkDate)
		byDate[d] = append(byDate[d], session)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	summaries := make([]attendance.DaySummary, 0, len(dates))
	for _, d := range dates {
		summaries = append(summaries, attendance.Summarize(employeeID, d, byDate[d], s.rules))
	}
	return summaries, nil
}

// normalizeDate keeps the calendar date of t as a UTC midnight value.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
