package attendance

import (
	"context"
	"time"
)

// AttendanceRepository - interface for attendance_sessions table.
// Create must enforce uniqueness of (employee, work date, session type)
// and return ErrSessionExists on conflict.
type AttendanceRepository interface {
	Create(ctx context.Context, session AttendanceSession) (AttendanceSession, error)
	ListByEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) ([]AttendanceSession, error)
	ListByEmployeeRange(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceSession, error)
}

// SummaryCache memoizes DaySummary values. Get returns ErrCacheMiss when
// nothing is stored.
type SummaryCache interface {
	Get(ctx context.Context, employeeID string, workDate time.Time) (DaySummary, error)
	Set(ctx context.Context, summary DaySummary) error
	Invalidate(ctx context.Context, employeeID string, workDate time.Time) error
}
