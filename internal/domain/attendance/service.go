package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// Kiosk
	NextSession(ctx context.Context, employeeID string) (NextSession, error)
	CanPerform(ctx context.Context, employeeID string, sessionType SessionType, now time.Time) (Decision, error)
	RecordSession(ctx context.Context, req RecordSessionRequest) (AttendanceSession, error)
	// Hours
	TodaySummary(ctx context.Context, employeeID string) (DaySummary, error)
	Summarize(ctx context.Context, employeeID string, workDate time.Time) (DaySummary, error)
	SummarizeRange(ctx context.Context, employeeID string, start, end time.Time) ([]DaySummary, error)
}
