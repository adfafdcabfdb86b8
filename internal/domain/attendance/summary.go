package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// HoursRules are the parameters of the hour derivation.
type HoursRules struct {
	// ScheduledStart is the nominal start of the day measured from local midnight.
	ScheduledStart time.Duration
	// StandardDaily caps regular time per day.
	StandardDaily time.Duration
	Location      *time.Location
}

// DaySummary is derived from the sessions of one (employee, date). It is never
// a source of truth: it is recomputed or served from a cache that every
// recorded session invalidates.
type DaySummary struct {
	EmployeeID      string              `json:"employee_id"`
	WorkDate        time.Time           `json:"work_date"`
	Sessions        []AttendanceSession `json:"sessions"`
	RegularMinutes  int                 `json:"regular_minutes"`
	LateMinutes     int                 `json:"late_minutes"`
	OvertimeMinutes int                 `json:"overtime_minutes"`
	IsComplete      bool                `json:"is_complete"`
}

func (s DaySummary) RegularHours() decimal.Decimal  { return MinutesToHours(s.RegularMinutes) }
func (s DaySummary) LateHours() decimal.Decimal     { return MinutesToHours(s.LateMinutes) }
func (s DaySummary) OvertimeHours() decimal.Decimal { return MinutesToHours(s.OvertimeMinutes) }

// MinutesToHours converts whole minutes to hours with four decimal places.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).DivRound(decimal.NewFromInt(60), 4)
}

// Summarize reduces one day's sessions to hour totals.
//
// Regular time is morning_in→morning_out plus afternoon_in→afternoon_out,
// capped at the standard daily hours, and only counted when both pairs exist.
// Lateness is measured from the scheduled start and is computed even for an
// incomplete day. Overtime runs from afternoon_out to the overtime session.
// Durations are truncated to whole minutes.
func Summarize(employeeID string, workDate time.Time, sessions []AttendanceSession, rules HoursRules) DaySummary {
	ordered := make([]AttendanceSession, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SessionType.Index() < ordered[j].SessionType.Index()
	})

	byType := make(map[SessionType]AttendanceSession, len(ordered))
	for _, s := range ordered {
		byType[s.SessionType] = s
	}

	summary := DaySummary{
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Sessions:   ordered,
		IsComplete: true,
	}
	for _, t := range MandatorySessions {
		if _, ok := byType[t]; !ok {
			summary.IsComplete = false
			break
		}
	}

	if in, ok := byType[SessionMorningIn]; ok {
		loc := rules.Location
		if loc == nil {
			loc = time.UTC
		}
		scheduled := time.Date(workDate.Year(), workDate.Month(), workDate.Day(), 0, 0, 0, 0, loc).Add(rules.ScheduledStart)
		if in.RecordedAt.After(scheduled) {
			summary.LateMinutes = wholeMinutes(in.RecordedAt.Sub(scheduled))
		}
	}

	if summary.IsComplete {
		worked := span(byType[SessionMorningIn], byType[SessionMorningOut]) +
			span(byType[SessionAfternoonIn], byType[SessionAfternoonOut])
		if rules.StandardDaily > 0 && worked > rules.StandardDaily {
			worked = rules.StandardDaily
		}
		summary.RegularMinutes = wholeMinutes(worked)
	}

	if out, ok := byType[SessionAfternoonOut]; ok {
		if ot, ok := byType[SessionOvertime]; ok {
			summary.OvertimeMinutes = wholeMinutes(span(out, ot))
		}
	}

	return summary
}

func span(from, to AttendanceSession) time.Duration {
	d := to.RecordedAt.Sub(from.RecordedAt)
	if d < 0 {
		return 0
	}
	return d
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// HourTotals aggregates day summaries over a range.
type HourTotals struct {
	RegularMinutes  int
	LateMinutes     int
	OvertimeMinutes int
	DaysPresent     int
	DaysComplete    int
}

func Total(days []DaySummary) HourTotals {
	var t HourTotals
	for _, d := range days {
		if len(d.Sessions) == 0 {
			continue
		}
		t.DaysPresent++
		if d.IsComplete {
			t.DaysComplete++
		}
		t.RegularMinutes += d.RegularMinutes
		t.LateMinutes += d.LateMinutes
		t.OvertimeMinutes += d.OvertimeMinutes
	}
	return t
}

func (t HourTotals) RegularHours() decimal.Decimal  { return MinutesToHours(t.RegularMinutes) }
func (t HourTotals) LateHours() decimal.Decimal     { return MinutesToHours(t.LateMinutes) }
func (t HourTotals) OvertimeHours() decimal.Decimal { return MinutesToHours(t.OvertimeMinutes) }
