package attendance

import (
	"fmt"
	"time"
)

// WindowPolicy maps wall-clock time to the daily session sequence. It is the
// single source of truth for session windows; clients never compute their own.
type WindowPolicy struct {
	Windows  map[SessionType]Window
	Grace    time.Duration
	Location *time.Location
}

func NewWindowPolicy(windows map[SessionType]Window, grace time.Duration, loc *time.Location) (WindowPolicy, error) {
	for _, t := range SessionOrder {
		if _, ok := windows[t]; !ok {
			return WindowPolicy{}, fmt.Errorf("missing window for session type %s", t)
		}
	}
	if grace < 0 {
		return WindowPolicy{}, fmt.Errorf("grace period must not be negative")
	}
	if loc == nil {
		loc = time.UTC
	}
	return WindowPolicy{Windows: windows, Grace: grace, Location: loc}, nil
}

// DefaultWindows are the stock session windows.
func DefaultWindows() map[SessionType]Window {
	return map[SessionType]Window{
		SessionMorningIn:    {Start: 7 * time.Hour, End: 12 * time.Hour},
		SessionMorningOut:   {Start: 12 * time.Hour, End: 13 * time.Hour},
		SessionAfternoonIn:  {Start: 13 * time.Hour, End: 18 * time.Hour},
		SessionAfternoonOut: {Start: 18 * time.Hour, End: 24 * time.Hour},
		SessionOvertime:     {Start: 18 * time.Hour, End: 24 * time.Hour},
	}
}

// WorkDate returns the local calendar date of now as a UTC midnight value.
func (p WindowPolicy) WorkDate(now time.Time) time.Time {
	local := now.In(p.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeOfDay returns the offset of now from local midnight.
func (p WindowPolicy) TimeOfDay(now time.Time) time.Duration {
	local := now.In(p.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	return local.Sub(midnight)
}

// InWindow reports whether now falls inside t's window including grace.
func (p WindowPolicy) InWindow(t SessionType, now time.Time) bool {
	return p.Windows[t].Contains(p.TimeOfDay(now), p.Grace)
}

// ScheduledStart is the nominal start of the working day (morning_in window start).
func (p WindowPolicy) ScheduledStart() time.Duration {
	return p.Windows[SessionMorningIn].Start
}

type ExpectationStatus string

const (
	ExpectationDue         ExpectationStatus = "due"
	ExpectationNotYetDue   ExpectationStatus = "not_yet_due"
	ExpectationMissed      ExpectationStatus = "missed"
	ExpectationDayComplete ExpectationStatus = "day_complete"
	// ExpectationClosed means nothing else can be recorded today although the
	// day is not complete (only optional overtime is left and its window is gone).
	ExpectationClosed ExpectationStatus = "closed"
)

// Expectation is the answer to "what should this employee do next".
type Expectation struct {
	Status ExpectationStatus
	// Type is the due session, the first missed one, or the next upcoming one.
	Type *SessionType
	// Next is the first upcoming session when Status is missed.
	Next   *SessionType
	Missed []SessionType
}

// NextExpected walks the ordered session types and reports the first missing
// type whose window contains now. Failing that it reports the first missed
// type (window already passed) and the first not-yet-due type, so a kiosk can
// distinguish "you missed morning checkout" from "come back at 13:00".
// Types whose prerequisite is absent are skipped, so overtime is only
// considered once afternoon_out is recorded. Overtime is never reported as missed.
func (p WindowPolicy) NextExpected(now time.Time, present SessionSet) Expectation {
	if present.Complete() {
		return Expectation{Status: ExpectationDayComplete}
	}

	tod := p.TimeOfDay(now)
	var (
		upcoming *SessionType
		missed   []SessionType
	)

	for _, t := range SessionOrder {
		if present.Has(t) {
			continue
		}
		if pre, ok := t.Prerequisite(); ok && !present.Has(pre) {
			// cannot be performed today until its prerequisite exists
			continue
		}
		t := t
		w := p.Windows[t]
		switch {
		case w.Contains(tod, p.Grace):
			return Expectation{Status: ExpectationDue, Type: &t, Missed: missed}
		case tod < w.Start-p.Grace:
			if upcoming == nil {
				upcoming = &t
			}
		default:
			if t != SessionOvertime {
				missed = append(missed, t)
			}
		}
	}

	if len(missed) > 0 {
		first := missed[0]
		return Expectation{Status: ExpectationMissed, Type: &first, Next: upcoming, Missed: missed}
	}
	if upcoming != nil {
		return Expectation{Status: ExpectationNotYetDue, Type: upcoming}
	}
	return Expectation{Status: ExpectationClosed}
}
