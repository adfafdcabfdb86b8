package attendance

import (
	"fmt"
	"time"
)

// Check decides whether sessionType may be recorded at now given the sessions
// already recorded today. It has no side effects. Checks run in order and the
// first failure wins: active employee, duplicate, sequence, window.
func Check(active bool, today []AttendanceSession, sessionType SessionType, now time.Time, policy WindowPolicy) Decision {
	if !active {
		return deny(ReasonEmployeeNotActive, "employee is not in an active employment status")
	}

	present := NewSessionSet(today)
	if present.Has(sessionType) {
		return deny(ReasonDuplicateSession, fmt.Sprintf("%s already recorded today", sessionType))
	}

	if pre, ok := sessionType.Prerequisite(); ok && !present.Has(pre) {
		return deny(ReasonOutOfSequence, fmt.Sprintf("%s requires %s first", sessionType, pre))
	}

	if !policy.InWindow(sessionType, now) {
		w := policy.Windows[sessionType]
		return deny(ReasonOutsideWindow, fmt.Sprintf("%s is allowed between %s", sessionType, w))
	}

	return allow()
}

// CheckChronology rejects a timestamp that would break the temporal order of
// the day: it must be strictly after every earlier-ordered session and strictly
// before every later-ordered one.
func CheckChronology(today []AttendanceSession, sessionType SessionType, at time.Time) Decision {
	for _, s := range today {
		switch {
		case s.SessionType.Before(sessionType) && !at.After(s.RecordedAt):
			return deny(ReasonOutOfSequence, fmt.Sprintf("%s must be after %s", sessionType, s.SessionType))
		case sessionType.Before(s.SessionType) && !at.Before(s.RecordedAt):
			return deny(ReasonOutOfSequence, fmt.Sprintf("%s must be before %s", sessionType, s.SessionType))
		}
	}
	return allow()
}
