package attendance

import "fmt"

// SessionType is one of the five canonical daily clock actions.
type SessionType string

const (
	SessionMorningIn    SessionType = "morning_in"
	SessionMorningOut   SessionType = "morning_out"
	SessionAfternoonIn  SessionType = "afternoon_in"
	SessionAfternoonOut SessionType = "afternoon_out"
	SessionOvertime     SessionType = "overtime"
)

// SessionOrder is the canonical daily sequence.
var SessionOrder = []SessionType{
	SessionMorningIn,
	SessionMorningOut,
	SessionAfternoonIn,
	SessionAfternoonOut,
	SessionOvertime,
}

// MandatorySessions must all be present for a day to count as complete.
var MandatorySessions = []SessionType{
	SessionMorningIn,
	SessionMorningOut,
	SessionAfternoonIn,
	SessionAfternoonOut,
}

func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown session type %q", s)
	}
	return t, nil
}

func (t SessionType) IsValid() bool {
	return t.Index() >= 0
}

// Index returns the position of t in SessionOrder, or -1.
func (t SessionType) Index() int {
	for i, s := range SessionOrder {
		if s == t {
			return i
		}
	}
	return -1
}

func (t SessionType) Before(other SessionType) bool {
	return t.Index() < other.Index()
}

// Prerequisite returns the session that must already be recorded the same day
// before t may be recorded. An "out" needs its "in"; overtime needs afternoon_out.
func (t SessionType) Prerequisite() (SessionType, bool) {
	switch t {
	case SessionMorningOut:
		return SessionMorningIn, true
	case SessionAfternoonOut:
		return SessionAfternoonIn, true
	case SessionOvertime:
		return SessionAfternoonOut, true
	}
	return "", false
}

func (t SessionType) String() string {
	return string(t)
}

// SessionSet is the set of session types already recorded for one day.
type SessionSet map[SessionType]bool

func NewSessionSet(sessions []AttendanceSession) SessionSet {
	set := make(SessionSet, len(sessions))
	for _, s := range sessions {
		set[s.SessionType] = true
	}
	return set
}

func (s SessionSet) Has(t SessionType) bool {
	return s[t]
}

// Complete reports whether every session type is present.
func (s SessionSet) Complete() bool {
	for _, t := range SessionOrder {
		if !s[t] {
			return false
		}
	}
	return true
}
