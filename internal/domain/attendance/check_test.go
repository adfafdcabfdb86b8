package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	p := testPolicy(t)
	morningIn := sess(SessionMorningIn, at(7, 5))

	tests := []struct {
		name        string
		active      bool
		today       []AttendanceSession
		sessionType SessionType
		now         time.Time
		wantAllowed bool
		wantReason  Reason
	}{
		{"allowed", true, nil, SessionMorningIn, at(7, 5), true, ""},
		{"inactive wins over duplicate", false, []AttendanceSession{morningIn}, SessionMorningIn, at(8, 0), false, ReasonEmployeeNotActive},
		{"duplicate", true, []AttendanceSession{morningIn}, SessionMorningIn, at(8, 0), false, ReasonDuplicateSession},
		{"out without in", true, nil, SessionAfternoonOut, at(18, 30), false, ReasonOutOfSequence},
		{"overtime without afternoon out", true, nil, SessionOvertime, at(19, 0), false, ReasonOutOfSequence},
		{"sequence before window", true, nil, SessionMorningOut, at(9, 0), false, ReasonOutOfSequence},
		{"outside window", true, []AttendanceSession{morningIn}, SessionMorningOut, at(10, 0), false, ReasonOutsideWindow},
		{"afternoon in needs no morning", true, nil, SessionAfternoonIn, at(13, 0), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.active, tt.today, tt.sessionType, tt.now, p)

			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantReason, got.Reason)
			if tt.wantAllowed {
				assert.NoError(t, got.Err())
			} else {
				assert.NotEmpty(t, got.Message)
			}
		})
	}
}

func TestCheck_SideEffectFree(t *testing.T) {
	p := testPolicy(t)
	today := []AttendanceSession{sess(SessionMorningIn, at(7, 5))}

	first := Check(true, today, SessionMorningOut, at(12, 5), p)
	second := Check(true, today, SessionMorningOut, at(12, 5), p)

	assert.Equal(t, first, second)
	assert.Len(t, today, 1)
}

func TestDecision_ErrMatchesSentinel(t *testing.T) {
	p := testPolicy(t)
	today := []AttendanceSession{sess(SessionMorningIn, at(7, 5))}

	err := Check(true, today, SessionMorningIn, at(8, 0), p).Err()

	assert.True(t, errors.Is(err, ErrDuplicateSession))
	assert.Equal(t, apperror.KindStateConflict, apperror.KindOf(err))
	// the sentinel itself is not mutated
	assert.Equal(t, "session already recorded for today", ErrDuplicateSession.Message)
}

func TestCheckChronology(t *testing.T) {
	today := []AttendanceSession{
		sess(SessionMorningIn, at(7, 5)),
		sess(SessionMorningOut, at(12, 0)),
	}

	assert.True(t, CheckChronology(today, SessionAfternoonIn, at(13, 10)).Allowed)

	got := CheckChronology(today, SessionAfternoonIn, at(11, 59))
	assert.False(t, got.Allowed)
	assert.Equal(t, ReasonOutOfSequence, got.Reason)

	// equal timestamps are not strictly ordered
	assert.False(t, CheckChronology(today, SessionAfternoonIn, at(12, 0)).Allowed)

	// a later-ordered session already exists
	only := []AttendanceSession{sess(SessionAfternoonIn, at(13, 0))}
	assert.False(t, CheckChronology(only, SessionMorningIn, at(13, 30)).Allowed)
	assert.True(t, CheckChronology(only, SessionMorningIn, at(7, 0)).Allowed)
}
