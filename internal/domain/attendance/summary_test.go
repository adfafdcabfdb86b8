package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var workDate = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func testRules() HoursRules {
	return HoursRules{
		ScheduledStart: 7 * time.Hour,
		StandardDaily:  9 * time.Hour,
		Location:       wib,
	}
}

func TestSummarize_FullDayWithLateness(t *testing.T) {
	sessions := []AttendanceSession{
		sess(SessionMorningIn, at(7, 5)),
		sess(SessionMorningOut, at(12, 0)),
		sess(SessionAfternoonIn, at(13, 10)),
		sess(SessionAfternoonOut, at(18, 30)),
	}

	got := Summarize("emp-1", workDate, sessions, testRules())

	assert.True(t, got.IsComplete)
	assert.Equal(t, 5, got.LateMinutes)
	assert.Equal(t, 540, got.RegularMinutes) // 10h15m worked, capped at 9h
	assert.Equal(t, 0, got.OvertimeMinutes)
	assert.True(t, decimal.RequireFromString("0.0833").Equal(got.LateHours()))
	assert.True(t, decimal.NewFromInt(9).Equal(got.RegularHours()))
}

func TestSummarize_UnderStandardHours(t *testing.T) {
	sessions := []AttendanceSession{
		sess(SessionMorningIn, at(7, 0)),
		sess(SessionMorningOut, at(11, 0)),
		sess(SessionAfternoonIn, at(13, 0)),
		sess(SessionAfternoonOut, at(17, 0)),
	}

	got := Summarize("emp-1", workDate, sessions, testRules())

	assert.Equal(t, 480, got.RegularMinutes)
	assert.Equal(t, 0, got.LateMinutes)
}

func TestSummarize_IncompleteDayKeepsLateness(t *testing.T) {
	sessions := []AttendanceSession{
		sess(SessionMorningIn, at(7, 20)),
		sess(SessionMorningOut, at(12, 0)),
	}

	got := Summarize("emp-1", workDate, sessions, testRules())

	assert.False(t, got.IsComplete)
	assert.Equal(t, 0, got.RegularMinutes)
	assert.Equal(t, 20, got.LateMinutes)
}

func TestSummarize_Overtime(t *testing.T) {
	sessions := []AttendanceSession{
		sess(SessionOvertime, at(20, 45)),
		sess(SessionAfternoonOut, at(18, 30)),
		sess(SessionAfternoonIn, at(13, 0)),
		sess(SessionMorningOut, at(12, 0)),
		sess(SessionMorningIn, at(7, 0)),
	}

	got := Summarize("emp-1", workDate, sessions, testRules())

	assert.Equal(t, 135, got.OvertimeMinutes)
	// sessions come back in canonical order
	for i, s := range got.Sessions {
		assert.Equal(t, SessionOrder[i], s.SessionType)
	}
}

func TestSummarize_TruncatesToWholeMinutes(t *testing.T) {
	sessions := []AttendanceSession{
		sess(SessionMorningIn, at(7, 5).Add(59*time.Second)),
	}

	got := Summarize("emp-1", workDate, sessions, testRules())

	assert.Equal(t, 5, got.LateMinutes)
}

func TestSummarize_NoSessions(t *testing.T) {
	got := Summarize("emp-1", workDate, nil, testRules())

	assert.False(t, got.IsComplete)
	assert.Empty(t, got.Sessions)
	assert.Zero(t, got.RegularMinutes)
	assert.Zero(t, got.LateMinutes)
	assert.Zero(t, got.OvertimeMinutes)
}

func TestTotal(t *testing.T) {
	days := []DaySummary{
		{Sessions: []AttendanceSession{{}}, RegularMinutes: 540, LateMinutes: 5, IsComplete: true},
		{Sessions: []AttendanceSession{{}}, LateMinutes: 10},
		{},
	}

	got := Total(days)

	assert.Equal(t, 2, got.DaysPresent)
	assert.Equal(t, 1, got.DaysComplete)
	assert.Equal(t, 540, got.RegularMinutes)
	assert.Equal(t, 15, got.LateMinutes)
	assert.True(t, decimal.NewFromInt(9).Equal(got.RegularHours()))
}
