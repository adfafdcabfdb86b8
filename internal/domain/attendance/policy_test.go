package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

func at(h, m int) time.Time {
	return time.Date(2025, time.March, 10, h, m, 0, 0, wib)
}

func sess(t SessionType, recordedAt time.Time) AttendanceSession {
	return AttendanceSession{
		EmployeeID:  "emp-1",
		WorkDate:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		SessionType: t,
		RecordedAt:  recordedAt,
	}
}

func testPolicy(t *testing.T) WindowPolicy {
	t.Helper()
	p, err := NewWindowPolicy(DefaultWindows(), 15*time.Minute, wib)
	require.NoError(t, err)
	return p
}

// ===== WINDOW TESTS =====

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Window
		wantErr bool
	}{
		{"morning", "07:00-12:00", Window{Start: 7 * time.Hour, End: 12 * time.Hour}, false},
		{"until midnight", "18:00-24:00", Window{Start: 18 * time.Hour, End: 24 * time.Hour}, false},
		{"with spaces", " 13:00 - 18:30 ", Window{Start: 13 * time.Hour, End: 18*time.Hour + 30*time.Minute}, false},
		{"reversed", "12:00-07:00", Window{}, true},
		{"out of range", "25:00-26:00", Window{}, true},
		{"missing minutes", "7-12", Window{}, true},
		{"empty", "", Window{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindow(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_ContainsWithGrace(t *testing.T) {
	w := Window{Start: 7 * time.Hour, End: 12 * time.Hour}
	grace := 15 * time.Minute

	assert.True(t, w.Contains(6*time.Hour+45*time.Minute, grace))
	assert.False(t, w.Contains(6*time.Hour+44*time.Minute, grace))
	assert.True(t, w.Contains(12*time.Hour+14*time.Minute, grace))
	assert.False(t, w.Contains(12*time.Hour+15*time.Minute, grace))
}

func TestNewWindowPolicy_MissingWindow(t *testing.T) {
	windows := DefaultWindows()
	delete(windows, SessionOvertime)

	_, err := NewWindowPolicy(windows, 0, wib)
	assert.Error(t, err)
}

func TestWindowPolicy_WorkDateUsesLocalCalendar(t *testing.T) {
	p := testPolicy(t)

	// 23:30 UTC on the 10th is 06:30 on the 11th in UTC+7
	now := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), p.WorkDate(now))
	assert.Equal(t, 6*time.Hour+30*time.Minute, p.TimeOfDay(now))
}

// ===== NEXT EXPECTED TESTS =====

func TestNextExpected_DueMorningIn(t *testing.T) {
	p := testPolicy(t)

	got := p.NextExpected(at(7, 30), NewSessionSet(nil))

	assert.Equal(t, ExpectationDue, got.Status)
	require.NotNil(t, got.Type)
	assert.Equal(t, SessionMorningIn, *got.Type)
}

func TestNextExpected_WithinGraceBeforeWindow(t *testing.T) {
	p := testPolicy(t)

	got := p.NextExpected(at(6, 50), NewSessionSet(nil))

	assert.Equal(t, ExpectationDue, got.Status)
	assert.Equal(t, SessionMorningIn, *got.Type)
}

func TestNextExpected_NotYetDue(t *testing.T) {
	p := testPolicy(t)

	got := p.NextExpected(at(6, 0), NewSessionSet(nil))

	assert.Equal(t, ExpectationNotYetDue, got.Status)
	require.NotNil(t, got.Type)
	assert.Equal(t, SessionMorningIn, *got.Type)
}

func TestNextExpected_MissedReportsUpcoming(t *testing.T) {
	p := testPolicy(t)

	got := p.NextExpected(at(12, 30), NewSessionSet(nil))

	assert.Equal(t, ExpectationMissed, got.Status)
	require.NotNil(t, got.Type)
	assert.Equal(t, SessionMorningIn, *got.Type)
	require.NotNil(t, got.Next)
	assert.Equal(t, SessionAfternoonIn, *got.Next)
}

func TestNextExpected_DueWhileEarlierMissed(t *testing.T) {
	p := testPolicy(t)
	present := NewSessionSet([]AttendanceSession{sess(SessionMorningIn, at(7, 5))})

	got := p.NextExpected(at(14, 0), present)

	assert.Equal(t, ExpectationDue, got.Status)
	assert.Equal(t, SessionAfternoonIn, *got.Type)
	assert.Equal(t, []SessionType{SessionMorningOut}, got.Missed)
}

func TestNextExpected_OvertimeOnlyAfterAfternoonOut(t *testing.T) {
	p := testPolicy(t)
	present := NewSessionSet([]AttendanceSession{
		sess(SessionMorningIn, at(7, 5)),
		sess(SessionMorningOut, at(12, 0)),
		sess(SessionAfternoonIn, at(13, 10)),
	})

	got := p.NextExpected(at(19, 0), present)
	assert.Equal(t, SessionAfternoonOut, *got.Type)

	present[SessionAfternoonOut] = true
	got = p.NextExpected(at(19, 0), present)
	assert.Equal(t, ExpectationDue, got.Status)
	assert.Equal(t, SessionOvertime, *got.Type)
}

func TestNextExpected_DayComplete(t *testing.T) {
	p := testPolicy(t)
	present := SessionSet{}
	for _, st := range SessionOrder {
		present[st] = true
	}

	got := p.NextExpected(at(21, 0), present)

	assert.Equal(t, ExpectationDayComplete, got.Status)
	assert.Nil(t, got.Type)
}
