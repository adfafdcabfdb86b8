package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/google/uuid"
)

const dateKeyLayout = "2006-01-02"

type attendanceRepository struct {
	s *Store
}

func (r *attendanceRepository) Create(ctx context.Context, session attendance.AttendanceSession) (attendance.AttendanceSession, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	key := sessionKey{
		employeeID:  session.EmployeeID,
		workDate:    session.WorkDate.Format(dateKeyLayout),
		sessionType: session.SessionType,
	}
	if _, exists := r.s.sessionIndex[key]; exists {
		return attendance.AttendanceSession{}, attendance.ErrSessionExists
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.s.sessions[session.ID] = session
	r.s.sessionIndex[key] = session.ID
	return session, nil
}

func (r *attendanceRepository) ListByEmployeeDate(_ context.Context, employeeID string, workDate time.Time) ([]attendance.AttendanceSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := workDate.Format(dateKeyLayout)
	var result []attendance.AttendanceSession
	for _, t := range attendance.SessionOrder {
		id, ok := r.s.sessionIndex[sessionKey{employeeID: employeeID, workDate: day, sessionType: t}]
		if ok {
			result = append(result, r.s.sessions[id])
		}
	}
	sortSessions(result)
	return result, nil
}

func (r *attendanceRepository) ListByEmployeeRange(_ context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []attendance.AttendanceSession
	for _, session := range r.s.sessions {
		if session.EmployeeID != employeeID {
			continue
		}
		if session.WorkDate.Before(start) || session.WorkDate.After(end) {
			continue
		}
		result = append(result, session)
	}
	sortSessions(result)
	return result, nil
}

func sortSessions(sessions []attendance.AttendanceSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].WorkDate.Equal(sessions[j].WorkDate) {
			return sessions[i].WorkDate.Before(sessions[j].WorkDate)
		}
		return sessions[i].RecordedAt.Before(sessions[j].RecordedAt)
	})
}
