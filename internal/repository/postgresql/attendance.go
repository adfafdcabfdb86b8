package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const sessionUniqueConstraint = "attendance_sessions_employee_date_type_key"

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, session attendance.AttendanceSession) (attendance.AttendanceSession, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_sessions (
			employee_id, work_date, session_type, recorded_at,
			verification_hash, photo_ref, location_tag
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		session.EmployeeID,
		session.WorkDate,
		session.SessionType,
		session.RecordedAt,
		session.VerificationHash,
		session.PhotoRef,
		session.LocationTag,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, sessionUniqueConstraint) {
			return attendance.AttendanceSession{}, attendance.ErrSessionExists
		}
		return attendance.AttendanceSession{}, classify(err, "failed to create attendance session")
	}

	return session, nil
}

// ListByEmployeeDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) ([]attendance.AttendanceSession, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, work_date, session_type, recorded_at,
			   verification_hash, photo_ref, location_tag, created_at
		FROM attendance_sessions
		WHERE employee_id = $1 AND work_date = $2
		ORDER BY recorded_at
	`

	rows, err := q.Query(ctx, query, employeeID, workDate)
	if err != nil {
		return nil, classify(err, "failed to list attendance sessions")
	}
	return scanSessions(rows)
}

// ListByEmployeeRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceSession, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, work_date, session_type, recorded_at,
			   verification_hash, photo_ref, location_tag, created_at
		FROM attendance_sessions
		WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date, recorded_at
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, classify(err, "failed to list attendance sessions")
	}
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]attendance.AttendanceSession, error) {
	defer rows.Close()

	var sessions []attendance.AttendanceSession
	for rows.Next() {
		var s attendance.AttendanceSession
		if err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.WorkDate, &s.SessionType, &s.RecordedAt,
			&s.VerificationHash, &s.PhotoRef, &s.LocationTag, &s.CreatedAt,
		); err != nil {
			return nil, classify(err, "failed to scan attendance session")
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read attendance sessions")
	}
	return sessions, nil
}
