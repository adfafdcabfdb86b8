package attendance

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"golang.org/x/crypto/blake2b"
)

// RecordSession implements attendance.AttendanceService.
//
// The decision is re-evaluated inside the write transaction; the storage
// uniqueness constraint settles races between concurrent kiosks.
func (s *AttendanceServiceImpl) RecordSession(ctx context.Context, req attendance.RecordSessionRequest) (attendance.AttendanceSession, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceSession{}, err
	}
	sessionType, err := attendance.ParseSessionType(req.SessionType)
	if err != nil {
		return attendance.AttendanceSession{}, attendance.ErrInvalidSessionType
	}

	now := s.clock.Now()
	at := now
	if clientTime := req.ClientTime(); clientTime != nil {
		skew := clientTime.Sub(now)
		if skew < 0 {
			skew = -skew
		}
		if skew > s.maxSkew {
			return attendance.AttendanceSession{}, attendance.ErrClockSkew
		}
		at = *clientTime
	}
	at = at.UTC()
	workDate := s.policy.WorkDate(at)
	verification := req.Verification()

	var recorded attendance.AttendanceSession
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		active, today, err := s.loadDay(ctx, req.EmployeeID, workDate)
		if err != nil {
			return err
		}

		if decision := attendance.Check(active, today, sessionType, at, s.policy); !decision.Allowed {
			return decision.Err()
		}
		if decision := attendance.CheckChronology(today, sessionType, at); !decision.Allowed {
			return decision.Err()
		}

		recorded, err = s.AttendanceRepository.Create(ctx, attendance.AttendanceSession{
			EmployeeID:       req.EmployeeID,
			WorkDate:         workDate,
			SessionType:      sessionType,
			RecordedAt:       at,
			VerificationHash: verificationHash(req.EmployeeID, sessionType, workDate.Format("2006-01-02"), verification.Token),
			PhotoRef:         verification.PhotoRef,
			LocationTag:      verification.LocationTag,
			CreatedAt:        now.UTC(),
		})
		if err != nil {
			if errors.Is(err, attendance.ErrSessionExists) {
				return attendance.ErrDuplicateSession
			}
			return err
		}

		event, err := outbox.NewEvent(outbox.AggregateAttendance, recorded.EmployeeID, outbox.EventSessionRecorded, outbox.SessionRecorded{
			SessionID:   recorded.ID,
			EmployeeID:  recorded.EmployeeID,
			WorkDate:    workDate.Format("2006-01-02"),
			SessionType: sessionType.String(),
			RecordedAt:  recorded.RecordedAt,
		}, now)
		if err != nil {
			return err
		}
		return s.outboxRepo.Create(ctx, event)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "attendance session rejected",
			"employee_id", req.EmployeeID,
			"session_type", sessionType,
			"error", err,
		)
		return attendance.AttendanceSession{}, err
	}

	s.writes.Add(1)
	if err := s.cache.Invalidate(ctx, recorded.EmployeeID, workDate); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate day summary cache",
			"employee_id", recorded.EmployeeID,
			"work_date", workDate.Format("2006-01-02"),
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "attendance session recorded",
		"employee_id", recorded.EmployeeID,
		"session_type", sessionType,
		"session_id", recorded.ID,
	)
	return recorded, nil
}

// verificationHash binds the opaque verification token to the session it
// authorized. Only the digest is stored.
func verificationHash(employeeID string, sessionType attendance.SessionType, workDate, token string) string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", employeeID, sessionType, workDate, token)))
	return hex.EncodeToString(sum[:])
}
