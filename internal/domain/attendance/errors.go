package attendance

import (
	"errors"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"
)

// Attendance domain errors
var (
	ErrEmployeeNotActive = apperror.New(apperror.KindStateConflict, string(ReasonEmployeeNotActive), "employee is not in an active employment status")
	ErrDuplicateSession  = apperror.New(apperror.KindStateConflict, string(ReasonDuplicateSession), "session already recorded for today")
	ErrOutOfSequence     = apperror.New(apperror.KindStateConflict, string(ReasonOutOfSequence), "session is out of sequence")
	ErrOutsideWindow     = apperror.New(apperror.KindStateConflict, string(ReasonOutsideWindow), "outside the allowed time window")

	ErrInvalidSessionType = apperror.New(apperror.KindValidation, "INVALID_SESSION_TYPE", "invalid session type")
	ErrClockSkew          = apperror.New(apperror.KindValidation, "CLOCK_SKEW", "client timestamp is too far from server time")
	ErrInvalidRange       = apperror.New(apperror.KindValidation, "INVALID_RANGE", "invalid date range")

	// ErrSessionExists is returned by repositories when the
	// (employee, date, session type) uniqueness constraint rejects an insert.
	ErrSessionExists = errors.New("attendance session already exists")

	// ErrCacheMiss is returned by SummaryCache.Get when nothing is cached.
	ErrCacheMiss = errors.New("summary cache miss")
)
