package payroll

import (
	"errors"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"
)

var (
	ErrPeriodNotFound         = apperror.New(apperror.KindNotFound, "PERIOD_NOT_FOUND", "payroll period not found")
	ErrRecordNotFound         = apperror.New(apperror.KindNotFound, "RECORD_NOT_FOUND", "payroll record not found")
	ErrAdjustmentTypeNotFound = apperror.New(apperror.KindNotFound, "ADJUSTMENT_TYPE_NOT_FOUND", "adjustment type not found")

	ErrInvalidPeriodState  = apperror.New(apperror.KindStateConflict, "INVALID_PERIOD_STATE", "operation not allowed in the current period state")
	ErrPeriodProcessing    = apperror.New(apperror.KindStateConflict, "PERIOD_PROCESSING", "payroll generation is already running for this period")
	ErrPeriodHasRecords    = apperror.New(apperror.KindStateConflict, "PERIOD_HAS_RECORDS", "payroll period is referenced by payroll records")
	ErrRecordExists        = apperror.New(apperror.KindStateConflict, "RECORD_EXISTS", "payroll record already exists for this employee and period")
	ErrRecordsPaid         = apperror.New(apperror.KindStateConflict, "RECORDS_ALREADY_PAID", "paid payroll records cannot be regenerated")
	ErrAlreadyApproved     = apperror.New(apperror.KindStateConflict, "DEPARTMENT_ALREADY_APPROVED", "department payroll already approved")
	ErrNoDepartmentRecords = apperror.New(apperror.KindStateConflict, "NO_DEPARTMENT_RECORDS", "department has no payroll records in this period")

	ErrNoEligibleEmployees = apperror.New(apperror.KindValidation, "NO_ELIGIBLE_EMPLOYEES", "no active employees to generate payroll for")
	ErrInvalidAdjustment   = apperror.New(apperror.KindValidation, "INVALID_ADJUSTMENT", "exactly one of fixed_amount or percentage must be set")

	ErrMissingCompensation = apperror.New(apperror.KindConfigurationMissing, "MISSING_COMPENSATION", "employee has no base salary configured")
	ErrNoWorkingDays       = apperror.New(apperror.KindConfigurationMissing, "NO_WORKING_DAYS", "payroll period contains no working days")

	// ErrApprovalExists is returned by repositories when the
	// (period, department) uniqueness constraint rejects an insert.
	ErrApprovalExists = errors.New("department approval already exists")
)
