package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period Period) (Period, error)
	GetPeriod(ctx context.Context, id string) (Period, error)
	// GetPeriodForUpdate locks the period row for the rest of the transaction.
	GetPeriodForUpdate(ctx context.Context, id string) (Period, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]Period, error)
	UpdatePeriodDates(ctx context.Context, id string, name string, start, end time.Time) error
	DeletePeriod(ctx context.Context, id string) error
	// TransitionStatus moves the period to `to` only if its current status is
	// one of `from`, returning ErrInvalidPeriodState otherwise.
	TransitionStatus(ctx context.Context, id string, from []PeriodStatus, to PeriodStatus, at time.Time) (Period, error)

	// Records
	CreateRecords(ctx context.Context, records []Record) ([]Record, error)
	GetRecord(ctx context.Context, id string) (Record, error)
	ListRecords(ctx context.Context, periodID string, departmentID *string) ([]Record, error)
	CountRecords(ctx context.Context, periodID string) (int, error)
	DeleteRecords(ctx context.Context, periodID string, departmentID *string) (int64, error)
	// UpdateRecordStatus moves records of the period in status `from` to `to`,
	// optionally narrowed to a department and/or a set of record IDs.
	UpdateRecordStatus(ctx context.Context, filter RecordStatusFilter, from, to RecordStatus, at time.Time) (int64, error)
	ListRecordDepartments(ctx context.Context, periodID string) ([]string, error)

	// Approvals
	CreateApproval(ctx context.Context, approval DepartmentApproval) (DepartmentApproval, error)
	ListApprovals(ctx context.Context, periodID string) ([]DepartmentApproval, error)
	DeleteApprovals(ctx context.Context, periodID string, departmentID *string) error

	// Adjustment types
	CreateAdjustmentType(ctx context.Context, adjustment AdjustmentType) (AdjustmentType, error)
	GetAdjustmentType(ctx context.Context, id string) (AdjustmentType, error)
	ListAdjustmentTypes(ctx context.Context, activeOnly bool) ([]AdjustmentType, error)
	DeactivateAdjustmentType(ctx context.Context, id string, at time.Time) error
}

type PeriodFilter struct {
	Status *PeriodStatus
	Limit  int
	Offset int
}

type RecordStatusFilter struct {
	PeriodID     string
	DepartmentID *string
	RecordIDs    []string
}
