package payroll

import (
	"context"
)

type PayrollService interface {
	// Period
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	UpdatePeriod(ctx context.Context, req UpdatePeriodRequest) (PeriodResponse, error)
	DeletePeriod(ctx context.Context, id string) error
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PeriodResponse, error)
	// Records
	GenerateRecords(ctx context.Context, req GenerateRecordsRequest) (GenerateRecordsResponse, error)
	ReprocessRecords(ctx context.Context, req GenerateRecordsRequest) (GenerateRecordsResponse, error)
	ListRecords(ctx context.Context, periodID string, departmentID *string) ([]RecordResponse, error)
	GetRecord(ctx context.Context, id string) (RecordResponse, error)
	MarkRecordsPaid(ctx context.Context, req MarkPaidRequest) (MarkPaidResponse, error)
	// Approval
	ApproveDepartment(ctx context.Context, req ApproveDepartmentRequest) (ApproveDepartmentResponse, error)
	ListApprovals(ctx context.Context, periodID string) (ListApprovalsResponse, error)
	// Adjustment types
	CreateAdjustmentType(ctx context.Context, req CreateAdjustmentTypeRequest) (AdjustmentTypeResponse, error)
	ListAdjustmentTypes(ctx context.Context, activeOnly bool) ([]AdjustmentTypeResponse, error)
	DeactivateAdjustmentType(ctx context.Context, id string) error
	// Overtime to leave
	OvertimeLeave(ctx context.Context, periodID, employeeID string) (OvertimeLeaveResponse, error)
}
