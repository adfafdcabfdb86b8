package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/validator"
)

// HoursSource provides per-day attendance summaries for a date range.
type HoursSource interface {
	SummarizeRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.DaySummary, error)
}

type PayrollServiceImpl struct {
	transactor   database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	outboxRepo   outbox.Repository
	hours        HoursSource
	engine       *Engine
	settings     payroll.Settings
	clock        clock.Clock
	logger       *slog.Logger
}

func NewPayrollService(
	transactor database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	outboxRepo outbox.Repository,
	hours HoursSource,
	settings payroll.Settings,
	clk clock.Clock,
	logger *slog.Logger,
) payroll.PayrollService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		transactor:   transactor,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		hours:        hours,
		engine:       NewEngine(settings),
		settings:     settings,
		clock:        clk,
		logger:       logger.With("component", "payroll"),
	}
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	start, end := req.Dates()
	period, err := s.payrollRepo.CreatePeriod(ctx, payroll.Period{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Status:    payroll.PeriodStatusDraft,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	s.logger.InfoContext(ctx, "payroll period created", "period_id", period.ID, "created_by", req.CreatedBy)
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) UpdatePeriod(ctx context.Context, req payroll.UpdatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriod(ctx, req.ID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status != payroll.PeriodStatusDraft {
		return payroll.PeriodResponse{}, payroll.ErrInvalidPeriodState
	}
	if req.StartDate != nil || req.EndDate != nil {
		count, err := s.payrollRepo.CountRecords(ctx, period.ID)
		if err != nil {
			return payroll.PeriodResponse{}, err
		}
		if count > 0 {
			return payroll.PeriodResponse{}, payroll.ErrPeriodHasRecords
		}
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartDate != nil {
		period.StartDate, _ = validator.IsValidDate(*req.StartDate)
	}
	if req.EndDate != nil {
		period.EndDate, _ = validator.IsValidDate(*req.EndDate)
	}
	if period.EndDate.Before(period.StartDate) {
		return payroll.PeriodResponse{}, validator.ValidationErrors{
			{Field: "end_date", Message: "end_date must not be before start_date"},
		}
	}

	if err := s.payrollRepo.UpdatePeriodDates(ctx, period.ID, period.Name, period.StartDate, period.EndDate); err != nil {
		return payroll.PeriodResponse{}, err
	}

	updated, err := s.payrollRepo.GetPeriod(ctx, period.ID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(updated), nil
}

func (s *PayrollServiceImpl) DeletePeriod(ctx context.Context, id string) error {
	period, err := s.payrollRepo.GetPeriod(ctx, id)
	if err != nil {
		return err
	}
	if period.Status != payroll.PeriodStatusDraft {
		return payroll.ErrInvalidPeriodState
	}

	count, err := s.payrollRepo.CountRecords(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return payroll.ErrPeriodHasRecords
	}

	if err := s.payrollRepo.DeletePeriod(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "payroll period deleted", "period_id", id)
	return nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetPeriod(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PeriodResponse, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, validator.ValidationErrors{{Field: "status", Message: "unknown period status"}}
	}

	periods, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}

	result := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		result = append(result, payroll.NewPeriodResponse(p))
	}
	return result, nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, periodID string, departmentID *string) ([]payroll.RecordResponse, error) {
	if _, err := s.payrollRepo.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListRecords(ctx, periodID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return payroll.NewRecordResponses(records), nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, id string) (payroll.RecordResponse, error) {
	record, err := s.payrollRepo.GetRecord(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	return payroll.NewRecordResponse(record), nil
}

// MarkRecordsPaid only moves records that a department approval already
// processed, so paid is unreachable before sign-off.
func (s *PayrollServiceImpl) MarkRecordsPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.MarkPaidResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.MarkPaidResponse{}, err
	}

	now := s.clock.Now().UTC()
	var updated int64
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.GetPeriodForUpdate(ctx, req.PeriodID)
		if err != nil {
			return err
		}
		if !payroll.ContainsStatus(payroll.PayableIn(), period.Status) {
			return payroll.ErrInvalidPeriodState
		}

		updated, err = s.payrollRepo.UpdateRecordStatus(ctx, payroll.RecordStatusFilter{
			PeriodID:     req.PeriodID,
			DepartmentID: req.DepartmentID,
			RecordIDs:    req.RecordIDs,
		}, payroll.RecordStatusProcessed, payroll.RecordStatusPaid, now)
		if err != nil {
			return err
		}
		if updated == 0 {
			return nil
		}

		return s.emit(ctx, req.PeriodID, outbox.EventRecordsPaid, outbox.RecordsPaid{
			PeriodID:     req.PeriodID,
			DepartmentID: req.DepartmentID,
			UpdatedCount: updated,
			PaidAt:       now,
		}, now)
	})
	if err != nil {
		return payroll.MarkPaidResponse{}, err
	}

	s.logger.InfoContext(ctx, "payroll records marked paid", "period_id", req.PeriodID, "updated_count", updated)
	return payroll.MarkPaidResponse{PeriodID: req.PeriodID, UpdatedCount: updated}, nil
}

// ========== APPROVAL ==========

// ApproveDepartment records a department sign-off, processes that
// department's records, and completes the period once every department
// with records has signed off.
func (s *PayrollServiceImpl) ApproveDepartment(ctx context.Context, req payroll.ApproveDepartmentRequest) (payroll.ApproveDepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ApproveDepartmentResponse{}, err
	}

	now := s.clock.Now().UTC()
	var resp payroll.ApproveDepartmentResponse
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		period, err := s.payrollRepo.GetPeriodForUpdate(ctx, req.PeriodID)
		if err != nil {
			return err
		}
		if period.Status != payroll.PeriodStatusSentForReview {
			return payroll.ErrInvalidPeriodState
		}

		withRecords, err := s.payrollRepo.ListRecordDepartments(ctx, req.PeriodID)
		if err != nil {
			return err
		}
		if !contains(withRecords, req.DepartmentID) {
			return payroll.ErrNoDepartmentRecords.WithDepartment(req.DepartmentID)
		}
		departments, err := s.requiredDepartments(ctx, withRecords)
		if err != nil {
			return err
		}

		approval, err := s.payrollRepo.CreateApproval(ctx, payroll.DepartmentApproval{
			PeriodID:     req.PeriodID,
			DepartmentID: req.DepartmentID,
			ApproverID:   req.ApproverID,
			ApprovedAt:   now,
		})
		if err != nil {
			if errors.Is(err, payroll.ErrApprovalExists) {
				return payroll.ErrAlreadyApproved.WithDepartment(req.DepartmentID)
			}
			return err
		}

		processed, err := s.payrollRepo.UpdateRecordStatus(ctx, payroll.RecordStatusFilter{
			PeriodID:     req.PeriodID,
			DepartmentID: &req.DepartmentID,
		}, payroll.RecordStatusDraft, payroll.RecordStatusProcessed, now)
		if err != nil {
			return err
		}

		if err := s.emit(ctx, req.PeriodID, outbox.EventDepartmentApproved, outbox.DepartmentApproved{
			PeriodID:     req.PeriodID,
			DepartmentID: req.DepartmentID,
			ApproverID:   req.ApproverID,
			ApprovedAt:   now,
		}, now); err != nil {
			return err
		}

		approvals, err := s.payrollRepo.ListApprovals(ctx, req.PeriodID)
		if err != nil {
			return err
		}

		resp = payroll.ApproveDepartmentResponse{
			Approval:       payroll.NewApprovalResponse(approval),
			ProcessedCount: processed,
			PeriodStatus:   string(period.Status),
		}
		if len(pendingDepartments(departments, approvals)) > 0 {
			return nil
		}

		completed, err := s.payrollRepo.TransitionStatus(ctx, req.PeriodID,
			[]payroll.PeriodStatus{payroll.PeriodStatusSentForReview}, payroll.PeriodStatusCompleted, now)
		if err != nil {
			return err
		}
		resp.PeriodStatus = string(completed.Status)
		resp.PeriodCompleted = true

		return s.emit(ctx, req.PeriodID, outbox.EventPeriodCompleted, outbox.PeriodCompleted{
			PeriodID:    req.PeriodID,
			CompletedAt: now,
		}, now)
	})
	if err != nil {
		return payroll.ApproveDepartmentResponse{}, err
	}

	s.logger.InfoContext(ctx, "department payroll approved",
		"period_id", req.PeriodID,
		"department_id", req.DepartmentID,
		"approver_id", req.ApproverID,
		"period_completed", resp.PeriodCompleted,
	)
	return resp, nil
}

func (s *PayrollServiceImpl) ListApprovals(ctx context.Context, periodID string) (payroll.ListApprovalsResponse, error) {
	if _, err := s.payrollRepo.GetPeriod(ctx, periodID); err != nil {
		return payroll.ListApprovalsResponse{}, err
	}

	approvals, err := s.payrollRepo.ListApprovals(ctx, periodID)
	if err != nil {
		return payroll.ListApprovalsResponse{}, fmt.Errorf("failed to list approvals: %w", err)
	}
	withRecords, err := s.payrollRepo.ListRecordDepartments(ctx, periodID)
	if err != nil {
		return payroll.ListApprovalsResponse{}, fmt.Errorf("failed to list departments: %w", err)
	}
	departments, err := s.requiredDepartments(ctx, withRecords)
	if err != nil {
		return payroll.ListApprovalsResponse{}, err
	}

	resp := payroll.ListApprovalsResponse{
		PeriodID:           periodID,
		Approvals:          make([]payroll.ApprovalResponse, 0, len(approvals)),
		PendingDepartments: pendingDepartments(departments, approvals),
	}
	for _, a := range approvals {
		resp.Approvals = append(resp.Approvals, payroll.NewApprovalResponse(a))
	}
	return resp, nil
}

// requiredDepartments is every department that must sign off: those with
// eligible employees plus those that already hold records.
func (s *PayrollServiceImpl) requiredDepartments(ctx context.Context, withRecords []string) ([]string, error) {
	eligible, err := s.employeeRepo.ListActiveForPayroll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	departments := append([]string{}, withRecords...)
	for _, emp := range eligible {
		if !contains(departments, emp.DepartmentID) {
			departments = append(departments, emp.DepartmentID)
		}
	}
	sort.Strings(departments)
	return departments, nil
}

func pendingDepartments(departments []string, approvals []payroll.DepartmentApproval) []string {
	approved := make(map[string]bool, len(approvals))
	for _, a := range approvals {
		approved[a.DepartmentID] = true
	}
	pending := []string{}
	for _, d := range departments {
		if !approved[d] {
			pending = append(pending, d)
		}
	}
	return pending
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ========== ADJUSTMENT TYPES ==========

func (s *PayrollServiceImpl) CreateAdjustmentType(ctx context.Context, req payroll.CreateAdjustmentTypeRequest) (payroll.AdjustmentTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AdjustmentTypeResponse{}, err
	}

	created, err := s.payrollRepo.CreateAdjustmentType(ctx, payroll.AdjustmentType{
		Name:        req.Name,
		Kind:        payroll.AdjustmentKind(req.Kind),
		FixedAmount: req.FixedAmount,
		Percentage:  req.Percentage,
		IsActive:    true,
	})
	if err != nil {
		return payroll.AdjustmentTypeResponse{}, fmt.Errorf("failed to create adjustment type: %w", err)
	}
	return payroll.NewAdjustmentTypeResponse(created), nil
}

func (s *PayrollServiceImpl) ListAdjustmentTypes(ctx context.Context, activeOnly bool) ([]payroll.AdjustmentTypeResponse, error) {
	types, err := s.payrollRepo.ListAdjustmentTypes(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustment types: %w", err)
	}

	result := make([]payroll.AdjustmentTypeResponse, 0, len(types))
	for _, a := range types {
		result = append(result, payroll.NewAdjustmentTypeResponse(a))
	}
	return result, nil
}

func (s *PayrollServiceImpl) DeactivateAdjustmentType(ctx context.Context, id string) error {
	return s.payrollRepo.DeactivateAdjustmentType(ctx, id, s.clock.Now().UTC())
}

// ========== OVERTIME LEAVE ==========

// OvertimeLeave reports the overtime an employee accrued in the period and
// its equivalent in leave days. It does not book any leave.
func (s *PayrollServiceImpl) OvertimeLeave(ctx context.Context, periodID, employeeID string) (payroll.OvertimeLeaveResponse, error) {
	period, err := s.payrollRepo.GetPeriod(ctx, periodID)
	if err != nil {
		return payroll.OvertimeLeaveResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.OvertimeLeaveResponse{}, err
	}

	days, err := s.hours.SummarizeRange(ctx, employeeID, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.OvertimeLeaveResponse{}, err
	}
	totals := attendance.Total(days)
	hours := totals.OvertimeHours()

	return payroll.OvertimeLeaveResponse{
		PeriodID:          periodID,
		EmployeeID:        employeeID,
		OvertimeMinutes:   totals.OvertimeMinutes,
		OvertimeHours:     hours,
		EligibleLeaveDays: hours.DivRound(s.settings.StandardDailyHours, 2),
	}, nil
}

func (s *PayrollServiceImpl) emit(ctx context.Context, periodID, eventType string, payload any, now time.Time) error {
	event, err := outbox.NewEvent(outbox.AggregatePayroll, periodID, eventType, payload, now)
	if err != nil {
		return err
	}
	return s.outboxRepo.Create(ctx, event)
}
