package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"
)

// GenerateRecords implements payroll.PayrollService.
func (s *PayrollServiceImpl) GenerateRecords(ctx context.Context, req payroll.GenerateRecordsRequest) (payroll.GenerateRecordsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateRecordsResponse{}, err
	}
	return s.generate(ctx, req, payroll.GenerateFrom(), false)
}

// ReprocessRecords implements payroll.PayrollService. Existing records and
// approvals in scope are discarded and rebuilt from current attendance and
// configuration.
func (s *PayrollServiceImpl) ReprocessRecords(ctx context.Context, req payroll.GenerateRecordsRequest) (payroll.GenerateRecordsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateRecordsResponse{}, err
	}
	return s.generate(ctx, req, payroll.ReprocessFrom(), true)
}

// generate claims the period by moving it to processing and builds the
// records of the requested scope in one transaction. The period moves to
// sent_for_review once every eligible employee has a record; a department
// scoped run that leaves others uncovered returns the period to draft. Any
// failure rolls the records back and returns the period to draft.
func (s *PayrollServiceImpl) generate(ctx context.Context, req payroll.GenerateRecordsRequest, from []payroll.PeriodStatus, reprocess bool) (payroll.GenerateRecordsResponse, error) {
	now := s.clock.Now().UTC()

	if err := s.guardPaid(ctx, req.PeriodID, req.DepartmentID); err != nil {
		return payroll.GenerateRecordsResponse{}, err
	}

	period, err := s.payrollRepo.TransitionStatus(ctx, req.PeriodID, from, payroll.PeriodStatusProcessing, now)
	if err != nil {
		return payroll.GenerateRecordsResponse{}, s.claimError(ctx, req.PeriodID, err)
	}

	logger := s.logger.With("period_id", period.ID, "reprocess", reprocess)
	if req.DepartmentID != nil {
		logger = logger.With("department_id", *req.DepartmentID)
	}
	logger.InfoContext(ctx, "payroll generation started")

	var (
		records []payroll.Record
		final   payroll.Period
	)
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.buildRecords(ctx, period, req.DepartmentID)
		if err != nil {
			return err
		}

		uncovered, err := s.uncoveredEmployees(ctx, period.ID)
		if err != nil {
			return err
		}
		next := payroll.PeriodStatusSentForReview
		if len(uncovered) > 0 {
			next = payroll.PeriodStatusDraft
		}

		final, err = s.payrollRepo.TransitionStatus(ctx, period.ID,
			[]payroll.PeriodStatus{payroll.PeriodStatusProcessing}, next, now)
		if err != nil {
			return err
		}
		if len(uncovered) > 0 {
			logger.InfoContext(ctx, "payroll period awaiting remaining employees", "uncovered_count", len(uncovered))
		}

		return s.emit(ctx, period.ID, outbox.EventRecordsGenerated, outbox.RecordsGenerated{
			PeriodID:     period.ID,
			DepartmentID: req.DepartmentID,
			RecordCount:  len(records),
			Reprocessed:  reprocess,
			PeriodStatus: string(final.Status),
		}, now)
	})
	if err != nil {
		s.revert(ctx, period.ID, err)
		return payroll.GenerateRecordsResponse{}, err
	}

	logger.InfoContext(ctx, "payroll records generated", "record_count", len(records))
	return payroll.GenerateRecordsResponse{
		PeriodID:     final.ID,
		PeriodStatus: string(final.Status),
		RecordCount:  len(records),
		Records:      payroll.NewRecordResponses(records),
	}, nil
}

// claimError explains why the period could not be moved to processing.
func (s *PayrollServiceImpl) claimError(ctx context.Context, periodID string, err error) error {
	if !errors.Is(err, payroll.ErrInvalidPeriodState) {
		return err
	}
	current, getErr := s.payrollRepo.GetPeriod(ctx, periodID)
	if getErr == nil && current.Status == payroll.PeriodStatusProcessing {
		return payroll.ErrPeriodProcessing
	}
	return err
}

// uncoveredEmployees lists eligible employees that have no record in the period.
func (s *PayrollServiceImpl) uncoveredEmployees(ctx context.Context, periodID string) ([]string, error) {
	eligible, err := s.employeeRepo.ListActiveForPayroll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	records, err := s.payrollRepo.ListRecords(ctx, periodID, nil)
	if err != nil {
		return nil, err
	}

	covered := make(map[string]bool, len(records))
	for _, r := range records {
		covered[r.EmployeeID] = true
	}
	var missing []string
	for _, emp := range eligible {
		if !covered[emp.ID] {
			missing = append(missing, emp.ID)
		}
	}
	return missing, nil
}

// guardPaid refuses to touch a scope that already contains paid records.
func (s *PayrollServiceImpl) guardPaid(ctx context.Context, periodID string, departmentID *string) error {
	existing, err := s.payrollRepo.ListRecords(ctx, periodID, departmentID)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.Status == payroll.RecordStatusPaid {
			return payroll.ErrRecordsPaid.WithEmployee(r.EmployeeID)
		}
	}
	return nil
}

func (s *PayrollServiceImpl) buildRecords(ctx context.Context, period payroll.Period, departmentID *string) ([]payroll.Record, error) {
	if err := s.guardPaid(ctx, period.ID, departmentID); err != nil {
		return nil, err
	}

	if err := s.payrollRepo.DeleteApprovals(ctx, period.ID, departmentID); err != nil {
		return nil, err
	}
	if _, err := s.payrollRepo.DeleteRecords(ctx, period.ID, departmentID); err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.ListActiveForPayroll(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, payroll.ErrNoEligibleEmployees
	}

	adjustments, err := s.payrollRepo.ListAdjustmentTypes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustment types: %w", err)
	}

	computed := make([]payroll.Record, 0, len(employees))
	for _, emp := range employees {
		days, err := s.hours.SummarizeRange(ctx, emp.ID, period.StartDate, period.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize attendance for employee %s: %w", emp.ID, err)
		}

		record, err := s.engine.Compute(ComputeInput{
			Employee:    emp,
			Period:      period,
			Hours:       attendance.Total(days),
			Adjustments: adjustments,
		})
		if err != nil {
			return nil, err
		}
		name, code := emp.FullName, emp.EmployeeCode
		record.EmployeeName = &name
		record.EmployeeCode = &code
		computed = append(computed, record)
	}

	created, err := s.payrollRepo.CreateRecords(ctx, computed)
	if err != nil {
		return nil, err
	}
	for i := range created {
		created[i].EmployeeName = computed[i].EmployeeName
		created[i].EmployeeCode = computed[i].EmployeeCode
	}
	return created, nil
}

// revert is the compensating draft transition after a failed generation.
func (s *PayrollServiceImpl) revert(ctx context.Context, periodID string, cause error) {
	attrs := []any{"period_id", periodID, "error", cause}
	if appErr, ok := apperror.As(cause); ok {
		if appErr.EmployeeID != "" {
			attrs = append(attrs, "employee_id", appErr.EmployeeID)
		}
		if appErr.DepartmentID != "" {
			attrs = append(attrs, "department_id", appErr.DepartmentID)
		}
	}
	s.logger.ErrorContext(ctx, "payroll generation failed, reverting period to draft", attrs...)

	ctx = context.WithoutCancel(ctx)
	if _, err := s.payrollRepo.TransitionStatus(ctx, periodID,
		[]payroll.PeriodStatus{payroll.PeriodStatusProcessing}, payroll.PeriodStatusDraft, s.clock.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "failed to revert payroll period", "period_id", periodID, "error", err)
	}
}
