package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/google/uuid"
)

type payrollRepository struct {
	s *Store
}

// ========== PERIODS ==========

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	now := time.Now().UTC()
	period.ID = uuid.NewString()
	if period.Status == "" {
		period.Status = payroll.PeriodStatusDraft
	}
	period.CreatedAt = now
	period.UpdatedAt = now
	r.s.periods[period.ID] = period
	return period, nil
}

func (r *payrollRepository) GetPeriod(_ context.Context, id string) (payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	period, ok := r.s.periods[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return period, nil
}

// GetPeriodForUpdate needs no row lock here since transactions are serialized.
func (r *payrollRepository) GetPeriodForUpdate(ctx context.Context, id string) (payroll.Period, error) {
	return r.GetPeriod(ctx, id)
}

func (r *payrollRepository) ListPeriods(_ context.Context, filter payroll.PeriodFilter) ([]payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []payroll.Period
	for _, p := range r.s.periods {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.After(result[j].StartDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if filter.Offset >= len(result) {
		return nil, nil
	}
	result = result[filter.Offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *payrollRepository) UpdatePeriodDates(ctx context.Context, id string, name string, start, end time.Time) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	period, ok := r.s.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if period.Status != payroll.PeriodStatusDraft {
		return payroll.ErrInvalidPeriodState
	}
	period.Name = name
	period.StartDate = start
	period.EndDate = end
	period.UpdatedAt = time.Now().UTC()
	r.s.periods[id] = period
	return nil
}

func (r *payrollRepository) DeletePeriod(ctx context.Context, id string) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	if _, ok := r.s.periods[id]; !ok {
		return payroll.ErrPeriodNotFound
	}
	for _, rec := range r.s.records {
		if rec.PeriodID == id {
			return payroll.ErrPeriodHasRecords
		}
	}
	delete(r.s.periods, id)
	return nil
}

func (r *payrollRepository) TransitionStatus(ctx context.Context, id string, from []payroll.PeriodStatus, to payroll.PeriodStatus, at time.Time) (payroll.Period, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	period, ok := r.s.periods[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	if !payroll.ContainsStatus(from, period.Status) || !period.Status.CanTransitionTo(to) {
		return payroll.Period{}, payroll.ErrInvalidPeriodState
	}

	period.Status = to
	period.UpdatedAt = at
	switch to {
	case payroll.PeriodStatusSentForReview:
		period.GeneratedAt = &at
	case payroll.PeriodStatusCompleted:
		period.CompletedAt = &at
	}
	r.s.periods[id] = period
	return period, nil
}

// ========== RECORDS ==========

func (r *payrollRepository) CreateRecords(ctx context.Context, records []payroll.Record) ([]payroll.Record, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	existing := make(map[string]bool)
	for _, rec := range r.s.records {
		existing[rec.PeriodID+"/"+rec.EmployeeID] = true
	}

	now := time.Now().UTC()
	created := make([]payroll.Record, 0, len(records))
	for _, rec := range records {
		key := rec.PeriodID + "/" + rec.EmployeeID
		if existing[key] {
			return nil, payroll.ErrRecordExists.WithEmployee(rec.EmployeeID)
		}
		existing[key] = true

		rec.ID = uuid.NewString()
		rec.CreatedAt = now
		rec.UpdatedAt = now
		rec.LineItems = slices.Clone(rec.LineItems)
		created = append(created, rec)
	}
	for _, rec := range created {
		r.s.records[rec.ID] = rec
	}
	return created, nil
}

func (r *payrollRepository) GetRecord(_ context.Context, id string) (payroll.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.records[id]
	if !ok {
		return payroll.Record{}, payroll.ErrRecordNotFound
	}
	return r.withEmployee(rec), nil
}

func (r *payrollRepository) ListRecords(_ context.Context, periodID string, departmentID *string) ([]payroll.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []payroll.Record
	for _, rec := range r.s.records {
		if matchRecord(rec, periodID, departmentID) {
			result = append(result, r.withEmployee(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

func (r *payrollRepository) withEmployee(rec payroll.Record) payroll.Record {
	if emp, ok := r.s.employees[rec.EmployeeID]; ok {
		name, code := emp.FullName, emp.EmployeeCode
		rec.EmployeeName = &name
		rec.EmployeeCode = &code
	}
	return rec
}

func matchRecord(rec payroll.Record, periodID string, departmentID *string) bool {
	if rec.PeriodID != periodID {
		return false
	}
	return departmentID == nil || rec.DepartmentID == *departmentID
}

func (r *payrollRepository) CountRecords(_ context.Context, periodID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, rec := range r.s.records {
		if rec.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

func (r *payrollRepository) DeleteRecords(ctx context.Context, periodID string, departmentID *string) (int64, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	var deleted int64
	for id, rec := range r.s.records {
		if matchRecord(rec, periodID, departmentID) {
			delete(r.s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *payrollRepository) UpdateRecordStatus(ctx context.Context, filter payroll.RecordStatusFilter, from, to payroll.RecordStatus, at time.Time) (int64, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	var ids map[string]bool
	if len(filter.RecordIDs) > 0 {
		ids = make(map[string]bool, len(filter.RecordIDs))
		for _, id := range filter.RecordIDs {
			ids[id] = true
		}
	}

	var updated int64
	for id, rec := range r.s.records {
		if !matchRecord(rec, filter.PeriodID, filter.DepartmentID) || rec.Status != from {
			continue
		}
		if ids != nil && !ids[id] {
			continue
		}
		rec.Status = to
		rec.UpdatedAt = at
		if to == payroll.RecordStatusPaid {
			paidAt := at
			rec.PaidAt = &paidAt
		}
		r.s.records[id] = rec
		updated++
	}
	return updated, nil
}

func (r *payrollRepository) ListRecordDepartments(_ context.Context, periodID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, rec := range r.s.records {
		if rec.PeriodID == periodID && !seen[rec.DepartmentID] {
			seen[rec.DepartmentID] = true
			result = append(result, rec.DepartmentID)
		}
	}
	sort.Strings(result)
	return result, nil
}

// ========== APPROVALS ==========

func (r *payrollRepository) CreateApproval(ctx context.Context, approval payroll.DepartmentApproval) (payroll.DepartmentApproval, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	key := approvalKey{periodID: approval.PeriodID, departmentID: approval.DepartmentID}
	if _, exists := r.s.approvalIndex[key]; exists {
		return payroll.DepartmentApproval{}, payroll.ErrApprovalExists
	}
	approval.ID = uuid.NewString()
	r.s.approvals[approval.ID] = approval
	r.s.approvalIndex[key] = approval.ID
	return approval, nil
}

func (r *payrollRepository) ListApprovals(_ context.Context, periodID string) ([]payroll.DepartmentApproval, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []payroll.DepartmentApproval
	for _, a := range r.s.approvals {
		if a.PeriodID == periodID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ApprovedAt.Before(result[j].ApprovedAt) })
	return result, nil
}

func (r *payrollRepository) DeleteApprovals(ctx context.Context, periodID string, departmentID *string) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	for id, a := range r.s.approvals {
		if a.PeriodID != periodID || (departmentID != nil && a.DepartmentID != *departmentID) {
			continue
		}
		delete(r.s.approvals, id)
		delete(r.s.approvalIndex, approvalKey{periodID: a.PeriodID, departmentID: a.DepartmentID})
	}
	return nil
}

// ========== ADJUSTMENT TYPES ==========

func (r *payrollRepository) CreateAdjustmentType(ctx context.Context, adjustment payroll.AdjustmentType) (payroll.AdjustmentType, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	now := time.Now().UTC()
	adjustment.ID = uuid.NewString()
	adjustment.CreatedAt = now
	adjustment.UpdatedAt = now
	r.s.adjustments[adjustment.ID] = adjustment
	return adjustment, nil
}

func (r *payrollRepository) GetAdjustmentType(_ context.Context, id string) (payroll.AdjustmentType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.adjustments[id]
	if !ok {
		return payroll.AdjustmentType{}, payroll.ErrAdjustmentTypeNotFound
	}
	return a, nil
}

func (r *payrollRepository) ListAdjustmentTypes(_ context.Context, activeOnly bool) ([]payroll.AdjustmentType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []payroll.AdjustmentType
	for _, a := range r.s.adjustments {
		if activeOnly && !a.IsActive {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *payrollRepository) DeactivateAdjustmentType(ctx context.Context, id string, at time.Time) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	a, ok := r.s.adjustments[id]
	if !ok {
		return payroll.ErrAdjustmentTypeNotFound
	}
	a.IsActive = false
	a.UpdatedAt = at
	r.s.adjustments[id] = a
	return nil
}
