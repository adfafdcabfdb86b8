package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	approvalUniqueConstraint = "payroll_department_approvals_period_department_key"
	recordUniqueConstraint   = "payroll_records_period_employee_key"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

// ========== PERIODS ==========

const periodColumns = `id, name, start_date, end_date, status, created_by, generated_at, completed_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedBy,
		&p.GeneratedAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *payrollRepositoryImpl) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (name, start_date, end_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.Name, period.StartDate, period.EndDate, period.Status, period.CreatedBy,
	))
	if err != nil {
		return payroll.Period{}, classify(err, "failed to create payroll period")
	}
	return created, nil
}

func (r *payrollRepositoryImpl) GetPeriod(ctx context.Context, id string) (payroll.Period, error) {
	return r.getPeriod(ctx, id, "")
}

func (r *payrollRepositoryImpl) GetPeriodForUpdate(ctx context.Context, id string) (payroll.Period, error) {
	return r.getPeriod(ctx, id, " FOR UPDATE")
}

func (r *payrollRepositoryImpl) getPeriod(ctx context.Context, id string, lock string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1` + lock

	period, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, classify(err, "failed to get payroll period")
	}
	return period, nil
}

func (r *payrollRepositoryImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE ($1::text IS NULL OR status = $1::text)
		ORDER BY start_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := q.Query(ctx, query, status, limit, filter.Offset)
	if err != nil {
		return nil, classify(err, "failed to list payroll periods")
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, classify(err, "failed to scan payroll period")
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read payroll periods")
	}
	return periods, nil
}

func (r *payrollRepositoryImpl) UpdatePeriodDates(ctx context.Context, id string, name string, start, end time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET name = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	tag, err := q.Exec(ctx, query, id, name, start, end, payroll.PeriodStatusDraft)
	if err != nil {
		return classify(err, "failed to update payroll period")
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	return nil
}

func (r *payrollRepositoryImpl) DeletePeriod(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_periods WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return payroll.ErrPeriodHasRecords
		}
		return classify(err, "failed to delete payroll period")
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (r *payrollRepositoryImpl) TransitionStatus(ctx context.Context, id string, from []payroll.PeriodStatus, to payroll.PeriodStatus, at time.Time) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $3::text,
			generated_at = CASE WHEN $3::text = 'sent_for_review' THEN $4 ELSE generated_at END,
			completed_at = CASE WHEN $3::text = 'completed' THEN $4 ELSE completed_at END,
			updated_at = $4
		WHERE id = $1 AND status = ANY($2::text[])
		RETURNING ` + periodColumns

	fromStrings := make([]string, 0, len(from))
	for _, s := range from {
		if s.CanTransitionTo(to) {
			fromStrings = append(fromStrings, string(s))
		}
	}
	if len(fromStrings) == 0 {
		return payroll.Period{}, payroll.ErrInvalidPeriodState
	}

	period, err := scanPeriod(q.QueryRow(ctx, query, id, fromStrings, string(to), at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, r.missingOrConflict(ctx, id)
		}
		return payroll.Period{}, classify(err, "failed to transition payroll period")
	}
	return period, nil
}

func (r *payrollRepositoryImpl) missingOrConflict(ctx context.Context, id string) error {
	if _, err := r.GetPeriod(ctx, id); err != nil {
		return err
	}
	return payroll.ErrInvalidPeriodState
}

// ========== RECORDS ==========

func (r *payrollRepositoryImpl) CreateRecords(ctx context.Context, records []payroll.Record) ([]payroll.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			period_id, employee_id, department_id,
			days_present, days_complete, regular_minutes, late_minutes, overtime_minutes,
			base_salary, hourly_rate, standard_period_hours, base_salary_prorated,
			overtime_pay, late_deduction, gross_pay, total_deductions, total_benefits, net_pay,
			line_items, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		lineItems := rec.LineItems
		if lineItems == nil {
			lineItems = []payroll.LineItem{}
		}
		batch.Queue(query,
			rec.PeriodID, rec.EmployeeID, rec.DepartmentID,
			rec.DaysPresent, rec.DaysComplete, rec.RegularMinutes, rec.LateMinutes, rec.OvertimeMinutes,
			rec.BaseSalary, rec.HourlyRate, rec.StandardPeriodHours, rec.BaseSalaryProrated,
			rec.OvertimePay, rec.LateDeduction, rec.GrossPay, rec.TotalDeductions, rec.TotalBenefits, rec.NetPay,
			lineItems, rec.Status,
		)
	}

	results := q.SendBatch(ctx, batch)
	created := make([]payroll.Record, 0, len(records))
	for _, rec := range records {
		if err := results.QueryRow().Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			_ = results.Close()
			if isUniqueViolation(err, recordUniqueConstraint) {
				return nil, payroll.ErrRecordExists.WithEmployee(rec.EmployeeID)
			}
			return nil, classify(err, fmt.Sprintf("failed to create payroll record for employee %s", rec.EmployeeID))
		}
		created = append(created, rec)
	}
	if err := results.Close(); err != nil {
		return nil, classify(err, "failed to create payroll records")
	}
	return created, nil
}

const recordSelect = `
	SELECT r.id, r.period_id, r.employee_id, r.department_id,
		   r.days_present, r.days_complete, r.regular_minutes, r.late_minutes, r.overtime_minutes,
		   r.base_salary, r.hourly_rate, r.standard_period_hours, r.base_salary_prorated,
		   r.overtime_pay, r.late_deduction, r.gross_pay, r.total_deductions, r.total_benefits, r.net_pay,
		   r.line_items, r.status, r.paid_at, r.created_at, r.updated_at,
		   e.full_name, e.employee_code
	FROM payroll_records r
	LEFT JOIN employees e ON e.id = r.employee_id
`

func scanRecord(row pgx.Row) (payroll.Record, error) {
	var rec payroll.Record
	err := row.Scan(
		&rec.ID, &rec.PeriodID, &rec.EmployeeID, &rec.DepartmentID,
		&rec.DaysPresent, &rec.DaysComplete, &rec.RegularMinutes, &rec.LateMinutes, &rec.OvertimeMinutes,
		&rec.BaseSalary, &rec.HourlyRate, &rec.StandardPeriodHours, &rec.BaseSalaryProrated,
		&rec.OvertimePay, &rec.LateDeduction, &rec.GrossPay, &rec.TotalDeductions, &rec.TotalBenefits, &rec.NetPay,
		&rec.LineItems, &rec.Status, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	return rec, err
}

func (r *payrollRepositoryImpl) GetRecord(ctx context.Context, id string) (payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, recordSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Record{}, payroll.ErrRecordNotFound
		}
		return payroll.Record{}, classify(err, "failed to get payroll record")
	}
	return rec, nil
}

func (r *payrollRepositoryImpl) ListRecords(ctx context.Context, periodID string, departmentID *string) ([]payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := recordSelect + `
		WHERE r.period_id = $1 AND ($2::uuid IS NULL OR r.department_id = $2::uuid)
		ORDER BY r.employee_id
	`

	rows, err := q.Query(ctx, query, periodID, departmentID)
	if err != nil {
		return nil, classify(err, "failed to list payroll records")
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, classify(err, "failed to scan payroll record")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read payroll records")
	}
	return records, nil
}

func (r *payrollRepositoryImpl) CountRecords(ctx context.Context, periodID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_records WHERE period_id = $1`, periodID).Scan(&count); err != nil {
		return 0, classify(err, "failed to count payroll records")
	}
	return count, nil
}

func (r *payrollRepositoryImpl) DeleteRecords(ctx context.Context, periodID string, departmentID *string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM payroll_records
		WHERE period_id = $1 AND ($2::uuid IS NULL OR department_id = $2::uuid)
	`, periodID, departmentID)
	if err != nil {
		return 0, classify(err, "failed to delete payroll records")
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepositoryImpl) UpdateRecordStatus(ctx context.Context, filter payroll.RecordStatusFilter, from, to payroll.RecordStatus, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = $5::text,
			paid_at = CASE WHEN $5::text = 'paid' THEN $6 ELSE paid_at END,
			updated_at = $6
		WHERE period_id = $1
		  AND status = $4
		  AND ($2::uuid IS NULL OR department_id = $2::uuid)
		  AND ($3::uuid[] IS NULL OR id = ANY($3::uuid[]))
	`

	var ids []string
	if len(filter.RecordIDs) > 0 {
		ids = filter.RecordIDs
	}

	tag, err := q.Exec(ctx, query, filter.PeriodID, filter.DepartmentID, ids, string(from), string(to), at)
	if err != nil {
		return 0, classify(err, "failed to update payroll record status")
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepositoryImpl) ListRecordDepartments(ctx context.Context, periodID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT department_id::text FROM payroll_records WHERE period_id = $1 ORDER BY 1
	`, periodID)
	if err != nil {
		return nil, classify(err, "failed to list payroll departments")
	}
	departments, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify(err, "failed to read payroll departments")
	}
	return departments, nil
}

// ========== APPROVALS ==========

func (r *payrollRepositoryImpl) CreateApproval(ctx context.Context, approval payroll.DepartmentApproval) (payroll.DepartmentApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_department_approvals (period_id, department_id, approver_id, approved_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := q.QueryRow(ctx, query, approval.PeriodID, approval.DepartmentID, approval.ApproverID, approval.ApprovedAt).Scan(&approval.ID)
	if err != nil {
		if isUniqueViolation(err, approvalUniqueConstraint) {
			return payroll.DepartmentApproval{}, payroll.ErrApprovalExists
		}
		return payroll.DepartmentApproval{}, classify(err, "failed to create department approval")
	}
	return approval, nil
}

func (r *payrollRepositoryImpl) ListApprovals(ctx context.Context, periodID string) ([]payroll.DepartmentApproval, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, period_id, department_id, approver_id, approved_at
		FROM payroll_department_approvals
		WHERE period_id = $1
		ORDER BY approved_at
	`, periodID)
	if err != nil {
		return nil, classify(err, "failed to list department approvals")
	}
	defer rows.Close()

	var approvals []payroll.DepartmentApproval
	for rows.Next() {
		var a payroll.DepartmentApproval
		if err := rows.Scan(&a.ID, &a.PeriodID, &a.DepartmentID, &a.ApproverID, &a.ApprovedAt); err != nil {
			return nil, classify(err, "failed to scan department approval")
		}
		approvals = append(approvals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read department approvals")
	}
	return approvals, nil
}

func (r *payrollRepositoryImpl) DeleteApprovals(ctx context.Context, periodID string, departmentID *string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		DELETE FROM payroll_department_approvals
		WHERE period_id = $1 AND ($2::uuid IS NULL OR department_id = $2::uuid)
	`, periodID, departmentID)
	if err != nil {
		return classify(err, "failed to delete department approvals")
	}
	return nil
}

// ========== ADJUSTMENT TYPES ==========

const adjustmentColumns = `id, name, kind, fixed_amount, percentage, is_active, created_at, updated_at`

func scanAdjustment(row pgx.Row) (payroll.AdjustmentType, error) {
	var a payroll.AdjustmentType
	err := row.Scan(&a.ID, &a.Name, &a.Kind, &a.FixedAmount, &a.Percentage, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *payrollRepositoryImpl) CreateAdjustmentType(ctx context.Context, adjustment payroll.AdjustmentType) (payroll.AdjustmentType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_adjustment_types (name, kind, fixed_amount, percentage, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + adjustmentColumns

	created, err := scanAdjustment(q.QueryRow(ctx, query,
		adjustment.Name, adjustment.Kind, adjustment.FixedAmount, adjustment.Percentage, adjustment.IsActive,
	))
	if err != nil {
		return payroll.AdjustmentType{}, classify(err, "failed to create adjustment type")
	}
	return created, nil
}

func (r *payrollRepositoryImpl) GetAdjustmentType(ctx context.Context, id string) (payroll.AdjustmentType, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAdjustment(q.QueryRow(ctx, `SELECT `+adjustmentColumns+` FROM payroll_adjustment_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.AdjustmentType{}, payroll.ErrAdjustmentTypeNotFound
		}
		return payroll.AdjustmentType{}, classify(err, "failed to get adjustment type")
	}
	return a, nil
}

func (r *payrollRepositoryImpl) ListAdjustmentTypes(ctx context.Context, activeOnly bool) ([]payroll.AdjustmentType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + adjustmentColumns + `
		FROM payroll_adjustment_types
		WHERE ($1 = false OR is_active = true)
		ORDER BY kind, name, id
	`

	rows, err := q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, classify(err, "failed to list adjustment types")
	}
	defer rows.Close()

	var result []payroll.AdjustmentType
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, classify(err, "failed to scan adjustment type")
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read adjustment types")
	}
	return result, nil
}

func (r *payrollRepositoryImpl) DeactivateAdjustmentType(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payroll_adjustment_types SET is_active = false, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return classify(err, "failed to deactivate adjustment type")
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrAdjustmentTypeNotFound
	}
	return nil
}
