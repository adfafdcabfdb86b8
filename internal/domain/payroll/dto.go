package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	CreatedBy string `json:"-"`
}

func (r *CreatePeriodRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, validateDateRange(r.StartDate, r.EndDate)...)
	return errs.OrNil()
}

// Dates returns the parsed range. Call Validate first.
func (r *CreatePeriodRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type UpdatePeriodRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

func (r *UpdatePeriodRequest) Validate() error {
	errs := validator.Struct(r)

	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		}
	}

	return errs.OrNil()
}

func validateDateRange(startStr, endStr string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(startStr)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(endStr)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	return errs
}

type PeriodResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:          p.ID,
		Name:        p.Name,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		Status:      string(p.Status),
		CreatedBy:   p.CreatedBy,
		GeneratedAt: p.GeneratedAt,
		CompletedAt: p.CompletedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ========== GENERATION DTOs ==========

type GenerateRecordsRequest struct {
	PeriodID     string  `json:"-"`
	DepartmentID *string `json:"department_id,omitempty" validate:"omitempty,min=1"`
}

func (r *GenerateRecordsRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{Field: "period_id", Message: "period_id is required"})
	}
	return errs.OrNil()
}

type GenerateRecordsResponse struct {
	PeriodID     string           `json:"period_id"`
	PeriodStatus string           `json:"period_status"`
	RecordCount  int              `json:"record_count"`
	Records      []RecordResponse `json:"records"`
}

type RecordResponse struct {
	ID                  string          `json:"id"`
	PeriodID            string          `json:"period_id"`
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        string          `json:"employee_name,omitempty"`
	EmployeeCode        string          `json:"employee_code,omitempty"`
	DepartmentID        string          `json:"department_id"`
	DaysPresent         int             `json:"days_present"`
	DaysComplete        int             `json:"days_complete"`
	RegularMinutes      int             `json:"regular_minutes"`
	LateMinutes         int             `json:"late_minutes"`
	OvertimeMinutes     int             `json:"overtime_minutes"`
	BaseSalary          decimal.Decimal `json:"base_salary"`
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	StandardPeriodHours decimal.Decimal `json:"standard_period_hours"`
	BaseSalaryProrated  decimal.Decimal `json:"base_salary_prorated"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	LateDeduction       decimal.Decimal `json:"late_deduction"`
	GrossPay            decimal.Decimal `json:"gross_pay"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`
	TotalBenefits       decimal.Decimal `json:"total_benefits"`
	NetPay              decimal.Decimal `json:"net_pay"`
	LineItems           []LineItem      `json:"line_items"`
	Status              string          `json:"status"`
	PaidAt              *string         `json:"paid_at,omitempty"`
}

func NewRecordResponse(r Record) RecordResponse {
	var paidAt *string
	if r.PaidAt != nil {
		str := r.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}

	employeeName := ""
	employeeCode := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		employeeCode = *r.EmployeeCode
	}

	lineItems := r.LineItems
	if lineItems == nil {
		lineItems = []LineItem{}
	}

	return RecordResponse{
		ID:                  r.ID,
		PeriodID:            r.PeriodID,
		EmployeeID:          r.EmployeeID,
		EmployeeName:        employeeName,
		EmployeeCode:        employeeCode,
		DepartmentID:        r.DepartmentID,
		DaysPresent:         r.DaysPresent,
		DaysComplete:        r.DaysComplete,
		RegularMinutes:      r.RegularMinutes,
		LateMinutes:         r.LateMinutes,
		OvertimeMinutes:     r.OvertimeMinutes,
		BaseSalary:          r.BaseSalary,
		HourlyRate:          r.HourlyRate,
		StandardPeriodHours: r.StandardPeriodHours,
		BaseSalaryProrated:  r.BaseSalaryProrated,
		OvertimePay:         r.OvertimePay,
		LateDeduction:       r.LateDeduction,
		GrossPay:            r.GrossPay,
		TotalDeductions:     r.TotalDeductions,
		TotalBenefits:       r.TotalBenefits,
		NetPay:              r.NetPay,
		LineItems:           lineItems,
		Status:              string(r.Status),
		PaidAt:              paidAt,
	}
}

func NewRecordResponses(records []Record) []RecordResponse {
	result := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, NewRecordResponse(r))
	}
	return result
}

// ========== APPROVAL DTOs ==========

type ApproveDepartmentRequest struct {
	PeriodID     string `json:"-"`
	DepartmentID string `json:"-"`
	ApproverID   string `json:"-"`
}

func (r *ApproveDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{Field: "period_id", Message: "period_id is required"})
	}
	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{Field: "department_id", Message: "department_id is required"})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{Field: "approver_id", Message: "approver_id is required"})
	}

	return errs.OrNil()
}

type ApprovalResponse struct {
	ID           string    `json:"id"`
	PeriodID     string    `json:"period_id"`
	DepartmentID string    `json:"department_id"`
	ApproverID   string    `json:"approver_id"`
	ApprovedAt   time.Time `json:"approved_at"`
}

func NewApprovalResponse(a DepartmentApproval) ApprovalResponse {
	return ApprovalResponse{
		ID:           a.ID,
		PeriodID:     a.PeriodID,
		DepartmentID: a.DepartmentID,
		ApproverID:   a.ApproverID,
		ApprovedAt:   a.ApprovedAt,
	}
}

type ApproveDepartmentResponse struct {
	Approval        ApprovalResponse `json:"approval"`
	ProcessedCount  int64            `json:"processed_count"`
	PeriodStatus    string           `json:"period_status"`
	PeriodCompleted bool             `json:"period_completed"`
}

type ListApprovalsResponse struct {
	PeriodID           string             `json:"period_id"`
	Approvals          []ApprovalResponse `json:"approvals"`
	PendingDepartments []string           `json:"pending_departments"`
}

// ========== PAYMENT DTOs ==========

type MarkPaidRequest struct {
	PeriodID     string   `json:"-"`
	DepartmentID *string  `json:"department_id,omitempty" validate:"omitempty,min=1"`
	RecordIDs    []string `json:"record_ids,omitempty" validate:"omitempty,max=1000,dive,required"`
}

func (r *MarkPaidRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.PeriodID) {
		errs = append(errs, validator.ValidationError{Field: "period_id", Message: "period_id is required"})
	}
	return errs.OrNil()
}

type MarkPaidResponse struct {
	PeriodID     string `json:"period_id"`
	UpdatedCount int64  `json:"updated_count"`
}

// ========== ADJUSTMENT TYPE DTOs ==========

type CreateAdjustmentTypeRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Kind        string           `json:"kind" validate:"required,oneof=deduction benefit"`
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
}

func (r *CreateAdjustmentTypeRequest) Validate() error {
	errs := validator.Struct(r)

	switch {
	case r.FixedAmount == nil && r.Percentage == nil,
		r.FixedAmount != nil && r.Percentage != nil:
		errs = append(errs, validator.ValidationError{Field: "fixed_amount", Message: "exactly one of fixed_amount or percentage must be set"})
	case r.FixedAmount != nil && !validator.IsNonNegative(*r.FixedAmount):
		errs = append(errs, validator.ValidationError{Field: "fixed_amount", Message: "fixed_amount must be non-negative"})
	case r.Percentage != nil && (!validator.IsNonNegative(*r.Percentage) || r.Percentage.GreaterThan(decimal.NewFromInt(100))):
		errs = append(errs, validator.ValidationError{Field: "percentage", Message: "percentage must be between 0 and 100"})
	}

	return errs.OrNil()
}

type AdjustmentTypeResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewAdjustmentTypeResponse(a AdjustmentType) AdjustmentTypeResponse {
	return AdjustmentTypeResponse{
		ID:          a.ID,
		Name:        a.Name,
		Kind:        string(a.Kind),
		FixedAmount: a.FixedAmount,
		Percentage:  a.Percentage,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
	}
}

// ========== OVERTIME LEAVE DTOs ==========

type OvertimeLeaveResponse struct {
	PeriodID          string          `json:"period_id"`
	EmployeeID        string          `json:"employee_id"`
	OvertimeMinutes   int             `json:"overtime_minutes"`
	OvertimeHours     decimal.Decimal `json:"overtime_hours"`
	EligibleLeaveDays decimal.Decimal `json:"eligible_leave_days"`
}
