package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft         PeriodStatus = "draft"
	PeriodStatusProcessing    PeriodStatus = "processing"
	PeriodStatusSentForReview PeriodStatus = "sent_for_review"
	PeriodStatusCompleted     PeriodStatus = "completed"
)

var periodTransitions = map[PeriodStatus][]PeriodStatus{
	PeriodStatusDraft:         {PeriodStatusProcessing},
	PeriodStatusProcessing:    {PeriodStatusSentForReview, PeriodStatusDraft},
	PeriodStatusSentForReview: {PeriodStatusProcessing, PeriodStatusCompleted},
}

func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusProcessing, PeriodStatusSentForReview, PeriodStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
// processing→draft is the compensating transition after a failed generation.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	for _, allowed := range periodTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GenerateFrom lists the states from which records may be generated.
func GenerateFrom() []PeriodStatus {
	return []PeriodStatus{PeriodStatusDraft}
}

// ReprocessFrom lists the states from which records may be regenerated.
func ReprocessFrom() []PeriodStatus {
	return []PeriodStatus{PeriodStatusDraft, PeriodStatusSentForReview}
}

// PayableIn lists the period states in which processed records may be paid.
func PayableIn() []PeriodStatus {
	return []PeriodStatus{PeriodStatusSentForReview, PeriodStatusCompleted}
}

func ContainsStatus(list []PeriodStatus, s PeriodStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Period - payroll period over which attendance is aggregated into pay.
// StartDate and EndDate are inclusive calendar dates at UTC midnight.
type Period struct {
	ID          string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Status      PeriodStatus
	CreatedBy   string
	GeneratedAt *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecordStatus enum
type RecordStatus string

const (
	RecordStatusDraft     RecordStatus = "draft"
	RecordStatusProcessed RecordStatus = "processed"
	RecordStatusPaid      RecordStatus = "paid"
)

// Record - generated payroll result, one per (period, employee)
type Record struct {
	ID           string
	PeriodID     string
	EmployeeID   string
	DepartmentID string

	DaysPresent     int
	DaysComplete    int
	RegularMinutes  int
	LateMinutes     int
	OvertimeMinutes int

	BaseSalary          decimal.Decimal
	HourlyRate          decimal.Decimal
	StandardPeriodHours decimal.Decimal
	BaseSalaryProrated  decimal.Decimal
	OvertimePay         decimal.Decimal
	LateDeduction       decimal.Decimal
	GrossPay            decimal.Decimal
	TotalDeductions     decimal.Decimal
	TotalBenefits       decimal.Decimal
	NetPay              decimal.Decimal
	LineItems           []LineItem

	Status    RecordStatus
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// LineItem is one computed deduction or benefit amount kept on the record for audit.
type LineItem struct {
	AdjustmentTypeID string          `json:"adjustment_type_id"`
	Name             string          `json:"name"`
	Kind             AdjustmentKind  `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
}

// AdjustmentKind enum
type AdjustmentKind string

const (
	AdjustmentKindDeduction AdjustmentKind = "deduction"
	AdjustmentKindBenefit   AdjustmentKind = "benefit"
)

// AdjustmentType - deduction or benefit configuration. Exactly one of
// FixedAmount and Percentage is set; Percentage is in percent of gross pay.
type AdjustmentType struct {
	ID          string
	Name        string
	Kind        AdjustmentKind
	FixedAmount *decimal.Decimal
	Percentage  *decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentApproval - per-department sign-off of a period
type DepartmentApproval struct {
	ID           string
	PeriodID     string
	DepartmentID string
	ApproverID   string
	ApprovedAt   time.Time
}

// Settings - payroll computation parameters
type Settings struct {
	OvertimeMultiplier decimal.Decimal
	StandardDailyHours decimal.Decimal
	WorkingWeekdays    []time.Weekday
	// CurrencyScale is the number of minor-unit digits monetary fields are rounded to.
	CurrencyScale int32
}

func DefaultSettings() Settings {
	return Settings{
		OvertimeMultiplier: decimal.RequireFromString("1.25"),
		StandardDailyHours: decimal.NewFromInt(9),
		WorkingWeekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		CurrencyScale: 2,
	}
}

// WorkingDays counts the configured working weekdays in [start, end].
func (s Settings) WorkingDays(start, end time.Time) int {
	working := make(map[time.Weekday]bool, len(s.WorkingWeekdays))
	for _, d := range s.WorkingWeekdays {
		working[d] = true
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if working[d.Weekday()] {
			days++
		}
	}
	return days
}

// StandardPeriodHours is the number of contracted hours in [start, end].
func (s Settings) StandardPeriodHours(start, end time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(s.WorkingDays(start, end))).Mul(s.StandardDailyHours)
}
