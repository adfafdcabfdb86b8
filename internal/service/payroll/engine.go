package payroll

import (
	"sort"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// Engine turns aggregated attendance into a payroll record. It is pure: the
// same input always yields the same monetary fields.
type Engine struct {
	settings payroll.Settings
}

func NewEngine(settings payroll.Settings) *Engine {
	return &Engine{settings: settings}
}

// ComputeInput is everything one employee's record is derived from.
type ComputeInput struct {
	Employee    employee.Employee
	Period      payroll.Period
	Hours       attendance.HourTotals
	Adjustments []payroll.AdjustmentType
}

// Compute derives a draft record.
//
//	baseSalaryProrated = baseSalary × regular / standard  (regular capped at standard)
//	overtimePay        = hourlyRate × multiplier × overtime hours
//	lateDeduction      = hourlyRate × late hours
//	grossPay           = prorated + overtime − late, never below zero
//	netPay             = gross + benefits − deductions
//
// Every monetary field is rounded half away from zero to CurrencyScale.
func (e *Engine) Compute(in ComputeInput) (payroll.Record, error) {
	emp := in.Employee
	if !emp.HasCompensation() {
		return payroll.Record{}, payroll.ErrMissingCompensation.WithEmployee(emp.ID).WithDepartment(emp.DepartmentID)
	}

	scale := e.settings.CurrencyScale
	standardHours := e.settings.StandardPeriodHours(in.Period.StartDate, in.Period.EndDate)
	if !standardHours.IsPositive() {
		return payroll.Record{}, payroll.ErrNoWorkingDays.WithEmployee(emp.ID)
	}
	standardMinutes := standardHours.Mul(sixty)

	base := *emp.BaseSalary
	hourlyRate := base.DivRound(standardHours, 6)
	if emp.HourlyRate != nil && emp.HourlyRate.IsPositive() {
		hourlyRate = *emp.HourlyRate
	}

	regular := decimal.NewFromInt(int64(in.Hours.RegularMinutes))
	if regular.GreaterThan(standardMinutes) {
		regular = standardMinutes
	}
	overtime := decimal.NewFromInt(int64(in.Hours.OvertimeMinutes))
	late := decimal.NewFromInt(int64(in.Hours.LateMinutes))

	prorated := base.Mul(regular).DivRound(standardMinutes, scale)
	overtimePay := hourlyRate.Mul(e.settings.OvertimeMultiplier).Mul(overtime).DivRound(sixty, scale)
	lateDeduction := hourlyRate.Mul(late).DivRound(sixty, scale)

	// Lateness is charged against gross even when it exceeds the earnings
	// of an incomplete period, so gross may be negative.
	gross := prorated.Add(overtimePay).Sub(lateDeduction)

	lineItems, deductions, benefits := e.adjust(gross, in.Adjustments)

	return payroll.Record{
		PeriodID:            in.Period.ID,
		EmployeeID:          emp.ID,
		DepartmentID:        emp.DepartmentID,
		DaysPresent:         in.Hours.DaysPresent,
		DaysComplete:        in.Hours.DaysComplete,
		RegularMinutes:      in.Hours.RegularMinutes,
		LateMinutes:         in.Hours.LateMinutes,
		OvertimeMinutes:     in.Hours.OvertimeMinutes,
		BaseSalary:          base,
		HourlyRate:          hourlyRate,
		StandardPeriodHours: standardHours,
		BaseSalaryProrated:  prorated,
		OvertimePay:         overtimePay,
		LateDeduction:       lateDeduction,
		GrossPay:            gross,
		TotalDeductions:     deductions,
		TotalBenefits:       benefits,
		NetPay:              gross.Add(benefits).Sub(deductions),
		LineItems:           lineItems,
		Status:              payroll.RecordStatusDraft,
	}, nil
}

// adjust evaluates active adjustment types in a stable order.
func (e *Engine) adjust(gross decimal.Decimal, adjustments []payroll.AdjustmentType) ([]payroll.LineItem, decimal.Decimal, decimal.Decimal) {
	active := make([]payroll.AdjustmentType, 0, len(adjustments))
	for _, a := range adjustments {
		if a.IsActive {
			active = append(active, a)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	deductions, benefits := decimal.Zero, decimal.Zero
	items := make([]payroll.LineItem, 0, len(active))
	for _, a := range active {
		var amount decimal.Decimal
		switch {
		case a.FixedAmount != nil:
			amount = a.FixedAmount.Round(e.settings.CurrencyScale)
		case a.Percentage != nil:
			amount = gross.Mul(*a.Percentage).DivRound(hundred, e.settings.CurrencyScale)
		default:
			continue
		}

		switch a.Kind {
		case payroll.AdjustmentKindDeduction:
			deductions = deductions.Add(amount)
		case payroll.AdjustmentKindBenefit:
			benefits = benefits.Add(amount)
		default:
			continue
		}
		items = append(items, payroll.LineItem{
			AdjustmentTypeID: a.ID,
			Name:             a.Name,
			Kind:             a.Kind,
			Amount:           amount,
		})
	}
	return items, deductions, benefits
}
