package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// march2025 has 21 weekdays, so 189 standard hours at 9 hours a day.
var march2025 = payroll.Period{
	ID:        "period-1",
	StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	Status:    payroll.PeriodStatusProcessing,
}

func salaried(base string) employee.Employee {
	return employee.Employee{
		ID:               "emp-1",
		DepartmentID:     "dept-1",
		EmploymentStatus: employee.EmploymentStatusActive,
		BaseSalary:       decPtr(base),
	}
}

// ===== COMPUTE TESTS =====

func TestEngine_Compute_WorkedExample(t *testing.T) {
	engine := NewEngine(payroll.DefaultSettings())

	record, err := engine.Compute(ComputeInput{
		Employee: salaried("18900000"),
		Period:   march2025,
		Hours: attendance.HourTotals{
			RegularMinutes:  9000,
			OvertimeMinutes: 120,
			LateMinutes:     30,
			DaysPresent:     17,
			DaysComplete:    16,
		},
		Adjustments: []payroll.AdjustmentType{
			{ID: "adj-bpjs", Name: "BPJS", Kind: payroll.AdjustmentKindDeduction, Percentage: decPtr("2"), IsActive: true},
			{ID: "adj-meal", Name: "Meal allowance", Kind: payroll.AdjustmentKindBenefit, FixedAmount: decPtr("500000"), IsActive: true},
			{ID: "adj-old", Name: "Retired", Kind: payroll.AdjustmentKindDeduction, FixedAmount: decPtr("1000"), IsActive: false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "189.00", record.StandardPeriodHours.StringFixed(2))
	assert.Equal(t, "100000.00", record.HourlyRate.StringFixed(2))
	assert.Equal(t, "15000000.00", record.BaseSalaryProrated.StringFixed(2))
	assert.Equal(t, "250000.00", record.OvertimePay.StringFixed(2))
	assert.Equal(t, "50000.00", record.LateDeduction.StringFixed(2))
	assert.Equal(t, "15200000.00", record.GrossPay.StringFixed(2))
	assert.Equal(t, "304000.00", record.TotalDeductions.StringFixed(2))
	assert.Equal(t, "500000.00", record.TotalBenefits.StringFixed(2))
	assert.Equal(t, "15396000.00", record.NetPay.StringFixed(2))

	assert.Equal(t, payroll.RecordStatusDraft, record.Status)
	assert.Equal(t, "period-1", record.PeriodID)
	assert.Equal(t, "dept-1", record.DepartmentID)
	assert.Equal(t, 17, record.DaysPresent)
	assert.Equal(t, 16, record.DaysComplete)

	require.Len(t, record.LineItems, 2)
	assert.Equal(t, "adj-bpjs", record.LineItems[0].AdjustmentTypeID)
	assert.Equal(t, "adj-meal", record.LineItems[1].AdjustmentTypeID)
}

func TestEngine_Compute_NetEqualsGrossPlusBenefitsMinusDeductions(t *testing.T) {
	engine := NewEngine(payroll.DefaultSettings())

	tests := []struct {
		name  string
		hours attendance.HourTotals
	}{
		{name: "no attendance", hours: attendance.HourTotals{}},
		{name: "partial month", hours: attendance.HourTotals{RegularMinutes: 4321, LateMinutes: 17}},
		{name: "late exceeds earnings", hours: attendance.HourTotals{RegularMinutes: 10, LateMinutes: 600}},
		{name: "heavy overtime", hours: attendance.HourTotals{RegularMinutes: 11340, OvertimeMinutes: 1999}},
	}

	adjustments := []payroll.AdjustmentType{
		{ID: "a", Kind: payroll.AdjustmentKindDeduction, Percentage: decPtr("3.333"), IsActive: true},
		{ID: "b", Kind: payroll.AdjustmentKindBenefit, FixedAmount: decPtr("12345.678"), IsActive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := engine.Compute(ComputeInput{
				Employee:    salaried("7333333"),
				Period:      march2025,
				Hours:       tt.hours,
				Adjustments: adjustments,
			})
			require.NoError(t, err)

			gross := record.BaseSalaryProrated.Add(record.OvertimePay).Sub(record.LateDeduction)
			assert.True(t, gross.Equal(record.GrossPay), "gross %s != %s", record.GrossPay, gross)
			expected := record.GrossPay.Add(record.TotalBenefits).Sub(record.TotalDeductions)
			assert.True(t, expected.Equal(record.NetPay), "net %s != %s", record.NetPay, expected)
			assert.LessOrEqual(t, -record.NetPay.Exponent(), int32(2))
		})
	}
}

func TestEngine_Compute_LatenessWithoutRegularHours(t *testing.T) {
	engine := NewEngine(payroll.DefaultSettings())

	record, err := engine.Compute(ComputeInput{
		Employee: salaried("18900000"),
		Period:   march2025,
		Hours:    attendance.HourTotals{LateMinutes: 120, DaysPresent: 1},
	})
	require.NoError(t, err)

	assert.True(t, record.BaseSalaryProrated.IsZero())
	assert.Equal(t, "200000.00", record.LateDeduction.StringFixed(2))
	assert.Equal(t, "-200000.00", record.GrossPay.StringFixed(2))
	assert.Equal(t, "-200000.00", record.NetPay.StringFixed(2))
}

func TestEngine_Compute_MonotonicInAttendance(t *testing.T) {
	engine := NewEngine(payroll.DefaultSettings())
	emp := salaried("18900000")

	compute := func(h attendance.HourTotals) payroll.Record {
		r, err := engine.Compute(ComputeInput{Employee: emp, Period: march2025, Hours: h})
		require.NoError(t, err)
		return r
	}

	base := compute(attendance.HourTotals{RegularMinutes: 6000, OvertimeMinutes: 60, LateMinutes: 30})
	moreRegular := compute(attendance.HourTotals{RegularMinutes: 6600, OvertimeMinutes: 60, LateMinutes: 30})
	moreOvertime := compute(attendance.HourTotals{RegularMinutes: 6000, OvertimeMinutes: 180, LateMinutes: 30})
	moreLate := compute(attendance.HourTotals{RegularMinutes: 6000, OvertimeMinutes: 60, LateMinutes: 90})

	assert.True(t, moreRegular.GrossPay.GreaterThan(base.GrossPay))
	assert.True(t, moreOvertime.GrossPay.GreaterThan(base.GrossPay))
	assert.True(t, moreLate.GrossPay.LessThan(base.GrossPay))
}

func TestEngine_Compute_CapsRegularAtStandardHours(t *testing.T) {
	engine := NewEngine(payroll.DefaultSettings())

	record, err := engine.Compute(ComputeInput{
		Employee: salaried("18900000"),
		Period:   march2025,
		Hours:    attendance.HourTotals{RegularMinutes: 20000},
	})
	require.NoError(t, err)

	assert.Equal(t, "18900000.00", record.BaseSalaryProrated.StringFixed(2))
	assert.Equal(t, 20000, record.RegularMinutes)
}

func TestEngine_Compute_HourlyRateOverride(t *testing.T) {
	engine := NewEngine(payroll.DefaultSettings())
	emp := salaried("18900000")
	emp.HourlyRate = decPtr("80000")

	record, err := engine.Compute(ComputeInput{
		Employee: emp,
		Period:   march2025,
		Hours:    attendance.HourTotals{OvertimeMinutes: 60, LateMinutes: 60},
	})
	require.NoError(t, err)

	assert.Equal(t, "80000.00", record.HourlyRate.StringFixed(2))
	assert.Equal(t, "100000.00", record.OvertimePay.StringFixed(2))
	assert.Equal(t, "80000.00", record.LateDeduction.StringFixed(2))
	assert.Equal(t, "20000.00", record.GrossPay.StringFixed(2))
}

func TestEngine_Compute_ConfigurationErrors(t *testing.T) {
	t.Run("missing base salary", func(t *testing.T) {
		engine := NewEngine(payroll.DefaultSettings())
		emp := salaried("0")
		emp.BaseSalary = nil

		_, err := engine.Compute(ComputeInput{Employee: emp, Period: march2025})
		require.ErrorIs(t, err, payroll.ErrMissingCompensation)

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindConfigurationMissing, appErr.Kind)
		assert.Equal(t, "emp-1", appErr.EmployeeID)
		assert.Equal(t, "dept-1", appErr.DepartmentID)
	})

	t.Run("no working days", func(t *testing.T) {
		settings := payroll.DefaultSettings()
		settings.WorkingWeekdays = []time.Weekday{time.Sunday}
		engine := NewEngine(settings)

		weekday := payroll.Period{
			StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		}
		_, err := engine.Compute(ComputeInput{Employee: salaried("1000000"), Period: weekday})
		assert.ErrorIs(t, err, payroll.ErrNoWorkingDays)
	})
}
