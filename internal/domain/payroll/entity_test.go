package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodStatus_Transitions(t *testing.T) {
	tests := []struct {
		from PeriodStatus
		to   PeriodStatus
		want bool
	}{
		{PeriodStatusDraft, PeriodStatusProcessing, true},
		{PeriodStatusDraft, PeriodStatusCompleted, false},
		{PeriodStatusProcessing, PeriodStatusProcessing, false},
		{PeriodStatusProcessing, PeriodStatusSentForReview, true},
		{PeriodStatusProcessing, PeriodStatusDraft, true},
		{PeriodStatusSentForReview, PeriodStatusCompleted, true},
		{PeriodStatusSentForReview, PeriodStatusProcessing, true},
		{PeriodStatusSentForReview, PeriodStatusDraft, false},
		{PeriodStatusCompleted, PeriodStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPeriodStatus_Gates(t *testing.T) {
	assert.True(t, ContainsStatus(GenerateFrom(), PeriodStatusDraft))
	assert.False(t, ContainsStatus(GenerateFrom(), PeriodStatusSentForReview))
	assert.True(t, ContainsStatus(ReprocessFrom(), PeriodStatusSentForReview))
	assert.False(t, ContainsStatus(ReprocessFrom(), PeriodStatusCompleted))
	assert.False(t, ContainsStatus(PayableIn(), PeriodStatusDraft))
	assert.True(t, ContainsStatus(PayableIn(), PeriodStatusCompleted))
}

func TestSettings_StandardPeriodHours(t *testing.T) {
	s := DefaultSettings()
	// March 2025: 21 weekdays
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 21, s.WorkingDays(start, end))
	assert.True(t, decimal.NewFromInt(189).Equal(s.StandardPeriodHours(start, end)))
}

func TestSettings_WeekendOnlyPeriod(t *testing.T) {
	s := DefaultSettings()
	sat := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	sun := sat.AddDate(0, 0, 1)

	assert.True(t, s.StandardPeriodHours(sat, sun).IsZero())
}

func TestCreateAdjustmentTypeRequest_Validate(t *testing.T) {
	amount := decimal.NewFromInt(50000)
	pct := decimal.RequireFromString("2.5")
	negative := decimal.NewFromInt(-1)
	tooMuch := decimal.NewFromInt(101)

	tests := []struct {
		name    string
		req     CreateAdjustmentTypeRequest
		wantErr bool
	}{
		{"fixed", CreateAdjustmentTypeRequest{Name: "Transport", Kind: "benefit", FixedAmount: &amount}, false},
		{"percentage", CreateAdjustmentTypeRequest{Name: "Pension", Kind: "deduction", Percentage: &pct}, false},
		{"both", CreateAdjustmentTypeRequest{Name: "X", Kind: "deduction", FixedAmount: &amount, Percentage: &pct}, true},
		{"neither", CreateAdjustmentTypeRequest{Name: "X", Kind: "deduction"}, true},
		{"negative fixed", CreateAdjustmentTypeRequest{Name: "X", Kind: "benefit", FixedAmount: &negative}, true},
		{"percentage over 100", CreateAdjustmentTypeRequest{Name: "X", Kind: "benefit", Percentage: &tooMuch}, true},
		{"bad kind", CreateAdjustmentTypeRequest{Name: "X", Kind: "bonus", FixedAmount: &amount}, true},
		{"missing name", CreateAdjustmentTypeRequest{Kind: "benefit", FixedAmount: &amount}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreatePeriodRequest_Validate(t *testing.T) {
	ok := CreatePeriodRequest{Name: "March 2025", StartDate: "2025-03-01", EndDate: "2025-03-31"}
	assert.NoError(t, ok.Validate())

	reversed := CreatePeriodRequest{Name: "March 2025", StartDate: "2025-03-31", EndDate: "2025-03-01"}
	assert.Error(t, reversed.Validate())

	badDate := CreatePeriodRequest{Name: "March 2025", StartDate: "03/01/2025", EndDate: "2025-03-31"}
	assert.Error(t, badDate.Validate())
}
