package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type RecordSessionRequest struct {
	EmployeeID        string  `json:"employee_id" validate:"required"`
	SessionType       string  `json:"session_type" validate:"required,oneof=morning_in morning_out afternoon_in afternoon_out overtime"`
	VerificationToken string  `json:"verification_token" validate:"required,max=4096"`
	Timestamp         *string `json:"timestamp,omitempty"`
	PhotoRef          *string `json:"photo_ref,omitempty" validate:"omitempty,max=512"`
	LocationTag       *string `json:"location_tag,omitempty" validate:"omitempty,max=255"`
}

func (r *RecordSessionRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be RFC3339",
			})
		}
	}

	return errs.OrNil()
}

// ClientTime returns the parsed client timestamp, if one was sent.
func (r *RecordSessionRequest) ClientTime() *time.Time {
	if r.Timestamp == nil {
		return nil
	}
	t, ok := validator.IsValidDateTime(*r.Timestamp)
	if !ok {
		return nil
	}
	return &t
}

func (r *RecordSessionRequest) Verification() Verification {
	return Verification{
		Token:       r.VerificationToken,
		PhotoRef:    r.PhotoRef,
		LocationTag: r.LocationTag,
	}
}

// SummaryRangeRequest is parsed from ?start=YYYY-MM-DD&end=YYYY-MM-DD.
type SummaryRangeRequest struct {
	EmployeeID string
	Start      string
	End        string
}

func (r *SummaryRangeRequest) Validate() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.Start)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.End)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must be YYYY-MM-DD"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must not be before start"})
	}
	if okStart && okEnd && end.Sub(start) > 366*24*time.Hour {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "range must not exceed one year"})
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

type WindowResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type NextSessionResponse struct {
	EmployeeID      string          `json:"employee_id"`
	WorkDate        string          `json:"work_date"`
	Status          string          `json:"status"`
	SessionType     *string         `json:"session_type"`
	Window          *WindowResponse `json:"window,omitempty"`
	CanPerform      bool            `json:"can_perform"`
	Reason          *string         `json:"reason,omitempty"`
	Message         *string         `json:"message,omitempty"`
	NextSessionType *string         `json:"next_session_type,omitempty"`
	Missed          []string        `json:"missed,omitempty"`
}

func NewNextSessionResponse(n NextSession) NextSessionResponse {
	resp := NextSessionResponse{
		EmployeeID: n.EmployeeID,
		WorkDate:   n.WorkDate.Format(dateLayout),
		Status:     string(n.Expectation.Status),
	}
	if n.Expectation.Type != nil {
		s := n.Expectation.Type.String()
		resp.SessionType = &s
	}
	if n.Expectation.Next != nil {
		s := n.Expectation.Next.String()
		resp.NextSessionType = &s
	}
	for _, m := range n.Expectation.Missed {
		resp.Missed = append(resp.Missed, m.String())
	}
	if n.WindowStart != nil && n.WindowEnd != nil {
		resp.Window = &WindowResponse{Start: *n.WindowStart, End: *n.WindowEnd}
	}
	if n.Decision != nil {
		resp.CanPerform = n.Decision.Allowed
		if !n.Decision.Allowed {
			reason := string(n.Decision.Reason)
			resp.Reason = &reason
			resp.Message = &n.Decision.Message
		}
	}
	return resp
}

type SessionResponse struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	WorkDate    string    `json:"work_date"`
	SessionType string    `json:"session_type"`
	RecordedAt  time.Time `json:"recorded_at"`
	PhotoRef    *string   `json:"photo_ref,omitempty"`
	LocationTag *string   `json:"location_tag,omitempty"`
}

func NewSessionResponse(s AttendanceSession) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		WorkDate:    s.WorkDate.Format(dateLayout),
		SessionType: s.SessionType.String(),
		RecordedAt:  s.RecordedAt,
		PhotoRef:    s.PhotoRef,
		LocationTag: s.LocationTag,
	}
}

type DaySummaryResponse struct {
	EmployeeID      string            `json:"employee_id"`
	WorkDate        string            `json:"work_date"`
	Sessions        []SessionResponse `json:"sessions"`
	RegularHours    decimal.Decimal   `json:"regular_hours"`
	LateHours       decimal.Decimal   `json:"late_hours"`
	OvertimeHours   decimal.Decimal   `json:"overtime_hours"`
	RegularMinutes  int               `json:"regular_minutes"`
	LateMinutes     int               `json:"late_minutes"`
	OvertimeMinutes int               `json:"overtime_minutes"`
	IsComplete      bool              `json:"is_complete"`
}

func NewDaySummaryResponse(s DaySummary) DaySummaryResponse {
	sessions := make([]SessionResponse, 0, len(s.Sessions))
	for _, session := range s.Sessions {
		sessions = append(sessions, NewSessionResponse(session))
	}
	return DaySummaryResponse{
		EmployeeID:      s.EmployeeID,
		WorkDate:        s.WorkDate.Format(dateLayout),
		Sessions:        sessions,
		RegularHours:    s.RegularHours(),
		LateHours:       s.LateHours(),
		OvertimeHours:   s.OvertimeHours(),
		RegularMinutes:  s.RegularMinutes,
		LateMinutes:     s.LateMinutes,
		OvertimeMinutes: s.OvertimeMinutes,
		IsComplete:      s.IsComplete,
	}
}

type SummaryRangeResponse struct {
	EmployeeID    string               `json:"employee_id"`
	Start         string               `json:"start"`
	End           string               `json:"end"`
	Days          []DaySummaryResponse `json:"days"`
	DaysPresent   int                  `json:"days_present"`
	DaysComplete  int                  `json:"days_complete"`
	RegularHours  decimal.Decimal      `json:"regular_hours"`
	LateHours     decimal.Decimal      `json:"late_hours"`
	OvertimeHours decimal.Decimal      `json:"overtime_hours"`
}

func NewSummaryRangeResponse(employeeID string, start, end time.Time, days []DaySummary) SummaryRangeResponse {
	totals := Total(days)
	resp := SummaryRangeResponse{
		EmployeeID:    employeeID,
		Start:         start.Format(dateLayout),
		End:           end.Format(dateLayout),
		Days:          make([]DaySummaryResponse, 0, len(days)),
		DaysPresent:   totals.DaysPresent,
		DaysComplete:  totals.DaysComplete,
		RegularHours:  totals.RegularHours(),
		LateHours:     totals.LateHours(),
		OvertimeHours: totals.OvertimeHours(),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, NewDaySummaryResponse(d))
	}
	return resp
}
