package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	// Kiosk
	NextSession(w http.ResponseWriter, r *http.Request)
	CanPerform(w http.ResponseWriter, r *http.Request)
	RecordSession(w http.ResponseWriter, r *http.Request)
	// Hours
	Today(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	clock             clock.Clock
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, clk clock.Clock) AttendanceHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		clock:             clk,
	}
}

// NextSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) NextSession(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.attendanceService.NextSession(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewNextSessionResponse(result))
}

type canPerformResponse struct {
	EmployeeID  string  `json:"employee_id"`
	SessionType string  `json:"session_type"`
	Allowed     bool    `json:"allowed"`
	Reason      *string `json:"reason,omitempty"`
	Message     *string `json:"message,omitempty"`
}

// CanPerform implements AttendanceHandler.
func (h *attendanceHandlerImpl) CanPerform(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	sessionType := attendance.SessionType(r.URL.Query().Get("session_type"))

	decision, err := h.attendanceService.CanPerform(r.Context(), employeeID, sessionType, h.clock.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := canPerformResponse{
		EmployeeID:  employeeID,
		SessionType: string(sessionType),
		Allowed:     decision.Allowed,
	}
	if !decision.Allowed {
		reason := string(decision.Reason)
		result.Reason = &reason
		result.Message = &decision.Message
	}
	response.Success(w, result)
}

// RecordSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.RecordSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance session recorded", attendance.NewSessionResponse(result))
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	result, err := h.attendanceService.TodaySummary(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewDaySummaryResponse(result))
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	req := attendance.SummaryRangeRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Start:      r.URL.Query().Get("start"),
		End:        r.URL.Query().Get("end"),
	}
	start, end, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	days, err := h.attendanceService.SummarizeRange(r.Context(), req.EmployeeID, start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewSummaryRangeResponse(req.EmployeeID, start, end, days))
}
