package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	UpdatePeriod(w http.ResponseWriter, r *http.Request)
	DeletePeriod(w http.ResponseWriter, r *http.Request)

	// Records
	GenerateRecords(w http.ResponseWriter, r *http.Request)
	ReprocessRecords(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	MarkRecordsPaid(w http.ResponseWriter, r *http.Request)

	// Approval
	ApproveDepartment(w http.ResponseWriter, r *http.Request)
	ListApprovals(w http.ResponseWriter, r *http.Request)

	// Adjustment types
	CreateAdjustmentType(w http.ResponseWriter, r *http.Request)
	ListAdjustmentTypes(w http.ResponseWriter, r *http.Request)
	DeactivateAdjustmentType(w http.ResponseWriter, r *http.Request)

	// Overtime leave
	OvertimeLeave(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// decodeOptional decodes a JSON body, treating an empty body as no fields.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.CreatedBy = principal.UserID

	result, err := h.payrollService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter payroll.PeriodFilter
	if status := query.Get("status"); status != "" {
		s := payroll.PeriodStatus(status)
		filter.Status = &s
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			response.BadRequest(w, "Invalid limit", nil)
			return
		}
		filter.Limit = n
	}
	if offset := query.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			response.BadRequest(w, "Invalid offset", nil)
			return
		}
		filter.Offset = n
	}

	result, err := h.payrollService.ListPeriods(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{Limit: filter.Limit, Offset: filter.Offset, Count: len(result)})
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "periodID")

	result, err := h.payrollService.UpdatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period updated", result)
}

func (h *payrollHandlerImpl) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.DeletePeriod(r.Context(), chi.URLParam(r, "periodID")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period deleted", nil)
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) GenerateRecords(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateRecordsRequest
	if err := decodeOptional(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")

	result, err := h.payrollService.GenerateRecords(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll records generated", result)
}

func (h *payrollHandlerImpl) ReprocessRecords(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateRecordsRequest
	if err := decodeOptional(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")

	result, err := h.payrollService.ReprocessRecords(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll records reprocessed", result)
}

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	var departmentID *string
	if dept := r.URL.Query().Get("department_id"); dept != "" {
		departmentID = &dept
	}

	result, err := h.payrollService.ListRecords(r.Context(), chi.URLParam(r, "periodID"), departmentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetRecord(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) MarkRecordsPaid(w http.ResponseWriter, r *http.Request) {
	var req payroll.MarkPaidRequest
	if err := decodeOptional(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")

	result, err := h.payrollService.MarkRecordsPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll records marked as paid", result)
}

// ========== APPROVAL ==========

func (h *payrollHandlerImpl) ApproveDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	req := payroll.ApproveDepartmentRequest{
		PeriodID:     chi.URLParam(r, "periodID"),
		DepartmentID: chi.URLParam(r, "departmentID"),
		ApproverID:   principal.UserID,
	}

	result, err := h.payrollService.ApproveDepartment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department payroll approved", result)
}

func (h *payrollHandlerImpl) ListApprovals(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListApprovals(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== ADJUSTMENT TYPES ==========

func (h *payrollHandlerImpl) CreateAdjustmentType(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateAdjustmentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateAdjustmentType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Adjustment type created", result)
}

func (h *payrollHandlerImpl) ListAdjustmentTypes(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	result, err := h.payrollService.ListAdjustmentTypes(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) DeactivateAdjustmentType(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.DeactivateAdjustmentType(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Adjustment type deactivated", nil)
}

// ========== OVERTIME LEAVE ==========

func (h *payrollHandlerImpl) OvertimeLeave(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.OvertimeLeave(r.Context(), chi.URLParam(r, "periodID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
