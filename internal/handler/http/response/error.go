package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Causes of transient and
// internal errors are logged, never returned to the client.
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
		return
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
		return
	}

	appErr, ok := apperror.As(err)
	if !ok {
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		Fail(w, http.StatusUnprocessableEntity, appErr.Code, appErr.Message, subjectDetails(appErr))
	case apperror.KindStateConflict:
		Fail(w, http.StatusConflict, appErr.Code, appErr.Message, subjectDetails(appErr))
	case apperror.KindConfigurationMissing:
		Fail(w, http.StatusUnprocessableEntity, appErr.Code, appErr.Message, subjectDetails(appErr))
	case apperror.KindNotFound:
		Fail(w, http.StatusNotFound, appErr.Code, appErr.Message, nil)
	case apperror.KindTransient:
		slog.Error("transient error", "code", appErr.Code, "error", err)
		ServiceUnavailable(w, "Service temporarily unavailable, please retry")
	default:
		slog.Error("internal error", "code", appErr.Code, "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func subjectDetails(e *apperror.Error) map[string]string {
	if e.EmployeeID == "" && e.DepartmentID == "" {
		return nil
	}
	details := make(map[string]string, 2)
	if e.EmployeeID != "" {
		details["employee_id"] = e.EmployeeID
	}
	if e.DepartmentID != "" {
		details["department_id"] = e.DepartmentID
	}
	return details
}
