package employee

import "github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.KindNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
)
