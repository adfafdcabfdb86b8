package employee

import (
	"github.com/shopspring/decimal"
)

// Employee is the read-side projection of the employee directory used by
// attendance and payroll. Directory CRUD lives elsewhere.
type Employee struct {
	ID               string
	DepartmentID     string
	EmployeeCode     string
	FullName         string
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal
	// HourlyRate overrides the rate derived from BaseSalary when set.
	HourlyRate *decimal.Decimal
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
	EmploymentStatusSuspended  EmploymentStatus = "suspended"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// HasCompensation reports whether payroll can be computed for e.
func (e Employee) HasCompensation() bool {
	return e.BaseSalary != nil && e.BaseSalary.IsPositive()
}
