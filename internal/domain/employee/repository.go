package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListActiveForPayroll returns active employees ordered by ID, optionally
	// restricted to one department.
	ListActiveForPayroll(ctx context.Context, departmentID *string) ([]Employee, error)
}
