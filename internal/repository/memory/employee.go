package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeRepository struct {
	s *Store
}

// PutEmployee inserts or replaces an employee. Employee management lives
// outside this service, so this is the seeding entry point for dev and tests.
func (s *Store) PutEmployee(emp employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	s.employees[emp.ID] = emp
	return emp
}

func (r *employeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	emp, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *employeeRepository) ListActiveForPayroll(_ context.Context, departmentID *string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []employee.Employee
	for _, emp := range r.s.employees {
		if !emp.IsActive() {
			continue
		}
		if departmentID != nil && emp.DepartmentID != *departmentID {
			continue
		}
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
