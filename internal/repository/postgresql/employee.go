package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, department_id, employee_code, full_name, employment_status, base_salary, hourly_rate
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.DepartmentID, &emp.EmployeeCode, &emp.FullName,
		&emp.EmploymentStatus, &emp.BaseSalary, &emp.HourlyRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, classify(err, "failed to get employee")
	}

	return emp, nil
}

// ListActiveForPayroll implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveForPayroll(ctx context.Context, departmentID *string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, department_id, employee_code, full_name, employment_status, base_salary, hourly_rate
		FROM employees
		WHERE employment_status = $1
		  AND deleted_at IS NULL
		  AND ($2::uuid IS NULL OR department_id = $2::uuid)
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive, departmentID)
	if err != nil {
		return nil, classify(err, "failed to list employees")
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(
			&emp.ID, &emp.DepartmentID, &emp.EmployeeCode, &emp.FullName,
			&emp.EmploymentStatus, &emp.BaseSalary, &emp.HourlyRate,
		); err != nil {
			return nil, classify(err, "failed to scan employee")
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to read employees")
	}

	return employees, nil
}
