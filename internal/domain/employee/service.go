package employee

import (
	"context"
)

// EmployeeService defines administrative operations on employee records
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	GetEmployee(ctx context.Context, id int64) (EmployeeResponse, error)

	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// UpdateEmployee applies only the fields present in the request
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee removes the employee and, through the foreign key, their attendance records
	DeleteEmployee(ctx context.Context, id int64) (DeleteEmployeeResponse, error)
}
