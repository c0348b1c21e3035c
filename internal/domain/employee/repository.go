package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (Employee, error)
	// GetByName matches case-insensitively on the trimmed display name.
	GetByName(ctx context.Context, name string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) (Employee, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByEmployeeCode(ctx context.Context, code string, excludeID int64) (bool, error)
}
