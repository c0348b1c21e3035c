package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, employee_id, name, email, phone, department, position, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.EmployeeCode, &e.Name, &e.Email,
		&e.Phone, &e.Department, &e.Position,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// mapEmployeeConstraint turns unique violations into domain errors.
func mapEmployeeConstraint(err error) error {
	if !hasPgCode(err, pgUniqueViolation) {
		return nil
	}
	switch constraintName(err) {
	case "employees_email_key":
		return employee.ErrEmailExists
	case "employees_employee_id_key":
		return employee.ErrEmployeeCodeExists
	}
	return nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %d: %w", id, err)
	}
	return emp, nil
}

// GetByName implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByName(ctx context.Context, name string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE LOWER(TRIM(name)) = LOWER(TRIM($1))
		ORDER BY id
		LIMIT 1
	`
	emp, err := scanEmployee(q.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by name: %w", err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (employee_id, name, email, phone, department, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.EmployeeCode,
		newEmployee.Name,
		newEmployee.Email,
		newEmployee.Phone,
		newEmployee.Department,
		newEmployee.Position,
	))
	if err != nil {
		if mapped := mapEmployeeConstraint(err); mapped != nil {
			return employee.Employee{}, mapped
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	setClauses := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	add := func(col string, val interface{}) {
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.EmployeeID != nil {
		add("employee_id", strings.TrimSpace(*req.EmployeeID))
	}
	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		add("email", *req.Email)
	}
	// Empty strings clear the optional columns
	if req.Phone != nil {
		add("phone", nullableText(*req.Phone))
	}
	if req.Department != nil {
		add("department", nullableText(*req.Department))
	}
	if req.Position != nil {
		add("position", nullableText(*req.Position))
	}

	if len(setClauses) == 0 {
		return employee.Employee{}, employee.ErrNoFieldsToUpdate
	}
	add("updated_at", time.Now())

	args = append(args, req.ID)
	sql := fmt.Sprintf("UPDATE employees SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), employeeColumns)

	updated, err := scanEmployee(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		if mapped := mapEmployeeConstraint(err); mapped != nil {
			return employee.Employee{}, mapped
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee with id %d: %w", req.ID, err)
	}
	return updated, nil
}

// Delete implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee with id %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	where := ""
	args := []interface{}{}
	if filter.Department != nil && *filter.Department != "" {
		args = append(args, *filter.Department)
		where = fmt.Sprintf(" WHERE department = $%d", len(args))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employees%s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		employeeColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, total, nil
}

// ExistsByEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := GetQuerier(ctx, e.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2)`,
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee email: %w", err)
	}
	return exists, nil
}

// ExistsByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsByEmployeeCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	q := GetQuerier(ctx, e.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE employee_id = $1 AND id <> $2)`,
		code, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee code: %w", err)
	}
	return exists, nil
}

func nullableText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
