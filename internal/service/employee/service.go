package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	gateway      notification.Gateway
	dispatcher   notification.Dispatcher
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	gateway notification.Gateway,
	dispatcher notification.Dispatcher,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		gateway:      gateway,
		dispatcher:   dispatcher,
	}
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id int64) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee.NewEmployeeResponse(emp), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var created employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureUnique(txCtx, req.EmployeeID, req.Email, 0); err != nil {
			return err
		}

		var err error
		created, err = s.employeeRepo.Create(txCtx, req.ToEntity())
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return employee.NewEmployeeResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.employeeRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		code, email := "", ""
		if req.EmployeeID != nil && *req.EmployeeID != existing.EmployeeCode {
			code = *req.EmployeeID
		}
		if req.Email != nil && *req.Email != existing.Email {
			email = *req.Email
		}
		if err := s.ensureUnique(txCtx, code, email, req.ID); err != nil {
			return err
		}

		updated, err = s.employeeRepo.Update(txCtx, req)
		return err
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) ||
			errors.Is(err, employee.ErrEmployeeCodeExists) ||
			errors.Is(err, employee.ErrEmailExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}

	return employee.NewEmployeeResponse(updated), nil
}

// DeleteEmployee implements employee.EmployeeService. The profile deletion
// email is queued after the row is gone and never fails the request.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id int64) (employee.DeleteEmployeeResponse, error) {
	var deleted employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.employeeRepo.Delete(txCtx, id); err != nil {
			return err
		}
		deleted = emp
		return nil
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.DeleteEmployeeResponse{}, err
		}
		return employee.DeleteEmployeeResponse{}, fmt.Errorf("failed to delete employee: %w", err)
	}

	slog.Info("Employee deleted", "employee_id", deleted.ID, "employee_code", deleted.EmployeeCode)
	s.queueDeletionNotice(deleted)

	return employee.DeleteEmployeeResponse{
		Success:           true,
		Message:           fmt.Sprintf("Employee %s (%s) has been deleted successfully.", deleted.Name, deleted.EmployeeCode),
		DeletedEmployeeID: deleted.EmployeeCode,
	}, nil
}

func (s *EmployeeServiceImpl) queueDeletionNotice(emp employee.Employee) {
	if emp.Email == "" {
		return
	}

	req := notification.SendEmailRequest{
		To:      emp.Email,
		Subject: fmt.Sprintf("Employee profile deleted (%s)", emp.EmployeeCode),
		Body: fmt.Sprintf("Hello %s, your employee profile (%s) has been removed from the system. "+
			"If you believe this is a mistake, please contact support.", emp.Name, emp.EmployeeCode),
	}
	err := s.dispatcher.Enqueue(notification.Task{
		Channel: notification.ChannelEmail,
		Subject: fmt.Sprintf("profile deleted email for employee %d", emp.ID),
		Run: func(ctx context.Context) error {
			return notificationService.ResultError(s.gateway.SendEmailIfEnabled(ctx, req))
		},
	})
	if err != nil {
		slog.Warn("Failed to queue profile deletion email", "employee_id", emp.ID, "error", err)
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	filter.Normalize()

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.NewEmployeeResponse(emp))
	}

	return employee.ListEmployeeResponse{
		Employees: responses,
		Total:     total,
	}, nil
}

// ensureUnique checks the employee code and email against other employees.
// Empty values are not checked.
func (s *EmployeeServiceImpl) ensureUnique(ctx context.Context, code, email string, excludeID int64) error {
	if code != "" {
		exists, err := s.employeeRepo.ExistsByEmployeeCode(ctx, code, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check employee code existence: %w", err)
		}
		if exists {
			return employee.ErrEmployeeCodeExists
		}
	}

	if email != "" {
		exists, err := s.employeeRepo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return employee.ErrEmailExists
		}
	}
	return nil
}
