package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type CreateEmployeeRequest struct {
	EmployeeID string  `json:"employeeId" validate:"required,max=50"`
	Name       string  `json:"name" validate:"required,max=255"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Position   *string `json:"position,omitempty" validate:"omitempty,max=100"`
}

func (r *CreateEmployeeRequest) Validate() error {
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validator.Struct(r)
}

func (r CreateEmployeeRequest) ToEntity() Employee {
	return Employee{
		EmployeeCode: r.EmployeeID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        emptyToNil(r.Phone),
		Department:   emptyToNil(r.Department),
		Position:     emptyToNil(r.Position),
	}
}

type UpdateEmployeeRequest struct {
	ID         int64   `json:"-"`
	EmployeeID *string `json:"employeeId,omitempty" validate:"omitempty,min=1,max=50"`
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Position   *string `json:"position,omitempty" validate:"omitempty,max=100"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
	}
	if err := validator.Struct(r); err != nil {
		return err
	}
	if !r.HasChanges() {
		return ErrNoFieldsToUpdate
	}
	return nil
}

func (r UpdateEmployeeRequest) HasChanges() bool {
	return r.EmployeeID != nil || r.Name != nil || r.Email != nil ||
		r.Phone != nil || r.Department != nil || r.Position != nil
}

type EmployeeFilter struct {
	Department *string
	Limit      int
	Offset     int
}

// Normalize applies the default page size and clamps out of range values.
func (f *EmployeeFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

type EmployeeResponse struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Department *string   `json:"department,omitempty"`
	Position   *string   `json:"position,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeCode,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		Department: e.Department,
		Position:   e.Position,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

type ListEmployeeResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int64              `json:"total"`
}

type DeleteEmployeeResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	DeletedEmployeeID string `json:"deletedEmployeeId,omitempty"`
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
