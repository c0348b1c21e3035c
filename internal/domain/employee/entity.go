package employee

import "time"

type Employee struct {
	ID           int64
	EmployeeCode string
	Name         string
	Email        string
	Phone        *string
	Department   *string
	Position     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPhone reports whether a WhatsApp destination is known.
func (e Employee) HasPhone() bool {
	return e.Phone != nil && *e.Phone != ""
}
