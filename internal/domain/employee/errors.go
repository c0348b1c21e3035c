package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("Employee not found")
	ErrEmployeeCodeExists = errors.New("An employee with this employee ID already exists")
	ErrEmailExists        = errors.New("An employee with this email already exists")
	ErrNoFieldsToUpdate   = errors.New("No fields to update")
)
