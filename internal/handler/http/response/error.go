package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance state transitions, shown to the user verbatim
	case errors.Is(err, attendance.ErrDuplicateCheckIn),
		errors.Is(err, attendance.ErrMissingCheckIn),
		errors.Is(err, attendance.ErrDuplicateCheckOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrProcessorBusy):
		Conflict(w, err.Error())

	// Settings errors
	case errors.Is(err, settings.ErrSettingsNotFound):
		slog.Error("Attendance settings are missing", "error", err)
		InternalServerError(w, err.Error())
	case errors.Is(err, settings.ErrInvalidLogoType),
		errors.Is(err, settings.ErrLogoTooLarge),
		errors.Is(err, settings.ErrInvalidLogoImage):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists),
		errors.Is(err, employee.ErrEmailExists):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrNoFieldsToUpdate):
		BadRequest(w, err.Error(), nil)

	// File errors
	case errors.Is(err, file.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, file.ErrInvalidFileName):
		BadRequest(w, err.Error(), nil)

	// Outbox
	case errors.Is(err, notification.ErrQueueFull),
		errors.Is(err, notification.ErrDispatcherStopped):
		ServiceUnavailable(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
