package attendance

import "errors"

// Attendance domain errors
var (
	// State transition errors, shown to the user verbatim
	ErrDuplicateCheckIn  = errors.New("Employee has already checked in today")
	ErrMissingCheckIn    = errors.New("Employee must check in first")
	ErrDuplicateCheckOut = errors.New("Employee has already checked out today")

	ErrInvalidDateRange = errors.New("startDate must not be after endDate")
	ErrProcessorBusy    = errors.New("attendance files are already being processed")
)
