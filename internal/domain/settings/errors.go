package settings

import "errors"

var (
	// ErrSettingsNotFound means the attendance settings row is missing. It is a
	// configuration problem and is never replaced by defaults.
	ErrSettingsNotFound = errors.New("Attendance settings not found")

	ErrInvalidClock     = errors.New("invalid time of day")
	ErrInvalidLogoType  = errors.New("invalid file type: only jpg, jpeg, png allowed")
	ErrLogoTooLarge     = errors.New("company logo size must not exceed 5MB")
	ErrInvalidLogoImage = errors.New("company logo is not a valid image")
)
