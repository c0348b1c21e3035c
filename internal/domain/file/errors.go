package file

import "errors"

var (
	ErrFileNotFound    = errors.New("File not found")
	ErrInvalidFileName = errors.New("invalid file name")
)
