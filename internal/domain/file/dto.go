package file

import (
	"encoding/base64"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type UploadAttendanceRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	FileContent string `json:"fileContent" validate:"required"`
	FileType    string `json:"fileType" validate:"required"`

	decoded []byte
}

func (r *UploadAttendanceRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if !IsSafeName(r.FileName) {
		return ErrInvalidFileName
	}
	data, err := base64.StdEncoding.DecodeString(r.FileContent)
	if err != nil {
		return validator.ValidationErrors{{Field: "fileContent", Message: "fileContent must be base64 encoded"}}
	}
	r.decoded = data
	return nil
}

// Content returns the decoded payload. Only valid after Validate.
func (r *UploadAttendanceRequest) Content() []byte {
	return r.decoded
}

type UploadAttendanceResponse struct {
	Success bool   `json:"success"`
	FileURL string `json:"fileUrl"`
}

type AttendanceFile struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"lastModified"`
}

type ListAttendanceFilesResponse struct {
	Success bool             `json:"success"`
	Files   []AttendanceFile `json:"files"`
}

type DownloadAttendanceRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
}

func (r *DownloadAttendanceRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if !IsSafeName(r.FileName) {
		return ErrInvalidFileName
	}
	return nil
}

type DownloadAttendanceResponse struct {
	Success     bool   `json:"success"`
	FileContent string `json:"fileContent,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Error       string `json:"error,omitempty"`
}

// IsSafeName accepts plain file names only, without any directory part.
func IsSafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return path.Base(name) == name
}
