package file

import (
	"context"
	"io"
)

// FileService manages attendance spreadsheets and company assets in object storage.
type FileService interface {
	UploadAttendance(ctx context.Context, req UploadAttendanceRequest) (UploadAttendanceResponse, error)
	ListAttendanceFiles(ctx context.Context) (ListAttendanceFilesResponse, error)
	// DownloadAttendance returns ErrFileNotFound for unknown names.
	DownloadAttendance(ctx context.Context, req DownloadAttendanceRequest) (DownloadAttendanceResponse, error)

	// OpenAttendance streams a stored spreadsheet; used by the importer.
	OpenAttendance(ctx context.Context, name string) (io.ReadCloser, error)

	// UploadCompanyLogo downscales the image and returns its public URL.
	UploadCompanyLogo(ctx context.Context, r io.Reader, filename string) (string, error)
}
