package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// RecordAttendance applies a check-in or check-out and returns the stored record.
	// Notifications and the realtime broadcast are queued, never awaited.
	RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetSummary counts records per employee
	GetSummary(ctx context.Context, filter SummaryFilter) (SummaryResponse, error)
}

// FileProcessor imports attendance spreadsheets through the AttendanceService.
type FileProcessor interface {
	ProcessFiles(ctx context.Context) (ProcessFilesResponse, error)
}
