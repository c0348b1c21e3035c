package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil when no record exists. With forUpdate the
	// row stays locked until the surrounding transaction ends.
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time, forUpdate bool) (*Record, error)

	// Create inserts the check-in leg. A conflict on (employee_id, date) is
	// reported as ErrDuplicateCheckIn.
	Create(ctx context.Context, record Record) (Record, error)

	// UpdateCheckIn fills the check-in leg of a record that has none yet.
	UpdateCheckIn(ctx context.Context, record Record) (Record, error)

	// UpdateCheckOut fills the check-out leg. It only touches records that are
	// checked in and not yet checked out.
	UpdateCheckOut(ctx context.Context, record Record) (Record, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	Summary(ctx context.Context, filter SummaryFilter) ([]EmployeeSummary, int64, error)
}

// ProcessedFileRepository remembers which attendance spreadsheets were imported.
type ProcessedFileRepository interface {
	IsProcessed(ctx context.Context, fileName string) (bool, error)
	MarkProcessed(ctx context.Context, file ProcessedFile) error
}

type ProcessedFile struct {
	FileName    string
	WorkDate    time.Time
	Recorded    int
	Skipped     int
	ProcessedAt time.Time
}
