package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ========================================
// RECORD ATTENDANCE
// ========================================

type RecordAttendanceRequest struct {
	EmployeeID int64      `json:"employeeId" validate:"required,gt=0"`
	Type       EventType  `json:"type" validate:"required,oneof=in out"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *RecordAttendanceRequest) Validate() error {
	return validator.Struct(r)
}

type AttendanceResponse struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employeeId"`
	Date         string     `json:"date"`
	InTime       *time.Time `json:"inTime,omitempty"`
	OutTime      *time.Time `json:"outTime,omitempty"`
	LateMinutes  int        `json:"lateMinutes"`
	EarlyMinutes int        `json:"earlyMinutes"`
	TotalHours   float64    `json:"totalHours"`
	Status       string     `json:"status"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	EmployeeName *string `json:"employeeName,omitempty"`
	EmployeeCode *string `json:"employeeCode,omitempty"`
}

func NewAttendanceResponse(r Record) AttendanceResponse {
	return AttendanceResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		Date:         r.Date.Format(DateLayout),
		InTime:       r.InTime,
		OutTime:      r.OutTime,
		LateMinutes:  r.LateMinutes,
		EarlyMinutes: r.EarlyMinutes,
		TotalHours:   r.TotalHours,
		Status:       r.Status,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		EmployeeName: r.EmployeeName,
		EmployeeCode: r.EmployeeCode,
	}
}

// ========================================
// LIST / SUMMARY
// ========================================

type AttendanceFilter struct {
	EmployeeID *int64
	StartDate  *string
	EndDate    *string
	Limit      int
	Offset     int
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var okStart, okEnd bool
	if f.StartDate != nil {
		if start, okStart = validator.IsValidDate(*f.StartDate); !okStart {
			errs = append(errs, validator.ValidationError{Field: "startDate", Message: "startDate must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil {
		if end, okEnd = validator.IsValidDate(*f.EndDate); !okEnd {
			errs = append(errs, validator.ValidationError{Field: "endDate", Message: "endDate must be in YYYY-MM-DD format"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	if okStart && okEnd && start.After(end) {
		return ErrInvalidDateRange
	}

	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return nil
}

type ListAttendanceResponse struct {
	Records []AttendanceResponse `json:"records"`
	Total   int64                `json:"total"`

	// Page that was applied after normalization.
	Limit  int `json:"-"`
	Offset int `json:"-"`
}

type SummaryFilter struct {
	EmployeeID *int64
	Limit      int
	Offset     int
}

func (f *SummaryFilter) Normalize() {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
}

type EmployeeSummary struct {
	EmployeeID   int64  `json:"employeeId"`
	EmployeeCode string `json:"employeeCode"`
	EmployeeName string `json:"employeeName"`
	Total        int64  `json:"total"`
}

type SummaryResponse struct {
	Summaries []EmployeeSummary `json:"summaries"`
	Total     int64             `json:"total"`

	Limit  int `json:"-"`
	Offset int `json:"-"`
}

// ========================================
// SPREADSHEET PROCESSOR
// ========================================

type ProcessFilesResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Recorded  int    `json:"recorded"`
	Skipped   int    `json:"skipped"`
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
