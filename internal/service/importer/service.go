package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
)

type processorImpl struct {
	files      file.FileService
	processed  attendance.ProcessedFileRepository
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceService

	loc *time.Location
	now func() time.Time

	running sync.Mutex
}

func NewFileProcessor(
	files file.FileService,
	processed attendance.ProcessedFileRepository,
	employees employee.EmployeeRepository,
	attendanceService attendance.AttendanceService,
	loc *time.Location,
) attendance.FileProcessor {
	if loc == nil {
		loc = time.UTC
	}
	return &processorImpl{
		files:      files,
		processed:  processed,
		employees:  employees,
		attendance: attendanceService,
		loc:        loc,
		now:        time.Now,
	}
}

type fileResult struct {
	recorded int
	skipped  int
}

// ProcessFiles implements attendance.FileProcessor. Only one run is active
// at a time; a concurrent call gets ErrProcessorBusy.
func (p *processorImpl) ProcessFiles(ctx context.Context) (attendance.ProcessFilesResponse, error) {
	if !p.running.TryLock() {
		return attendance.ProcessFilesResponse{}, attendance.ErrProcessorBusy
	}
	defer p.running.Unlock()

	listing, err := p.files.ListAttendanceFiles(ctx)
	if err != nil {
		return attendance.ProcessFilesResponse{}, fmt.Errorf("failed to read attendance folder: %w", err)
	}

	resp := attendance.ProcessFilesResponse{Success: true}
	var failed int
	for _, f := range listing.Files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xlsx") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return attendance.ProcessFilesResponse{}, err
		}

		done, err := p.processed.IsProcessed(ctx, f.Name)
		if err != nil {
			return attendance.ProcessFilesResponse{}, err
		}
		if done {
			slog.Debug("Skipping processed attendance file", "file", f.Name)
			continue
		}

		res, workDate, err := p.processFile(ctx, f.Name)
		if err != nil {
			// Left unmarked so the next run retries it.
			failed++
			slog.Error("Failed to process attendance file", "file", f.Name, "error", err)
			continue
		}

		if err := p.processed.MarkProcessed(ctx, attendance.ProcessedFile{
			FileName:    f.Name,
			WorkDate:    workDate,
			Recorded:    res.recorded,
			Skipped:     res.skipped,
			ProcessedAt: p.now(),
		}); err != nil {
			return attendance.ProcessFilesResponse{}, err
		}

		resp.Processed++
		resp.Recorded += res.recorded
		resp.Skipped += res.skipped
		slog.Info("Attendance file processed",
			"file", f.Name,
			"date", workDate.Format(attendance.DateLayout),
			"recorded", res.recorded,
			"skipped", res.skipped,
		)
	}

	switch {
	case failed > 0:
		resp.Message = fmt.Sprintf("Processed %d attendance files, %d failed.", resp.Processed, failed)
	case resp.Processed == 0:
		resp.Message = "No new attendance files to process."
	default:
		resp.Message = "Attendance files processed successfully."
	}
	return resp, nil
}

func (p *processorImpl) processFile(ctx context.Context, name string) (fileResult, time.Time, error) {
	workDate, ok := DateFromFilename(name)
	if !ok {
		workDate = attendance.WorkDate(p.now(), p.loc)
	}

	rc, err := p.files.OpenAttendance(ctx, name)
	if err != nil {
		return fileResult{}, workDate, err
	}
	defer rc.Close()

	rows, rowErrs, err := ReadRows(rc)
	if err != nil {
		return fileResult{}, workDate, err
	}
	for _, e := range rowErrs {
		slog.Warn("Unreadable attendance time", "file", name, "error", e)
	}

	var res fileResult
	for _, row := range rows {
		n, err := p.processRow(ctx, row, workDate)
		if err != nil {
			return res, workDate, fmt.Errorf("row %d: %w", row.Line, err)
		}
		res.recorded += n
		if n == 0 {
			res.skipped++
		}
	}
	return res, workDate, nil
}

// processRow feeds the row's legs through the attendance engine and returns
// how many were recorded. Rejected transitions and unknown staff are logged
// and skipped; anything else aborts the file.
func (p *processorImpl) processRow(ctx context.Context, row Row, workDate time.Time) (int, error) {
	emp, err := p.employees.GetByName(ctx, row.StaffName)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("No employee matches staff name", "staff_name", row.StaffName, "row", row.Line)
			return 0, nil
		}
		return 0, err
	}

	legs := []struct {
		kind  attendance.EventType
		clock *Clock
	}{
		{attendance.EventIn, row.In},
		{attendance.EventOut, row.Out},
	}

	recorded := 0
	for _, leg := range legs {
		if leg.clock == nil {
			continue
		}
		ts := leg.clock.On(workDate, p.loc)
		_, err := p.attendance.RecordAttendance(ctx, attendance.RecordAttendanceRequest{
			EmployeeID: emp.ID,
			Type:       leg.kind,
			Timestamp:  &ts,
		})
		switch {
		case err == nil:
			recorded++
		case errors.Is(err, attendance.ErrDuplicateCheckIn),
			errors.Is(err, attendance.ErrMissingCheckIn),
			errors.Is(err, attendance.ErrDuplicateCheckOut):
			slog.Info("Attendance row leg skipped",
				"staff_name", row.StaffName,
				"type", leg.kind,
				"time", leg.clock.String(),
				"reason", err.Error(),
			)
		default:
			return recorded, err
		}
	}
	return recorded, nil
}
