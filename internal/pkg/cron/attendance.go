package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// ProcessAttendanceFilesJob is the scheduler name of the spreadsheet import.
const ProcessAttendanceFilesJob = "process_attendance_files"

type resultKey struct{}

// AttendanceJobs schedules the spreadsheet import and runs it on demand. It
// implements attendance.FileProcessor so API triggers share the job's
// overlap guard with scheduled runs.
type AttendanceJobs struct {
	scheduler *Scheduler
	processor attendance.FileProcessor
}

func NewAttendanceJobs(scheduler *Scheduler, processor attendance.FileProcessor) *AttendanceJobs {
	return &AttendanceJobs{scheduler: scheduler, processor: processor}
}

// RegisterJobs schedules the spreadsheet import every interval. A single
// run may take up to the interval itself.
func (j *AttendanceJobs) RegisterJobs(interval time.Duration) {
	j.scheduler.AddJob(ProcessAttendanceFilesJob, interval, interval, j.ProcessAttendanceFiles)
}

// ProcessFiles runs the import now through the scheduler.
func (j *AttendanceJobs) ProcessFiles(ctx context.Context) (attendance.ProcessFilesResponse, error) {
	var resp attendance.ProcessFilesResponse
	err := j.scheduler.RunNow(context.WithValue(ctx, resultKey{}, &resp), ProcessAttendanceFilesJob)
	if errors.Is(err, ErrJobRunning) {
		return attendance.ProcessFilesResponse{}, attendance.ErrProcessorBusy
	}
	if err != nil {
		return attendance.ProcessFilesResponse{}, err
	}
	return resp, nil
}

func (j *AttendanceJobs) ProcessAttendanceFiles(ctx context.Context) error {
	resp, err := j.processor.ProcessFiles(ctx)

	// On-demand run: hand the outcome back to ProcessFiles.
	if out, ok := ctx.Value(resultKey{}).(*attendance.ProcessFilesResponse); ok {
		*out = resp
		return err
	}

	if err != nil {
		if errors.Is(err, attendance.ErrProcessorBusy) {
			slog.Info("Cron: attendance import already running, skipping")
			return nil
		}
		return err
	}

	if resp.Processed > 0 {
		slog.Info("Cron: attendance files imported",
			"processed", resp.Processed,
			"recorded", resp.Recorded,
			"skipped", resp.Skipped,
		)
	}
	return nil
}
