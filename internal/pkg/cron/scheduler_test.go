package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, 0, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no runs after Stop")
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler()
	want := errors.New("boom")
	s.AddJob("fail", time.Hour, time.Second, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return want
	})

	assert.ErrorIs(t, s.RunNow(context.Background(), "fail"), want)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestScheduler_RunNowRejectsOverlap(t *testing.T) {
	s := NewScheduler()
	release := make(chan struct{})
	started := make(chan struct{})
	s.AddJob("slow", time.Hour, time.Minute, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan error)
	go func() { done <- s.RunNow(context.Background(), "slow") }()
	<-started

	assert.ErrorIs(t, s.RunNow(context.Background(), "slow"), ErrJobRunning)

	close(release)
	assert.NoError(t, <-done)
}

type countingProcessor struct {
	calls   int
	err     error
	started chan struct{}
	release chan struct{}
}

func (c *countingProcessor) ProcessFiles(context.Context) (attendance.ProcessFilesResponse, error) {
	c.calls++
	if c.started != nil {
		close(c.started)
		<-c.release
	}
	return attendance.ProcessFilesResponse{Success: true, Processed: 1}, c.err
}

func TestAttendanceJobs_BusyIsNotAnError(t *testing.T) {
	p := &countingProcessor{err: attendance.ErrProcessorBusy}
	jobs := NewAttendanceJobs(NewScheduler(), p)

	assert.NoError(t, jobs.ProcessAttendanceFiles(context.Background()))
	assert.Equal(t, 1, p.calls)

	p.err = errors.New("storage offline")
	assert.Error(t, jobs.ProcessAttendanceFiles(context.Background()))
}

func TestAttendanceJobs_Register(t *testing.T) {
	p := &countingProcessor{}
	s := NewScheduler()
	NewAttendanceJobs(s, p).RegisterJobs(time.Hour)

	require.NoError(t, s.RunNow(context.Background(), ProcessAttendanceFilesJob))
	assert.Equal(t, 1, p.calls)
}

func TestAttendanceJobs_ProcessFilesRunsThroughScheduler(t *testing.T) {
	p := &countingProcessor{}
	jobs := NewAttendanceJobs(NewScheduler(), p)
	jobs.RegisterJobs(time.Hour)

	resp, err := jobs.ProcessFiles(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Processed)
	assert.Equal(t, 1, p.calls)
}

func TestAttendanceJobs_ProcessFilesSurfacesErrors(t *testing.T) {
	p := &countingProcessor{err: attendance.ErrProcessorBusy}
	jobs := NewAttendanceJobs(NewScheduler(), p)
	jobs.RegisterJobs(time.Hour)

	_, err := jobs.ProcessFiles(context.Background())
	assert.ErrorIs(t, err, attendance.ErrProcessorBusy)

	p.err = errors.New("storage offline")
	_, err = jobs.ProcessFiles(context.Background())
	assert.EqualError(t, err, "storage offline")
}

func TestAttendanceJobs_ProcessFilesBusyWhileRunning(t *testing.T) {
	p := &countingProcessor{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler()
	jobs := NewAttendanceJobs(s, p)
	jobs.RegisterJobs(time.Hour)

	done := make(chan error)
	go func() { done <- s.RunNow(context.Background(), ProcessAttendanceFilesJob) }()
	<-p.started

	_, err := jobs.ProcessFiles(context.Background())
	assert.ErrorIs(t, err, attendance.ErrProcessorBusy)

	close(p.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, p.calls)
}
