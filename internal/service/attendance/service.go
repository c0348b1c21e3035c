package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
)

// Publisher fans an event out to realtime subscribers.
type Publisher interface {
	Publish(evt realtime.Event) int
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	settings   settings.Reader
	gateway    notification.Gateway
	dispatcher notification.Dispatcher
	publisher  Publisher

	loc *time.Location
	now func() time.Time
}

// RecordAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	ts := a.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	ts = ts.Truncate(time.Microsecond) // timestamptz precision
	workDate := attendance.WorkDate(ts, a.loc)

	policy, err := a.settings.AttendanceSettings(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var record attendance.Record
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(txCtx, req.EmployeeID, workDate, true)
		if err != nil {
			return err
		}

		switch req.Type {
		case attendance.EventIn:
			record, err = a.checkIn(txCtx, policy, existing, req, ts, workDate)
		case attendance.EventOut:
			record, err = a.checkOut(txCtx, policy, existing, req, ts, workDate)
		default:
			err = fmt.Errorf("unsupported attendance type %q", req.Type)
		}
		return err
	})
	if err != nil {
		if isStateError(err) {
			slog.Info("Attendance transition rejected",
				"employee_id", req.EmployeeID,
				"type", req.Type,
				"date", workDate.Format(attendance.DateLayout),
				"reason", err.Error(),
			)
		}
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Attendance recorded",
		"employee_id", record.EmployeeID,
		"type", req.Type,
		"date", record.Date.Format(attendance.DateLayout),
		"late_minutes", record.LateMinutes,
		"early_minutes", record.EarlyMinutes,
	)

	a.queueSideEffects(ctx, req.Type, record, ts)

	return attendance.NewAttendanceResponse(record), nil
}

func (a *AttendanceServiceImpl) checkIn(ctx context.Context, policy settings.AttendanceSettings, existing *attendance.Record, req attendance.RecordAttendanceRequest, ts, workDate time.Time) (attendance.Record, error) {
	if existing != nil && existing.CheckedIn() {
		return attendance.Record{}, attendance.ErrDuplicateCheckIn
	}

	start, err := policy.WorkStartOn(workDate, a.loc)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("invalid work start time: %w", err)
	}
	lateMinutes := attendance.LateMinutes(ts, start)

	if existing != nil {
		// Row created without a check-in leg
		next := *existing
		next.InTime = &ts
		next.LateMinutes = lateMinutes
		next.Notes = req.Notes
		return a.AttendanceRepository.UpdateCheckIn(ctx, next)
	}

	return a.AttendanceRepository.Create(ctx, attendance.Record{
		EmployeeID:  req.EmployeeID,
		Date:        workDate,
		InTime:      &ts,
		LateMinutes: lateMinutes,
		Status:      attendance.StatusPresent,
		Notes:       req.Notes,
	})
}

// checkOut closes the open record for the day. Notes from the check-in are
// kept unless the check-out request carries its own.
func (a *AttendanceServiceImpl) checkOut(ctx context.Context, policy settings.AttendanceSettings, existing *attendance.Record, req attendance.RecordAttendanceRequest, ts, workDate time.Time) (attendance.Record, error) {
	if existing == nil || !existing.CheckedIn() {
		return attendance.Record{}, attendance.ErrMissingCheckIn
	}
	if existing.CheckedOut() {
		return attendance.Record{}, attendance.ErrDuplicateCheckOut
	}

	end, err := policy.WorkEndOn(workDate, a.loc)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("invalid work end time: %w", err)
	}

	next := *existing
	next.OutTime = &ts
	next.EarlyMinutes = attendance.EarlyMinutes(ts, end)
	next.TotalHours = attendance.TotalHours(*existing.InTime, ts)
	if req.Notes != nil {
		next.Notes = req.Notes
	}
	return a.AttendanceRepository.UpdateCheckOut(ctx, next)
}

// queueSideEffects hands notifications and the realtime broadcast to the
// dispatcher. Nothing here can fail the request.
func (a *AttendanceServiceImpl) queueSideEffects(ctx context.Context, kind attendance.EventType, record attendance.Record, ts time.Time) {
	emp, err := a.EmployeeRepository.GetByID(ctx, record.EmployeeID)
	if err != nil {
		slog.Warn("Skipping attendance side effects, employee lookup failed",
			"employee_id", record.EmployeeID,
			"error", err,
		)
		return
	}

	eventType := realtime.EventCheckIn
	if kind == attendance.EventOut {
		eventType = realtime.EventCheckOut
	}
	evt := realtime.Event{
		Type:         eventType,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Timestamp:    ts,
		Notes:        record.Notes,
	}

	tasks := make([]notification.Task, 0, 3)

	if emp.Email != "" {
		msg := notification.SendEmailRequest{
			To:      emp.Email,
			Subject: emailSubject(kind),
			Body:    emailBody(emp, record, a.loc),
		}
		tasks = append(tasks, notification.Task{
			Channel: notification.ChannelEmail,
			Subject: fmt.Sprintf("attendance %s email for employee %d", kind, emp.ID),
			Run: func(ctx context.Context) error {
				return notificationService.ResultError(a.gateway.SendEmailIfEnabled(ctx, msg))
			},
		})
	}

	if emp.HasPhone() {
		msg := notification.SendWhatsAppRequest{
			To:      *emp.Phone,
			Message: whatsAppBody(emp, record, a.loc),
		}
		tasks = append(tasks, notification.Task{
			Channel: notification.ChannelWhatsApp,
			Subject: fmt.Sprintf("attendance %s whatsapp for employee %d", kind, emp.ID),
			Run: func(ctx context.Context) error {
				return notificationService.ResultError(a.gateway.SendWhatsAppIfEnabled(ctx, msg))
			},
		})
	}

	tasks = append(tasks, notification.Task{
		Channel: notification.ChannelBroadcast,
		Subject: fmt.Sprintf("attendance %s broadcast for employee %d", kind, emp.ID),
		Run: func(ctx context.Context) error {
			a.publisher.Publish(evt)
			return nil
		},
	})

	for _, task := range tasks {
		if err := a.dispatcher.Enqueue(task); err != nil {
			slog.Warn("Failed to queue attendance side effect",
				"channel", task.Channel,
				"employee_id", emp.ID,
				"error", err,
			)
		}
	}
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	resp := attendance.ListAttendanceResponse{
		Records: make([]attendance.AttendanceResponse, 0, len(records)),
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}
	for _, r := range records {
		resp.Records = append(resp.Records, attendance.NewAttendanceResponse(r))
	}
	return resp, nil
}

// GetSummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetSummary(ctx context.Context, filter attendance.SummaryFilter) (attendance.SummaryResponse, error) {
	filter.Normalize()

	summaries, total, err := a.AttendanceRepository.Summary(ctx, filter)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}
	if summaries == nil {
		summaries = []attendance.EmployeeSummary{}
	}
	return attendance.SummaryResponse{
		Summaries: summaries,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}, nil
}

func isStateError(err error) bool {
	return errors.Is(err, attendance.ErrDuplicateCheckIn) ||
		errors.Is(err, attendance.ErrMissingCheckIn) ||
		errors.Is(err, attendance.ErrDuplicateCheckOut)
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *AttendanceServiceImpl) { a.now = now }
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	settingsReader settings.Reader,
	gateway notification.Gateway,
	dispatcher notification.Dispatcher,
	publisher Publisher,
	loc *time.Location,
	opts ...Option,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	a := &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		settings:             settingsReader,
		gateway:              gateway,
		dispatcher:           dispatcher,
		publisher:            publisher,
		loc:                  loc,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
