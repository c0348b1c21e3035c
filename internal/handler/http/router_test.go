package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// FAKES
// ========================================

type stubAttendanceService struct {
	recordErr  error
	lastRecord attendance.RecordAttendanceRequest
	lastFilter attendance.AttendanceFilter
}

func (s *stubAttendanceService) RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.AttendanceResponse, error) {
	s.lastRecord = req
	if s.recordErr != nil {
		return attendance.AttendanceResponse{}, s.recordErr
	}
	return attendance.AttendanceResponse{ID: 1, EmployeeID: req.EmployeeID, Date: "2024-03-04", Status: attendance.StatusPresent}, nil
}

func (s *stubAttendanceService) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	s.lastFilter = filter
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return attendance.ListAttendanceResponse{
		Records: []attendance.AttendanceResponse{},
		Total:   42,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func (s *stubAttendanceService) GetSummary(ctx context.Context, filter attendance.SummaryFilter) (attendance.SummaryResponse, error) {
	filter.Normalize()
	return attendance.SummaryResponse{
		Summaries: []attendance.EmployeeSummary{},
		Total:     7,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}, nil
}

type stubProcessor struct {
	err error
}

func (p stubProcessor) ProcessFiles(ctx context.Context) (attendance.ProcessFilesResponse, error) {
	if p.err != nil {
		return attendance.ProcessFilesResponse{}, p.err
	}
	return attendance.ProcessFilesResponse{Success: true, Message: "No new attendance files to process."}, nil
}

type stubEmployeeService struct {
	employee.EmployeeService
	lastUpdate employee.UpdateEmployeeRequest
}

func (s *stubEmployeeService) GetEmployee(ctx context.Context, id int64) (employee.EmployeeResponse, error) {
	if id != 7 {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	return employee.EmployeeResponse{ID: 7, Name: "Asha Rao"}, nil
}

func (s *stubEmployeeService) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	s.lastUpdate = req
	return employee.EmployeeResponse{ID: req.ID}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) GetStats(ctx context.Context) (dashboard.DashboardStats, error) {
	return dashboard.DashboardStats{TotalEmployees: 3, PresentToday: 2, AbsentToday: 1}, nil
}

type stubSettingsService struct {
	settings.SettingsService
	logoName string
	logoSize int64
}

func (s *stubSettingsService) UploadCompanyLogo(ctx context.Context, req settings.UploadLogoRequest) (settings.SystemSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SystemSettingsResponse{}, err
	}
	s.logoName = req.Filename
	s.logoSize = req.Size
	return settings.SystemSettingsResponse{}, nil
}

type stubFileService struct {
	file.FileService
}

func (stubFileService) DownloadAttendance(ctx context.Context, req file.DownloadAttendanceRequest) (file.DownloadAttendanceResponse, error) {
	return file.DownloadAttendanceResponse{}, file.ErrFileNotFound
}

type stubGateway struct {
	notification.Gateway
	emailResult notification.Result
}

func (g stubGateway) SendEmail(ctx context.Context, req notification.SendEmailRequest) notification.Result {
	return g.emailResult
}

type stubDispatcher struct {
	notification.Dispatcher
}

func (stubDispatcher) Stats() notification.Stats {
	return notification.Stats{Enqueued: 4, Delivered: 3, Failed: 1}
}

type testServer struct {
	router     http.Handler
	attendance *stubAttendanceService
	employees  *stubEmployeeService
	settings   *stubSettingsService
	gateway    *stubGateway
	hub        *realtime.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithUploads(t, "")
}

func newTestServerWithUploads(t *testing.T, uploadsDir string) *testServer {
	t.Helper()

	ts := &testServer{
		attendance: &stubAttendanceService{},
		employees:  &stubEmployeeService{},
		settings:   &stubSettingsService{},
		gateway:    &stubGateway{emailResult: notification.Result{Success: true}},
		hub:        realtime.NewHub(0),
	}
	t.Cleanup(ts.hub.Close)

	ts.router = NewRouter(
		RouterConfig{
			App:        config.AppConfig{Env: "test", FrontendURL: []string{"http://localhost:3000"}},
			UploadsDir: uploadsDir,
		},
		NewAttendanceHandler(ts.attendance, stubProcessor{}),
		NewEmployeeHandler(ts.employees),
		NewDashboardHandler(stubDashboardService{}),
		NewSettingsHandler(ts.settings),
		NewFileHandler(stubFileService{}),
		NewNotificationHandler(ts.gateway, stubDispatcher{}),
		NewRealtimeHandler(ts.hub, nil),
	)
	return ts
}

func (ts *testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ========================================
// ATTENDANCE
// ========================================

func TestRecordAttendance(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/attendance/record", `{"employeeId":7,"type":"in","notes":"gate 2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Check-in recorded", resp.Message)
	assert.Equal(t, int64(7), ts.attendance.lastRecord.EmployeeID)
	require.NotNil(t, ts.attendance.lastRecord.Notes)
	assert.Equal(t, "gate 2", *ts.attendance.lastRecord.Notes)
}

func TestRecordAttendance_StateErrorIsConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.attendance.recordErr = attendance.ErrDuplicateCheckIn

	rec := ts.do(http.MethodPost, "/attendance/record", `{"employeeId":7,"type":"in"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeBody(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Employee has already checked in today", resp.Error.Message)
}

func TestRecordAttendance_BadBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/attendance/record", `{"employeeId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/attendance/record", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAttendance_QueryParams(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/attendance?employeeId=3&startDate=2024-03-01&endDate=2024-03-31&limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f := ts.attendance.lastFilter
	require.NotNil(t, f.EmployeeID)
	assert.Equal(t, int64(3), *f.EmployeeID)
	assert.Equal(t, "2024-03-01", *f.StartDate)
	assert.Equal(t, "2024-03-31", *f.EndDate)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset)

	meta := decodeBody(t, rec).Meta
	require.NotNil(t, meta)
	assert.Equal(t, 10, meta.Limit)
	assert.Equal(t, 20, meta.Offset)
	assert.Equal(t, int64(42), meta.TotalItems)

	rec = ts.do(http.MethodGet, "/attendance?employeeId=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/attendance?startDate=2024-04-01&endDate=2024-03-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceSummary_Meta(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/attendance/summary?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 5, resp.Meta.Limit)
	assert.Zero(t, resp.Meta.Offset)
	assert.Equal(t, int64(7), resp.Meta.TotalItems)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, data, "limit")
}

func TestProcessFiles(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/attendance/process-files", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No new attendance files to process.", decodeBody(t, rec).Message)
}

// ========================================
// EMPLOYEES / DASHBOARD / FILES
// ========================================

func TestGetEmployee(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/employees/7", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/employees/8", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/employees/x", "").Code)
}

func TestUpdateEmployee_UsesPathID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPut, "/api/v1/employees/7", `{"name":"Asha R"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), ts.employees.lastUpdate.ID)
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data dashboard.DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Data.TotalEmployees)
}

func TestDownloadAttendance_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/files/download-attendance", `{"fileName":"2024-03-04.xlsx"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", decodeBody(t, rec).Error.Message)
}

// ========================================
// SETTINGS
// ========================================

func multipartLogo(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadLogo(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartLogo(t, "logo", "acme.png", []byte("not really a png"))
	req := httptest.NewRequest(http.MethodPost, "/settings/system/logo", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme.png", ts.settings.logoName)
	assert.Equal(t, int64(16), ts.settings.logoSize)
}

func TestUploadLogo_Rejections(t *testing.T) {
	ts := newTestServer(t)

	t.Run("wrong type", func(t *testing.T) {
		body, contentType := multipartLogo(t, "logo", "acme.gif", []byte("GIF89a"))
		req := httptest.NewRequest(http.MethodPost, "/settings/system/logo", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		body, contentType := multipartLogo(t, "image", "acme.png", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/settings/system/logo", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		body, contentType := multipartLogo(t, "logo", "acme.png", bytes.Repeat([]byte{0}, settings.MaxLogoSize+(2<<20)))
		req := httptest.NewRequest(http.MethodPost, "/settings/system/logo", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "5MB")
	})
}

// ========================================
// NOTIFICATIONS
// ========================================

func TestSendEmail(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/notifications/email", `{"to":"a@example.com","subject":"Hi","body":"Hello"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/notifications/email", `{"to":"nope","subject":"Hi","body":"Hello"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	ts.gateway.emailResult = notification.Result{Success: false, Error: "smtp down"}
	rec = ts.do(http.MethodPost, "/notifications/email", `{"to":"a@example.com","subject":"Hi","body":"Hello"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "smtp down", decodeBody(t, rec).Error.Message)
}

func TestNotificationStats(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/notifications/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data notification.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(4), body.Data.Enqueued)
	assert.Equal(t, uint64(1), body.Data.Failed)
}

// ========================================
// REALTIME
// ========================================

func TestBroadcast(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/realtime/broadcast", `{"type":"update","employeeId":1,"employeeName":"Asha"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/realtime/broadcast", `{"type":"teleport"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStream_ReceivesBroadcast(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/realtime/attendance?userId=u1", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return ts.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	ts.hub.Publish(realtime.Event{Type: realtime.EventCheckIn, EmployeeID: 1, EmployeeName: "Asha", Timestamp: time.Now()})

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	var evt realtime.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &evt))
	assert.Equal(t, "checkin", evt.Type)

	cancel()
	assert.Eventually(t, func() bool { return ts.hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWebSocket_ReceivesBroadcast(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/realtime/attendance/ws?userId=u2"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return ts.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	var got realtime.Event
	go func() {
		defer wg.Done()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_ = conn.ReadJSON(&got)
	}()

	ts.hub.Publish(realtime.Event{Type: realtime.EventCheckOut, EmployeeID: 2, Timestamp: time.Now()})
	wg.Wait()
	assert.Equal(t, "checkout", got.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return ts.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// ========================================
// UPLOADS
// ========================================

func TestUploads_ServesLogosOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, settings.LogoFolder), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "attendance"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, settings.LogoFolder, "acme.png"), []byte("png-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "attendance", "2024-03-04.xlsx"), []byte("sheet"), 0o644))

	ts := newTestServerWithUploads(t, dir)

	rec := ts.do(http.MethodGet, "/uploads/logos/acme.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	for _, path := range []string{
		"/uploads/attendance/2024-03-04.xlsx",
		"/uploads/logos/",
		"/uploads/",
		"/uploads/logos/../attendance/2024-03-04.xlsx",
	} {
		rec := ts.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "sheet", path)
		assert.NotContains(t, rec.Body.String(), "acme.png", path)
	}
}

