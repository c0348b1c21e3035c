package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	ProcessFiles(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	fileProcessor     attendance.FileProcessor
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, fileProcessor attendance.FileProcessor) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		fileProcessor:     fileProcessor,
	}
}

// Record handles POST /attendance/record
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.RecordAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Check-in recorded"
	if req.Type == attendance.EventOut {
		message = "Check-out recorded"
	}
	response.Created(w, message, result)
}

// List handles GET /attendance
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := getOptionalInt64Query(r, "employeeId")
	if !ok {
		response.BadRequest(w, "employeeId must be a number", nil)
		return
	}

	filter := attendance.AttendanceFilter{
		EmployeeID: employeeID,
		StartDate:  getOptionalStringQuery(r, "startDate"),
		EndDate:    getOptionalStringQuery(r, "endDate"),
		Limit:      getIntQueryParam(r, "limit", attendance.DefaultListLimit),
		Offset:     getIntQueryParam(r, "offset", 0),
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Limit:      result.Limit,
		Offset:     result.Offset,
		TotalItems: result.Total,
	})
}

// Summary handles GET /attendance/summary
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := getOptionalInt64Query(r, "employeeId")
	if !ok {
		response.BadRequest(w, "employeeId must be a number", nil)
		return
	}

	result, err := h.attendanceService.GetSummary(r.Context(), attendance.SummaryFilter{
		EmployeeID: employeeID,
		Limit:      getIntQueryParam(r, "limit", attendance.DefaultListLimit),
		Offset:     getIntQueryParam(r, "offset", 0),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Limit:      result.Limit,
		Offset:     result.Offset,
		TotalItems: result.Total,
	})
}

// ProcessFiles handles POST /attendance/process-files
func (h *attendanceHandlerImpl) ProcessFiles(w http.ResponseWriter, r *http.Request) {
	result, err := h.fileProcessor.ProcessFiles(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}
