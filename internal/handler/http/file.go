package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type FileHandler interface {
	UploadAttendance(w http.ResponseWriter, r *http.Request)
	ListAttendance(w http.ResponseWriter, r *http.Request)
	DownloadAttendance(w http.ResponseWriter, r *http.Request)
}

type fileHandlerImpl struct {
	fileService file.FileService
}

func NewFileHandler(fileService file.FileService) FileHandler {
	return &fileHandlerImpl{fileService: fileService}
}

// UploadAttendance handles POST /files/upload-attendance
func (h *fileHandlerImpl) UploadAttendance(w http.ResponseWriter, r *http.Request) {
	var req file.UploadAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.fileService.UploadAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "File uploaded", result)
}

// ListAttendance handles GET /files/attendance
func (h *fileHandlerImpl) ListAttendance(w http.ResponseWriter, r *http.Request) {
	result, err := h.fileService.ListAttendanceFiles(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// DownloadAttendance handles POST /files/download-attendance
func (h *fileHandlerImpl) DownloadAttendance(w http.ResponseWriter, r *http.Request) {
	var req file.DownloadAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.fileService.DownloadAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
