package http

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type SettingsHandler interface {
	GetAttendanceSettings(w http.ResponseWriter, r *http.Request)
	UpdateAttendanceSettings(w http.ResponseWriter, r *http.Request)
	GetSystemSettings(w http.ResponseWriter, r *http.Request)
	UpdateSystemSettings(w http.ResponseWriter, r *http.Request)
	UploadLogo(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.SettingsService
}

func NewSettingsHandler(settingsService settings.SettingsService) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

// GetAttendanceSettings handles GET /settings/attendance
func (h *settingsHandlerImpl) GetAttendanceSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.GetAttendanceSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateAttendanceSettings handles PUT /settings/attendance
func (h *settingsHandlerImpl) UpdateAttendanceSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateAttendanceSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.settingsService.UpdateAttendanceSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance settings updated", result)
}

// GetSystemSettings handles GET /settings/system
func (h *settingsHandlerImpl) GetSystemSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.GetSystemSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateSystemSettings handles PUT /settings/system
func (h *settingsHandlerImpl) UpdateSystemSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateSystemSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.settingsService.UpdateSystemSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "System settings updated", result)
}

// UploadLogo handles POST /settings/system/logo (multipart field "logo")
func (h *settingsHandlerImpl) UploadLogo(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	const maxBody = settings.MaxLogoSize + (1 << 20)
	if r.ContentLength > maxBody {
		response.HandleError(w, settings.ErrLogoTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(settings.MaxLogoSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, settings.ErrLogoTooLarge)
			return
		}
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("logo")
	if err != nil {
		response.BadRequest(w, "logo file is required", map[string]string{"logo": "logo is required"})
		return
	}
	defer file.Close()

	result, err := h.settingsService.UploadCompanyLogo(r.Context(), settings.UploadLogoRequest{
		File:     file,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Company logo updated", result)
}
