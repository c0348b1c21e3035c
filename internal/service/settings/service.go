package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
)

type SettingsServiceImpl struct {
	attendanceRepo settings.AttendanceSettingsRepository
	systemRepo     settings.SystemSettingsRepository
	fileService    file.FileService
}

// NewSettingsService returns a service that also satisfies settings.Reader.
func NewSettingsService(
	attendanceRepo settings.AttendanceSettingsRepository,
	systemRepo settings.SystemSettingsRepository,
	fileService file.FileService,
) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		attendanceRepo: attendanceRepo,
		systemRepo:     systemRepo,
		fileService:    fileService,
	}
}

var (
	_ settings.SettingsService = (*SettingsServiceImpl)(nil)
	_ settings.Reader          = (*SettingsServiceImpl)(nil)
)

// AttendanceSettings implements settings.Reader.
func (s *SettingsServiceImpl) AttendanceSettings(ctx context.Context) (settings.AttendanceSettings, error) {
	return s.attendanceRepo.Get(ctx)
}

// SystemSettings implements settings.Reader.
func (s *SettingsServiceImpl) SystemSettings(ctx context.Context) (settings.SystemSettings, error) {
	stored, err := s.systemRepo.Get(ctx)
	if err != nil {
		return settings.SystemSettings{}, err
	}
	if stored == nil {
		return settings.DefaultSystemSettings(), nil
	}
	return *stored, nil
}

// GetAttendanceSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) GetAttendanceSettings(ctx context.Context) (settings.AttendanceSettingsResponse, error) {
	current, err := s.attendanceRepo.Get(ctx)
	if err != nil {
		return settings.AttendanceSettingsResponse{}, err
	}
	return settings.NewAttendanceSettingsResponse(current), nil
}

// UpdateAttendanceSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) UpdateAttendanceSettings(ctx context.Context, req settings.UpdateAttendanceSettingsRequest) (settings.AttendanceSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.AttendanceSettingsResponse{}, err
	}

	updated, err := s.attendanceRepo.Update(ctx, req.ToEntity())
	if err != nil {
		return settings.AttendanceSettingsResponse{}, err
	}

	slog.Info("Attendance settings updated",
		"work_start_time", updated.WorkStartTime,
		"work_end_time", updated.WorkEndTime,
	)
	return settings.NewAttendanceSettingsResponse(updated), nil
}

// GetSystemSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) GetSystemSettings(ctx context.Context) (settings.SystemSettingsResponse, error) {
	current, err := s.SystemSettings(ctx)
	if err != nil {
		return settings.SystemSettingsResponse{}, err
	}
	return settings.NewSystemSettingsResponse(current), nil
}

// UpdateSystemSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) UpdateSystemSettings(ctx context.Context, req settings.UpdateSystemSettingsRequest) (settings.SystemSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SystemSettingsResponse{}, err
	}

	next := req.ToEntity()
	if next.CompanyLogo == nil {
		// The logo is managed by its own upload endpoint
		current, err := s.SystemSettings(ctx)
		if err != nil {
			return settings.SystemSettingsResponse{}, err
		}
		next.CompanyLogo = current.CompanyLogo
	}

	saved, err := s.systemRepo.Upsert(ctx, next)
	if err != nil {
		return settings.SystemSettingsResponse{}, err
	}

	slog.Info("System settings updated",
		"email_notifications", saved.EmailNotifications,
		"whatsapp_notifications", saved.WhatsAppNotifications,
	)
	return settings.NewSystemSettingsResponse(saved), nil
}

// UploadCompanyLogo implements settings.SettingsService.
func (s *SettingsServiceImpl) UploadCompanyLogo(ctx context.Context, req settings.UploadLogoRequest) (settings.SystemSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SystemSettingsResponse{}, err
	}

	url, err := s.fileService.UploadCompanyLogo(ctx, req.File, req.Filename)
	if err != nil {
		return settings.SystemSettingsResponse{}, fmt.Errorf("failed to upload company logo: %w", err)
	}

	current, err := s.SystemSettings(ctx)
	if err != nil {
		return settings.SystemSettingsResponse{}, err
	}
	current.CompanyLogo = &url

	saved, err := s.systemRepo.Upsert(ctx, current)
	if err != nil {
		return settings.SystemSettingsResponse{}, err
	}
	return settings.NewSystemSettingsResponse(saved), nil
}
