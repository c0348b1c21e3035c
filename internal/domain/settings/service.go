package settings

import "context"

// SettingsService exposes the attendance policy and the system preferences.
type SettingsService interface {
	GetAttendanceSettings(ctx context.Context) (AttendanceSettingsResponse, error)
	UpdateAttendanceSettings(ctx context.Context, req UpdateAttendanceSettingsRequest) (AttendanceSettingsResponse, error)

	// GetSystemSettings falls back to DefaultSystemSettings when nothing is stored.
	GetSystemSettings(ctx context.Context) (SystemSettingsResponse, error)
	UpdateSystemSettings(ctx context.Context, req UpdateSystemSettingsRequest) (SystemSettingsResponse, error)

	// UploadCompanyLogo stores a downscaled PNG and records its URL.
	UploadCompanyLogo(ctx context.Context, req UploadLogoRequest) (SystemSettingsResponse, error)
}

// Reader is the read-only view used by the attendance engine and the
// notification gateway.
type Reader interface {
	AttendanceSettings(ctx context.Context) (AttendanceSettings, error)
	SystemSettings(ctx context.Context) (SystemSettings, error)
}
