package settings

import "context"

type AttendanceSettingsRepository interface {
	// Get returns ErrSettingsNotFound when the singleton row is absent.
	Get(ctx context.Context) (AttendanceSettings, error)
	Update(ctx context.Context, s AttendanceSettings) (AttendanceSettings, error)
}

type SystemSettingsRepository interface {
	// Get returns (nil, nil) when nothing has been saved yet.
	Get(ctx context.Context) (*SystemSettings, error)
	Upsert(ctx context.Context, s SystemSettings) (SystemSettings, error)
}
