package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TIME, DATE[] and NUMERIC columns travel as text so the domain keeps its
// "HH:MM:SS", "YYYY-MM-DD" and exact decimal forms.
const attendanceSettingsColumns = `id, work_start_time::text, work_end_time::text,
	late_threshold_minutes, early_leave_threshold_minutes, working_days_per_week,
	weekend_days, holiday_dates::text[], overtime_enabled, overtime_rate::text,
	break_duration_minutes, updated_at`

type attendanceSettingsRepository struct {
	db *database.DB
}

func NewAttendanceSettingsRepository(db *database.DB) settings.AttendanceSettingsRepository {
	return &attendanceSettingsRepository{db: db}
}

func scanAttendanceSettings(row pgx.Row) (settings.AttendanceSettings, error) {
	var s settings.AttendanceSettings
	var rate string
	err := row.Scan(
		&s.ID, &s.WorkStartTime, &s.WorkEndTime,
		&s.LateThresholdMinutes, &s.EarlyLeaveThresholdMinutes, &s.WorkingDaysPerWeek,
		&s.WeekendDays, &s.HolidayDates, &s.OvertimeEnabled, &rate,
		&s.BreakDurationMinutes, &s.UpdatedAt,
	)
	if err != nil {
		return settings.AttendanceSettings{}, err
	}
	if s.OvertimeRate, err = decimal.NewFromString(rate); err != nil {
		return settings.AttendanceSettings{}, fmt.Errorf("invalid overtime rate %q: %w", rate, err)
	}
	return s, nil
}

// Get implements settings.AttendanceSettingsRepository.
func (r *attendanceSettingsRepository) Get(ctx context.Context) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceSettingsColumns + ` FROM attendance_settings WHERE id = $1`
	s, err := scanAttendanceSettings(q.QueryRow(ctx, query, settings.AttendanceSettingsID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
		}
		return settings.AttendanceSettings{}, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	return s, nil
}

// Update implements settings.AttendanceSettingsRepository.
func (r *attendanceSettingsRepository) Update(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_settings
		SET work_start_time = $2::text::time,
			work_end_time = $3::text::time,
			late_threshold_minutes = $4,
			early_leave_threshold_minutes = $5,
			working_days_per_week = $6,
			weekend_days = $7::text[],
			holiday_dates = $8::text[]::date[],
			overtime_enabled = $9,
			overtime_rate = $10::text::numeric,
			break_duration_minutes = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + attendanceSettingsColumns

	updated, err := scanAttendanceSettings(q.QueryRow(ctx, query,
		settings.AttendanceSettingsID,
		s.WorkStartTime,
		s.WorkEndTime,
		s.LateThresholdMinutes,
		s.EarlyLeaveThresholdMinutes,
		s.WorkingDaysPerWeek,
		s.WeekendDays,
		s.HolidayDates,
		s.OvertimeEnabled,
		s.OvertimeRate.String(),
		s.BreakDurationMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
		}
		return settings.AttendanceSettings{}, fmt.Errorf("failed to update attendance settings: %w", err)
	}
	return updated, nil
}

const systemSettingsColumns = `company_name, company_logo, timezone, date_format, time_format,
	currency, language, email_notifications, sms_notifications, whatsapp_notifications,
	auto_backup, backup_frequency, data_retention_days, updated_at`

type systemSettingsRepository struct {
	db *database.DB
}

func NewSystemSettingsRepository(db *database.DB) settings.SystemSettingsRepository {
	return &systemSettingsRepository{db: db}
}

func scanSystemSettings(row pgx.Row) (settings.SystemSettings, error) {
	var s settings.SystemSettings
	err := row.Scan(
		&s.CompanyName, &s.CompanyLogo, &s.Timezone, &s.DateFormat, &s.TimeFormat,
		&s.Currency, &s.Language, &s.EmailNotifications, &s.SMSNotifications, &s.WhatsAppNotifications,
		&s.AutoBackup, &s.BackupFrequency, &s.DataRetentionDays, &s.UpdatedAt,
	)
	return s, err
}

// Get implements settings.SystemSettingsRepository.
func (r *systemSettingsRepository) Get(ctx context.Context) (*settings.SystemSettings, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSystemSettings(q.QueryRow(ctx, `SELECT `+systemSettingsColumns+` FROM system_settings WHERE id = 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Never saved
		}
		return nil, fmt.Errorf("failed to get system settings: %w", err)
	}
	return &s, nil
}

// Upsert implements settings.SystemSettingsRepository.
func (r *systemSettingsRepository) Upsert(ctx context.Context, s settings.SystemSettings) (settings.SystemSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO system_settings (
			id, company_name, company_logo, timezone, date_format, time_format,
			currency, language, email_notifications, sms_notifications, whatsapp_notifications,
			auto_backup, backup_frequency, data_retention_days, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			company_logo = EXCLUDED.company_logo,
			timezone = EXCLUDED.timezone,
			date_format = EXCLUDED.date_format,
			time_format = EXCLUDED.time_format,
			currency = EXCLUDED.currency,
			language = EXCLUDED.language,
			email_notifications = EXCLUDED.email_notifications,
			sms_notifications = EXCLUDED.sms_notifications,
			whatsapp_notifications = EXCLUDED.whatsapp_notifications,
			auto_backup = EXCLUDED.auto_backup,
			backup_frequency = EXCLUDED.backup_frequency,
			data_retention_days = EXCLUDED.data_retention_days,
			updated_at = NOW()
		RETURNING ` + systemSettingsColumns

	saved, err := scanSystemSettings(q.QueryRow(ctx, query,
		s.CompanyName, s.CompanyLogo, s.Timezone, s.DateFormat, s.TimeFormat,
		s.Currency, s.Language, s.EmailNotifications, s.SMSNotifications, s.WhatsAppNotifications,
		s.AutoBackup, s.BackupFrequency, s.DataRetentionDays,
	))
	if err != nil {
		return settings.SystemSettings{}, fmt.Errorf("failed to save system settings: %w", err)
	}
	return saved, nil
}
