package settings

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceSettingsID is the fixed primary key of the attendance settings row.
const AttendanceSettingsID = 1

// AttendanceSettings holds the working-hours policy. The engine only reads
// WorkStartTime and WorkEndTime; the rest is descriptive.
type AttendanceSettings struct {
	ID                         int
	WorkStartTime              string
	WorkEndTime                string
	LateThresholdMinutes       int
	EarlyLeaveThresholdMinutes int
	WorkingDaysPerWeek         int
	WeekendDays                []string
	HolidayDates               []string
	OvertimeEnabled            bool
	OvertimeRate               decimal.Decimal
	BreakDurationMinutes       int
	UpdatedAt                  time.Time
}

// WorkStartOn returns the configured start of the working day on the given date.
func (s AttendanceSettings) WorkStartOn(date time.Time, loc *time.Location) (time.Time, error) {
	return CombineDateClock(date, s.WorkStartTime, loc)
}

// WorkEndOn returns the configured end of the working day on the given date.
func (s AttendanceSettings) WorkEndOn(date time.Time, loc *time.Location) (time.Time, error) {
	return CombineDateClock(date, s.WorkEndTime, loc)
}

// CombineDateClock places a "HH:MM" or "HH:MM:SS" clock value on the calendar
// day of date, interpreted in loc.
func CombineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	var h, m, s int
	var err error
	switch len(clock) {
	case len("15:04"):
		_, err = fmt.Sscanf(clock, "%02d:%02d", &h, &m)
	case len("15:04:05"):
		_, err = fmt.Sscanf(clock, "%02d:%02d:%02d", &h, &m, &s)
	default:
		err = fmt.Errorf("unexpected length")
	}
	if err != nil || h > 23 || m > 59 || s > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}

	y, mo, d := date.Date()
	return time.Date(y, mo, d, h, m, s, 0, loc), nil
}

// SystemSettings holds company-wide preferences and the notification flags.
type SystemSettings struct {
	CompanyName           string
	CompanyLogo           *string
	Timezone              string
	DateFormat            string
	TimeFormat            string
	Currency              string
	Language              string
	EmailNotifications    bool
	SMSNotifications      bool
	WhatsAppNotifications bool
	AutoBackup            bool
	BackupFrequency       string
	DataRetentionDays     int
	UpdatedAt             time.Time
}

// DefaultSystemSettings is used until an administrator saves settings.
func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		CompanyName:           " Corp",
		Timezone:              "UTC",
		DateFormat:            "MM/DD/YYYY",
		TimeFormat:            "12h",
		Currency:              "USD",
		Language:              "en",
		EmailNotifications:    true,
		SMSNotifications:      false,
		WhatsAppNotifications: true,
		AutoBackup:            true,
		BackupFrequency:       "daily",
		DataRetentionDays:     365,
	}
}
