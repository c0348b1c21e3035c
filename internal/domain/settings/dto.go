package settings

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpdateAttendanceSettingsRequest struct {
	WorkStartTime              string          `json:"workStartTime" validate:"required,clock"`
	WorkEndTime                string          `json:"workEndTime" validate:"required,clock"`
	LateThresholdMinutes       int             `json:"lateThresholdMinutes" validate:"gte=0"`
	EarlyLeaveThresholdMinutes int             `json:"earlyLeaveThresholdMinutes" validate:"gte=0"`
	WorkingDaysPerWeek         int             `json:"workingDaysPerWeek" validate:"gte=1,lte=7"`
	WeekendDays                []string        `json:"weekendDays" validate:"dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	HolidayDates               []string        `json:"holidayDates" validate:"dive,datetime=2006-01-02"`
	OvertimeEnabled            bool            `json:"overtimeEnabled"`
	OvertimeRate               decimal.Decimal `json:"overtimeRate"`
	BreakDurationMinutes       int             `json:"breakDurationMinutes" validate:"gte=0"`
}

func (r *UpdateAttendanceSettingsRequest) Validate() error {
	err := validator.Struct(r)

	var errs validator.ValidationErrors
	if err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = ve
	}

	if r.OvertimeRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "overtimeRate",
			Message: "overtimeRate must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntity builds the settings row written by an update.
func (r UpdateAttendanceSettingsRequest) ToEntity() AttendanceSettings {
	weekend := r.WeekendDays
	if weekend == nil {
		weekend = []string{}
	}
	holidays := r.HolidayDates
	if holidays == nil {
		holidays = []string{}
	}
	return AttendanceSettings{
		ID:                         AttendanceSettingsID,
		WorkStartTime:              r.WorkStartTime,
		WorkEndTime:                r.WorkEndTime,
		LateThresholdMinutes:       r.LateThresholdMinutes,
		EarlyLeaveThresholdMinutes: r.EarlyLeaveThresholdMinutes,
		WorkingDaysPerWeek:         r.WorkingDaysPerWeek,
		WeekendDays:                weekend,
		HolidayDates:               holidays,
		OvertimeEnabled:            r.OvertimeEnabled,
		OvertimeRate:               r.OvertimeRate.Round(2),
		BreakDurationMinutes:       r.BreakDurationMinutes,
	}
}

type AttendanceSettingsResponse struct {
	ID                         int       `json:"id"`
	WorkStartTime              string    `json:"workStartTime"`
	WorkEndTime                string    `json:"workEndTime"`
	LateThresholdMinutes       int       `json:"lateThresholdMinutes"`
	EarlyLeaveThresholdMinutes int       `json:"earlyLeaveThresholdMinutes"`
	WorkingDaysPerWeek         int       `json:"workingDaysPerWeek"`
	WeekendDays                []string  `json:"weekendDays"`
	HolidayDates               []string  `json:"holidayDates"`
	OvertimeEnabled            bool      `json:"overtimeEnabled"`
	OvertimeRate               float64   `json:"overtimeRate"`
	BreakDurationMinutes       int       `json:"breakDurationMinutes"`
	UpdatedAt                  time.Time `json:"updatedAt"`
}

func NewAttendanceSettingsResponse(s AttendanceSettings) AttendanceSettingsResponse {
	return AttendanceSettingsResponse{
		ID:                         s.ID,
		WorkStartTime:              s.WorkStartTime,
		WorkEndTime:                s.WorkEndTime,
		LateThresholdMinutes:       s.LateThresholdMinutes,
		EarlyLeaveThresholdMinutes: s.EarlyLeaveThresholdMinutes,
		WorkingDaysPerWeek:         s.WorkingDaysPerWeek,
		WeekendDays:                s.WeekendDays,
		HolidayDates:               s.HolidayDates,
		OvertimeEnabled:            s.OvertimeEnabled,
		OvertimeRate:               s.OvertimeRate.InexactFloat64(),
		BreakDurationMinutes:       s.BreakDurationMinutes,
		UpdatedAt:                  s.UpdatedAt,
	}
}

type UpdateSystemSettingsRequest struct {
	CompanyName           string  `json:"companyName" validate:"required,max=255"`
	CompanyLogo           *string `json:"companyLogo,omitempty"`
	Timezone              string  `json:"timezone" validate:"required"`
	DateFormat            string  `json:"dateFormat" validate:"required,max=32"`
	TimeFormat            string  `json:"timeFormat" validate:"required,oneof=12h 24h"`
	Currency              string  `json:"currency" validate:"required,len=3"`
	Language              string  `json:"language" validate:"required,min=2,max=10"`
	EmailNotifications    bool    `json:"emailNotifications"`
	SMSNotifications      bool    `json:"smsNotifications"`
	WhatsAppNotifications bool    `json:"whatsappNotifications"`
	AutoBackup            bool    `json:"autoBackup"`
	BackupFrequency       string  `json:"backupFrequency" validate:"required,oneof=daily weekly monthly"`
	DataRetentionDays     int     `json:"dataRetentionDays" validate:"gte=1"`
}

func (r *UpdateSystemSettingsRequest) Validate() error {
	err := validator.Struct(r)

	var errs validator.ValidationErrors
	if err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = ve
	}

	if r.Timezone != "" {
		if _, lerr := time.LoadLocation(r.Timezone); lerr != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "timezone",
				Message: "timezone must be a valid IANA time zone",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r UpdateSystemSettingsRequest) ToEntity() SystemSettings {
	return SystemSettings{
		CompanyName:           r.CompanyName,
		CompanyLogo:           r.CompanyLogo,
		Timezone:              r.Timezone,
		DateFormat:            r.DateFormat,
		TimeFormat:            r.TimeFormat,
		Currency:              strings.ToUpper(r.Currency),
		Language:              r.Language,
		EmailNotifications:    r.EmailNotifications,
		SMSNotifications:      r.SMSNotifications,
		WhatsAppNotifications: r.WhatsAppNotifications,
		AutoBackup:            r.AutoBackup,
		BackupFrequency:       r.BackupFrequency,
		DataRetentionDays:     r.DataRetentionDays,
	}
}

type SystemSettingsResponse struct {
	CompanyName           string  `json:"companyName"`
	CompanyLogo           *string `json:"companyLogo,omitempty"`
	Timezone              string  `json:"timezone"`
	DateFormat            string  `json:"dateFormat"`
	TimeFormat            string  `json:"timeFormat"`
	Currency              string  `json:"currency"`
	Language              string  `json:"language"`
	EmailNotifications    bool    `json:"emailNotifications"`
	SMSNotifications      bool    `json:"smsNotifications"`
	WhatsAppNotifications bool    `json:"whatsappNotifications"`
	AutoBackup            bool    `json:"autoBackup"`
	BackupFrequency       string  `json:"backupFrequency"`
	DataRetentionDays     int     `json:"dataRetentionDays"`
}

func NewSystemSettingsResponse(s SystemSettings) SystemSettingsResponse {
	return SystemSettingsResponse{
		CompanyName:           s.CompanyName,
		CompanyLogo:           s.CompanyLogo,
		Timezone:              s.Timezone,
		DateFormat:            s.DateFormat,
		TimeFormat:            s.TimeFormat,
		Currency:              s.Currency,
		Language:              s.Language,
		EmailNotifications:    s.EmailNotifications,
		SMSNotifications:      s.SMSNotifications,
		WhatsAppNotifications: s.WhatsAppNotifications,
		AutoBackup:            s.AutoBackup,
		BackupFrequency:       s.BackupFrequency,
		DataRetentionDays:     s.DataRetentionDays,
	}
}

const (
	// MaxLogoSize caps company logo uploads.
	MaxLogoSize = 5 << 20
	// LogoFolder is the storage prefix of processed logos.
	LogoFolder = "logos"
)

type UploadLogoRequest struct {
	File     io.Reader
	Filename string
	Size     int64
}

func (r *UploadLogoRequest) Validate() error {
	ext := strings.ToLower(filepath.Ext(r.Filename))
	if r.File == nil || !validator.IsInSlice(ext, []string{".jpg", ".jpeg", ".png"}) {
		return ErrInvalidLogoType
	}
	if r.Size > MaxLogoSize {
		return ErrLogoTooLarge
	}
	return nil
}
