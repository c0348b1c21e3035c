package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	SMTP      SMTPConfig
	WhatsApp  WhatsAppConfig
	Storage   StorageConfig
	Realtime  RealtimeConfig
	Outbox    OutboxConfig
	Processor ProcessorConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL []string
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	RequireTLS bool
	Timeout    time.Duration
}

type WhatsAppConfig struct {
	APIKey             string
	SenderNumber       string
	DefaultCountryCode string
}

type StorageConfig struct {
	Type             string
	BasePath         string
	BaseURL          string
	AttendanceFolder string

	OSSEndpoint        string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSBucket          string
}

type RealtimeConfig struct {
	HeartbeatInterval time.Duration
}

// OutboxConfig tunes the notification dispatcher
type OutboxConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
}

type ProcessorConfig struct {
	Interval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	frontendURL := getEnvSlice("FRONTEND_URL")
	if len(frontendURL) == 0 {
		frontendURL = []string{"http://localhost:3000"}
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		FrontendURL: frontendURL,
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	smtpRequireTLS, err := strconv.ParseBool(getEnv("SMTP_REQUIRE_TLS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_REQUIRE_TLS: %w", err)
	}
	smtpTimeout, err := time.ParseDuration(getEnv("SMTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_TIMEOUT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:       getEnv("SMTP_HOST", ""),
		Port:       smtpPort,
		Username:   getEnv("SMTP_USER", ""),
		Password:   getEnv("SMTP_PASS", ""),
		From:       getEnv("SMTP_FROM", getEnv("SMTP_USER", "")),
		FromName:   getEnv("SMTP_FROM_NAME", "Attendance System"),
		RequireTLS: smtpRequireTLS,
		Timeout:    smtpTimeout,
	}

	// WhatsApp configuration
	config.WhatsApp = WhatsAppConfig{
		APIKey:             getEnv("INTERAKT_API_KEY", ""),
		SenderNumber:       getEnv("SENDER_WHATSAPP_NUMBER", ""),
		DefaultCountryCode: getEnv("WHATSAPP_DEFAULT_COUNTRY_CODE", "+91"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:               getEnv("STORAGE_TYPE", "local"),
		BasePath:           getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:            getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		AttendanceFolder:   getEnv("ATTENDANCE_FOLDER", "attendance"),
		OSSEndpoint:        getEnv("ALI_OSS_ENDPOINT", ""),
		OSSAccessKeyID:     getEnv("ALI_OSS_ACCESS_KEY", ""),
		OSSAccessKeySecret: getEnv("ALI_OSS_SECRET_KEY", ""),
		OSSBucket:          getEnv("ALI_OSS_BUCKET", "attendance-files"),
	}

	heartbeat, err := time.ParseDuration(getEnv("REALTIME_HEARTBEAT_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REALTIME_HEARTBEAT_INTERVAL: %w", err)
	}
	config.Realtime = RealtimeConfig{HeartbeatInterval: heartbeat}

	// Outbox configuration
	workers, err := strconv.Atoi(getEnv("OUTBOX_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid OUTBOX_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("OUTBOX_QUEUE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid OUTBOX_QUEUE_SIZE: %w", err)
	}
	maxAttempts, err := strconv.Atoi(getEnv("OUTBOX_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid OUTBOX_MAX_ATTEMPTS: %w", err)
	}
	backoff, err := time.ParseDuration(getEnv("OUTBOX_BASE_BACKOFF", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid OUTBOX_BASE_BACKOFF: %w", err)
	}

	config.Outbox = OutboxConfig{
		Workers:     workers,
		QueueSize:   queueSize,
		MaxAttempts: maxAttempts,
		BaseBackoff: backoff,
	}

	processorInterval, err := time.ParseDuration(getEnv("PROCESSOR_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROCESSOR_INTERVAL: %w", err)
	}
	config.Processor = ProcessorConfig{Interval: processorInterval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	switch c.Storage.Type {
	case "local":
	case "oss":
		if c.Storage.OSSEndpoint == "" || c.Storage.OSSAccessKeyID == "" || c.Storage.OSSAccessKeySecret == "" {
			return fmt.Errorf("ALI_OSS_ENDPOINT, ALI_OSS_ACCESS_KEY and ALI_OSS_SECRET_KEY are required for oss storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Realtime.HeartbeatInterval <= 0 {
		return fmt.Errorf("REALTIME_HEARTBEAT_INTERVAL must be positive")
	}
	if c.Processor.Interval <= 0 {
		return fmt.Errorf("PROCESSOR_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the time zone used to derive work dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
