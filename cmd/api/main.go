package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/whatsapp"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/attendance-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/importer"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	settingsService "github.com/cmlabs-hris/attendance-backend-go/internal/service/settings"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	loc := cfg.Location()

	var fileStorage storage.FileStorage
	uploadsDir := ""
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("initialize local storage: %w", err)
		}
		uploadsDir = cfg.Storage.BasePath
	case "oss":
		fileStorage, err = storage.NewOSSStorage(
			cfg.Storage.OSSEndpoint,
			cfg.Storage.OSSAccessKeyID,
			cfg.Storage.OSSAccessKeySecret,
			cfg.Storage.OSSBucket,
		)
		if err != nil {
			return fmt.Errorf("initialize oss storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	// Repositories
	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	processedFileRepo := postgresql.NewProcessedFileRepository(db)
	attendanceSettingsRepo := postgresql.NewAttendanceSettingsRepository(db)
	systemSettingsRepo := postgresql.NewSystemSettingsRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	// Side-effect infrastructure
	fileSvc := file.NewFileService(fileStorage, cfg.Storage.AttendanceFolder)
	settingsSvc := settingsService.NewSettingsService(attendanceSettingsRepo, systemSettingsRepo, fileSvc)
	gateway := notificationService.NewGateway(
		email.NewMailer(cfg.SMTP),
		whatsapp.NewClient(cfg.WhatsApp),
		settingsSvc,
	)
	dispatcher := notificationService.NewDispatcher(notificationService.Config{
		WorkerCount: cfg.Outbox.Workers,
		QueueSize:   cfg.Outbox.QueueSize,
		MaxAttempts: cfg.Outbox.MaxAttempts,
		BaseBackoff: cfg.Outbox.BaseBackoff,
	})
	hub := realtime.NewHub(cfg.Realtime.HeartbeatInterval)

	// Services
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		employeeRepo,
		settingsSvc,
		gateway,
		dispatcher,
		hub,
		loc,
	)
	employeeSvc := employeeService.NewEmployeeService(transactor, employeeRepo, gateway, dispatcher)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, loc)
	fileProcessor := importer.NewFileProcessor(fileSvc, processedFileRepo, employeeRepo, attendanceSvc, loc)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(scheduler, fileProcessor)
	attendanceJobs.RegisterJobs(cfg.Processor.Interval)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{App: cfg.App, UploadsDir: uploadsDir},
		appHTTP.NewAttendanceHandler(attendanceSvc, attendanceJobs),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewDashboardHandler(dashboardSvc),
		appHTTP.NewSettingsHandler(settingsSvc),
		appHTTP.NewFileHandler(fileSvc),
		appHTTP.NewNotificationHandler(gateway, dispatcher),
		appHTTP.NewRealtimeHandler(hub, cfg.App.FrontendURL),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	// Stream handlers return only once their subscription ends.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	scheduler.Stop()
	dispatcher.Stop()

	slog.Info("Server stopped")
	return nil
}

func setupLogger(app config.AppConfig) {
	var level slog.Level
	switch strings.ToLower(app.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if app.Env == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With(slog.String("app", "attendance-backend")))
}
