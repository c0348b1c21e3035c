package http

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig carries what the router needs beyond the handlers.
type RouterConfig struct {
	App config.AppConfig
	// UploadsDir is the local storage root. When set, its logo folder is
	// served under /uploads/logos.
	UploadsDir string
}

func NewRouter(
	cfg RouterConfig,
	attendanceHandler AttendanceHandler,
	employeeHandler EmployeeHandler,
	dashboardHandler DashboardHandler,
	settingsHandler SettingsHandler,
	fileHandler FileHandler,
	notificationHandler NotificationHandler,
	realtimeHandler RealtimeHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.FrontendURL,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		prefix := "/uploads/" + settings.LogoFolder + "/"
		logos := http.Dir(filepath.Join(cfg.UploadsDir, settings.LogoFolder))
		r.Handle(prefix+"*", http.StripPrefix(prefix, noDirListing(http.FileServer(logos))))
	}

	routes := func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Get("/summary", attendanceHandler.Summary)
			r.Post("/record", attendanceHandler.Record)
			r.Post("/process-files", attendanceHandler.ProcessFiles)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.ListEmployees)
			r.Post("/", employeeHandler.CreateEmployee)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", employeeHandler.GetEmployee)
				r.Put("/", employeeHandler.UpdateEmployee)
				r.Delete("/", employeeHandler.DeleteEmployee)
			})
		})

		r.Get("/dashboard/stats", dashboardHandler.GetStats)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/attendance", settingsHandler.GetAttendanceSettings)
			r.Put("/attendance", settingsHandler.UpdateAttendanceSettings)
			r.Get("/system", settingsHandler.GetSystemSettings)
			r.Put("/system", settingsHandler.UpdateSystemSettings)
			r.Post("/system/logo", settingsHandler.UploadLogo)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/attendance", fileHandler.ListAttendance)
			r.Post("/upload-attendance", fileHandler.UploadAttendance)
			r.Post("/download-attendance", fileHandler.DownloadAttendance)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/email", notificationHandler.SendEmail)
			r.Post("/whatsapp", notificationHandler.SendWhatsApp)
			r.Get("/stats", notificationHandler.Stats)
		})

		r.Route("/realtime", func(r chi.Router) {
			r.Get("/attendance", realtimeHandler.Stream)
			r.Get("/attendance/ws", realtimeHandler.WebSocket)
			r.Post("/broadcast", realtimeHandler.Broadcast)
		})
	}

	r.Route("/api/v1", routes)
	r.Group(routes)

	return r
}

// noDirListing answers directory requests with 404 instead of an index page.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
