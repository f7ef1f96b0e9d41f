package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// Config carries the settings the router reports on /health plus the
// middleware toggles.
type Config struct {
	Environment    string
	DatabaseKind   string
	StorageBackend string
	EnableMetrics  bool
}

// NewRouter assembles the full HTTP surface: portal API, health and metrics.
func NewRouter(service coursevault.Service, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.EnableMetrics {
		r.Use(MetricsMiddleware())
	}

	content := NewContentHandler(service)
	files := NewFilesHandler(service)
	people := NewPeopleHandler(service)
	attendance := NewAttendanceHandler(service)
	sms := NewSMSHandler(service)

	r.Get("/health", handleHealth(cfg))
	if cfg.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/content", content.Routes())
		r.Mount("/files", files.Routes())
		r.Mount("/students", people.RoutesFor(coursevault.RoleStudent))
		r.Mount("/faculty", people.RoutesFor(coursevault.RoleFaculty))
		r.Mount("/admins", people.RoutesFor(coursevault.RoleAdmin))
		r.Mount("/attendance", attendance.Routes())
		r.Mount("/sms", sms.Routes())
		r.Get("/stats", handleStats(service))
	})

	return r
}

// handleStats reports record counts across the portal.
func handleStats(service coursevault.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := service.Stats(r.Context())
		if err != nil {
			slog.Error("Failed to compute stats", "error", err)
			respondError(w, r, err)
			return
		}
		respondData(w, r, http.StatusOK, stats)
	}
}

// handleHealth reports liveness plus the configured backends.
func handleHealth(cfg Config) http.HandlerFunc {
	type healthResponse struct {
		Status         string `json:"status"`
		Timestamp      string `json:"timestamp"`
		Environment    string `json:"environment"`
		Database       string `json:"database"`
		StorageBackend string `json:"storage_backend"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, healthResponse{
			Status:         "ok",
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			Environment:    cfg.Environment,
			Database:       cfg.DatabaseKind,
			StorageBackend: cfg.StorageBackend,
		})
	}
}
