package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	snapshotService *service.SnapshotService,
	dashboardService *service.DashboardService,
	cfg *config.Config,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	snapshotHandler := handlers.NewSnapshotHandler(snapshotService, cfg.Upstream.ExternalURL, cfg.MaxUpload)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Get("/data", snapshotHandler.Data)
		r.Get("/config", snapshotHandler.Config)
		r.Post("/upload", snapshotHandler.Upload)

		r.Route("/refresh", func(r chi.Router) {
			r.Post("/nav", snapshotHandler.RefreshNAV)
			r.Post("/data", snapshotHandler.RefreshData)
			r.Get("/history", snapshotHandler.History)
			r.With(custommiddleware.ValidateUUIDMiddleware).Get("/history/{uuid}", snapshotHandler.HistoryEntry)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashboardHandler.Dashboard)
			r.Get("/overview", dashboardHandler.Overview)
			r.Get("/schemes", dashboardHandler.Schemes)
			r.Get("/growth", dashboardHandler.Growth)
			r.Get("/transitions", dashboardHandler.Transitions)
			r.Get("/rolling", dashboardHandler.Rolling)
			r.Get("/comparison", dashboardHandler.Comparison)
			r.Get("/allocations/{dimension}", dashboardHandler.Allocations)
			r.Get("/segments/{dimension}", dashboardHandler.Segments)

			r.Route("/investments", func(r chi.Router) {
				r.Get("/", dashboardHandler.Investments)
				r.Get("/trend", dashboardHandler.Trend)
				r.Get("/export", dashboardHandler.Export)
			})
		})
	})

	return r
}
