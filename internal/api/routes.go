package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapponejosh/luach-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /metrics
//	GET    /api/v1/hebrew-date/{date}          date is YYYY-MM-DD or "today"
//	GET    /api/v1/civil-date?year&month&day
//	GET    /api/v1/molad/{year}/{month}
//	GET    /api/v1/zmanim?lat&lon&tz&date&elevation&candle&havdalah
//	GET    /api/v1/zmanim/daily?lat&lon&tz&date&elevation
//	GET    /api/v1/parasha/{date}?diaspora
//	GET    /api/v1/holidays/{year}?diaspora
//	GET    /api/v1/events?from&days&diaspora&location | lat&lon&tz
//	GET    /api/v1/events.ics                  same parameters
//	GET    /api/v1/locations
//	GET    /api/v1/locations/{id}
//	GET    /api/v1/locations/{id}/zmanim?date
//	POST   /api/v1/locations                   API key
//	PUT    /api/v1/locations/{id}              API key
//	DELETE /api/v1/locations/{id}              API key
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RequestIDMiddleware(),
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		MetricsMiddleware(),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", handlers.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ======================================================================
		// Calendar and times (public)
		// ======================================================================
		r.Get("/hebrew-date/{date}", handlers.GetHebrewDate)
		r.Get("/civil-date", handlers.GetCivilDate)
		r.Get("/molad/{year}/{month}", handlers.GetMolad)
		r.Get("/zmanim", handlers.GetZmanim)
		r.Get("/zmanim/daily", handlers.GetDailyZmanim)
		r.Get("/parasha/{date}", handlers.GetParasha)
		r.Get("/holidays/{year}", handlers.GetHolidays)
		r.Get("/events", handlers.GetEvents)
		r.Get("/events.ics", handlers.GetEventsICS)

		// ======================================================================
		// Saved locations
		// ======================================================================
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", handlers.ListLocations)
			r.Get("/{id}", handlers.GetLocation)
			r.Get("/{id}/zmanim", handlers.GetLocationZmanim)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(cfg, logger))
				r.Post("/", handlers.CreateLocation)
				r.Put("/{id}", handlers.UpdateLocation)
				r.Delete("/{id}", handlers.DeleteLocation)
			})
		})
	})

	return r
}
