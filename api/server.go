/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Instrument: Prometheus request count and latency per route
  5. CORS:       Cross-origin requests for dashboards

ROUTE GROUPS:
  /api/units/*          Unit directory
  /api/quotes/*         Fee and advance quotes
  /api/bills/*          Bill issuance, listing, payments, verification
  /api/residents/*      Yearly summary and monthly breakdown
  /api/overdue          Fleet-wide overdue report
  /api/scenarios/*      Demo scenarios
  /api/reset            Database reset (dev only)
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - metrics.go: Instrument middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.Metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Method("GET", "/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Unit routes
		r.Route("/units", func(r chi.Router) {
			r.Get("/", h.ListUnits)
			r.Post("/", h.CreateUnit)
			r.Get("/{id}", h.GetUnit)
		})

		// Quote routes
		r.Route("/quotes", func(r chi.Router) {
			r.Post("/fee", h.QuoteFee)
			r.Post("/advance", h.QuoteAdvance)
		})

		// Bill routes
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.CreateBill)
			r.Post("/advance", h.CreateAdvanceBill)
			r.Get("/{id}", h.GetBill)
			r.Post("/{id}/payment", h.RecordPayment)
			r.Get("/{id}/verify", h.VerifyBill)
		})

		// Resident report routes
		r.Route("/residents/{id}", func(r chi.Router) {
			r.Get("/summary", h.GetYearlySummary)
			r.Get("/monthly", h.GetMonthlyBreakdown)
		})

		r.Get("/overdue", h.GetOverdue)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
