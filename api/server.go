/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: zerolog per-request logging, logger on the context
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*    Employee directory, salary structures, balances
  /api/payroll/*      Batch generation and payslip lifecycle
  /api/grades/*       Grade evaluation
  /api/leave-types/*  Leave policy management
  /api/leaves/*       Leave request lifecycle
  /api/admin/*        Admin operations
  /api/reset          Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/active", h.ListActiveEmployees)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/salary-structure", h.GetSalaryStructure)
			r.Put("/{id}/salary-structure", h.SaveSalaryStructure)
			r.Get("/{id}/leave-balances", h.ListLeaveBalances)
			r.Get("/{id}/leaves", h.ListEmployeeLeaves)
		})

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/generate", h.GeneratePayroll)
			r.Get("/records", h.ListPayrollRecords)
			r.Get("/records/{id}", h.GetPayrollRecord)
			r.Post("/records/{id}/status", h.AdvancePayrollStatus)
		})

		// Grade routes
		r.Route("/grades", func(r chi.Router) {
			r.Post("/evaluate", h.EvaluateGrade)
		})

		// Leave policy routes
		r.Route("/leave-types", func(r chi.Router) {
			r.Get("/", h.ListLeaveTypes)
			r.Post("/", h.SaveLeaveType)
			r.Get("/{id}", h.GetLeaveType)
			r.Delete("/{id}", h.DeleteLeaveType)
		})

		// Leave request routes
		r.Route("/leaves", func(r chi.Router) {
			r.Post("/", h.ApplyLeave)
			r.Get("/pending", h.ListPendingLeaves)
			r.Get("/{id}", h.GetLeaveRequest)
			r.Post("/{id}/process", h.ProcessLeave)
			r.Post("/{id}/cancel", h.CancelLeave)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/initialize-balances", h.InitializeBalances)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/reset", h.ResetDatabase)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}

// requestLogger attaches the logger to the request context and logs one
// line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))

			reqLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
