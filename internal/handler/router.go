// Package handler wires the HTTP surface: routing, middleware, and
// the translation between HTTP and the service layer.
package handler

import (
	"net/http"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps carries everything the router needs.
type Deps struct {
	Expenses   *service.ExpenseService
	Budgets    *service.BudgetService
	Onboarding *service.OnboardingService
	Tracker    *service.TrackerService
	Advisor    *service.AdvisorService
	Auth       *service.AuthService

	Metrics        *observability.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except the engine metrics requires a valid
// bearer token; user identity comes from the token, never from the URL.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger, d.Metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		// Engine metrics snapshot (operational, unauthenticated).
		r.Get("/metrics/engine", engineMetricsHandler(d.Metrics, d.Logger))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(d.Auth, d.Logger))

			// Expenses CRUD
			r.Get("/expenses", listExpensesHandler(d.Expenses, d.Logger))
			r.Post("/expenses", createExpenseHandler(d.Expenses, d.Logger))
			r.Get("/expenses/{expenseId}", getExpenseHandler(d.Expenses, d.Logger))
			r.Put("/expenses/{expenseId}", updateExpenseHandler(d.Expenses, d.Logger))
			r.Patch("/expenses/{expenseId}", updateExpenseHandler(d.Expenses, d.Logger))
			r.Delete("/expenses/{expenseId}", deleteExpenseHandler(d.Expenses, d.Logger))

			// Category budgets
			r.Get("/budgets", listBudgetsHandler(d.Budgets, d.Logger))
			r.Post("/budgets", upsertBudgetHandler(d.Budgets, d.Logger))
			r.Put("/budgets", upsertBudgetHandler(d.Budgets, d.Logger))
			r.Delete("/budgets", deleteBudgetHandler(d.Budgets, d.Logger))
			r.Delete("/budgets/{category}", deleteBudgetHandler(d.Budgets, d.Logger))

			// Onboarding profile
			r.Get("/onboarding", getOnboardingHandler(d.Onboarding, d.Logger))
			r.Post("/onboarding", saveOnboardingHandler(d.Onboarding, d.Logger))
			r.Put("/onboarding", saveOnboardingHandler(d.Onboarding, d.Logger))

			// Computed budget views
			r.Get("/dashboard", dashboardHandler(d.Tracker, d.Logger))
			r.Get("/safe-to-spend", safeToSpendHandler(d.Tracker, d.Logger))
			r.Get("/analytics", analyticsHandler(d.Tracker, d.Logger))
			r.Get("/weekly-comparison", weeklyComparisonHandler(d.Tracker, d.Logger))

			// AI advisor
			r.Post("/advisor", askAdvisorHandler(d.Advisor, d.Logger))
			r.Post("/advisor/ask", askAdvisorHandler(d.Advisor, d.Logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "expensesink-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func engineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
