package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expensesink/expensesink-api/internal/config"
	"github.com/expensesink/expensesink-api/internal/handler"
	"github.com/expensesink/expensesink-api/internal/infra/cache"
	"github.com/expensesink/expensesink-api/internal/infra/client"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/infra/resilience"
	"github.com/expensesink/expensesink-api/internal/infra/supabase"
	"github.com/expensesink/expensesink-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("timezone", cfg.Timezone),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("dev_auth", cfg.DevAuth),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "expensesink-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	viewCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)
	if cfg.AdvisorAPIURL == "" {
		logger.Warn("ADVISOR_API_URL not set, advisor endpoint will answer 503")
	}
	advisorClient := client.NewAdvisorClient(httpClient, cfg.AdvisorAPIURL, resilience.NewCircuitBreaker("advisor"), resilienceCfg)

	// --- Services ---
	loc := cfg.Location()

	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.DevAuth, logger)
	expenseSvc := service.NewExpenseService(store, viewCache, metrics, logger)
	budgetSvc := service.NewBudgetService(store, store, viewCache, metrics, logger, loc)
	onboardingSvc := service.NewOnboardingService(store, viewCache, metrics, logger)
	trackerSvc := service.NewTrackerService(store, store, store, viewCache, metrics, logger, loc)
	advisorSvc := service.NewAdvisorService(advisorClient, store, store, metrics, logger, loc)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Expenses:   expenseSvc,
		Budgets:    budgetSvc,
		Onboarding: onboardingSvc,
		Tracker:    trackerSvc,
		Advisor:    advisorSvc,
		Auth:       authSvc,

		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
