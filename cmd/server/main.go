package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/replytomic/replytomic/internal"
	"github.com/replytomic/replytomic/internal/ai"
	"github.com/replytomic/replytomic/internal/ai/anthropic"
	"github.com/replytomic/replytomic/internal/ai/mock"
	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/billing"
	"github.com/replytomic/replytomic/internal/handler"
	"github.com/replytomic/replytomic/internal/metrics"
	"github.com/replytomic/replytomic/internal/middleware"
	"github.com/replytomic/replytomic/internal/repository"
	"github.com/replytomic/replytomic/internal/service"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize AI provider
	var provider ai.ReplyGenerator
	switch cfg.AIProvider {
	case "mock":
		logger.Warn("using mock AI provider, replies are canned")
		provider = mock.New(logger)
	default:
		provider, err = anthropic.New(anthropic.Config{
			APIKey:         cfg.AnthropicAPIKey,
			Model:          cfg.AnthropicModel,
			RequestTimeout: cfg.AIRequestTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("ai provider initialization failed: %w", err)
		}
	}

	// Initialize billing (nil when Stripe is not configured)
	var billingService billing.Service
	if cfg.StripeSecretKey != "" {
		billingService = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, billing.PriceConfig{
			CreatorProPriceID: cfg.StripePriceCreatorPro,
			AgencyPriceID:     cfg.StripePriceAgency,
		})
		logger.Info("Stripe billing enabled")
	} else {
		logger.Warn("Stripe not configured, billing endpoints disabled")
	}

	// Initialize services
	userService := service.NewUserService(repo, logger)
	usageService := service.NewUsageService(repo, logger)
	quotaService := service.NewQuotaService(usageService, logger)
	historyService := service.NewHistoryService(repo, logger)
	generationService := service.NewGenerationService(provider, quotaService, usageService, historyService, logger)

	// Initialize token verifier
	verifier, err := auth.NewVerifier(cfg.AuthIssuer, cfg.AuthAudience, cfg.AuthJWKSURL)
	if err != nil {
		return fmt.Errorf("token verifier initialization failed: %w", err)
	}

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(verifier, userService, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	requireUser := authMw.RequireUser

	handler.NewPlatformsHandler().RegisterRoutes(mux)
	handler.NewGenerateHandler(generationService, logger).RegisterRoutes(mux, requireUser)
	handler.NewHistoryHandler(historyService, logger).RegisterRoutes(mux, requireUser)
	handler.NewUsageHandler(usageService, userService, logger).RegisterRoutes(mux, requireUser)
	handler.NewBillingHandler(billingService, userService, cfg.BaseURL, logger).RegisterRoutes(mux, requireUser)

	// Webhook processing requires the signing secret; without it the
	// handler refuses events instead of accepting them unverified.
	var webhookBilling billing.Service
	if billingService != nil && cfg.StripeWebhookSecret != "" {
		webhookBilling = billingService
	}
	handler.NewWebhookHandler(webhookBilling, userService, logger).RegisterRoutes(mux)

	// Outer middleware: metrics wraps logging wraps routing
	root := middleware.Stack(metrics.Middleware, loggingMw.Handler)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
