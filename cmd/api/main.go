package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coverline/agency-api/internal/cache"
	"github.com/coverline/agency-api/internal/config"
	"github.com/coverline/agency-api/internal/database"
	"github.com/coverline/agency-api/internal/http/handler"
	"github.com/coverline/agency-api/internal/http/middleware"
	"github.com/coverline/agency-api/internal/http/router"
	"github.com/coverline/agency-api/internal/jobs"
	"github.com/coverline/agency-api/internal/logger"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/coverline/agency-api/internal/service"
	"github.com/coverline/agency-api/internal/tenant"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Outside development the schema is managed by the migrate binary
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run auto-migrations: %w", err)
		}
		log.Info("Auto-migration completed")
	}

	// Initialize the dashboard cache (optional - the API runs without it)
	dashboardCache, err := cache.New(&cfg.Redis)
	if err != nil {
		log.Warn("Redis connection failed, continuing without dashboard cache",
			zap.Error(err),
		)
		dashboardCache = nil
	} else if dashboardCache != nil {
		log.Info("Dashboard cache connected",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("ttl_seconds", cfg.Redis.CacheTTL),
		)
	} else {
		log.Info("Dashboard cache not configured, skipping",
			zap.Bool("enabled", cfg.Redis.Enabled),
		)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	phoneIndexRepo := repository.NewPhoneIndexRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)

	// Initialize services
	metricsService := service.NewMetricsService(metricsRepo, policyRepo, dashboardCache, log)
	importService := service.NewImportService(db, customerRepo, policyRepo, metricsService, &cfg.Import, log)
	customerService := service.NewCustomerService(db, customerRepo, policyRepo, phoneIndexRepo, metricsService, log)
	policyService := service.NewPolicyService(customerRepo, policyRepo)
	dashboardService := service.NewDashboardService(metricsService, dashboardCache, log)

	// Initialize middleware
	tokenValidator := tenant.NewValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService, log)
	policyHandler := handler.NewPolicyHandler(policyService, log)
	importHandler := handler.NewImportHandler(importService, cfg, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		tokenValidator,
		rateLimiter,
		customerHandler,
		policyHandler,
		importHandler,
		dashboardHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.RenewalsEnabled {
		scheduler = jobs.NewScheduler(log)

		renewalsJob := jobs.NewRenewalsJob(metricsService, metricsRepo, log)
		if err := scheduler.AddJob("renewals-recount", cfg.Jobs.RenewalsCron, renewalsJob.Run); err != nil {
			log.Error("Failed to register renewals job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with renewals job",
				zap.String("cron_expr", cfg.Jobs.RenewalsCron),
			)
		}
	} else {
		log.Info("Renewals job disabled",
			zap.Bool("enabled", cfg.Jobs.RenewalsEnabled),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			scheduler.Stop()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close cache connection if initialized
		if dashboardCache != nil {
			if err := dashboardCache.Close(); err != nil {
				log.Warn("Error closing cache connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
