package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/logingate/internal/background"
	"github.com/BradenHooton/logingate/internal/config"
	"github.com/BradenHooton/logingate/internal/handlers"
	middlewareCustom "github.com/BradenHooton/logingate/internal/middleware"
	"github.com/BradenHooton/logingate/internal/routes"
	"github.com/BradenHooton/logingate/internal/services"
	pkghttp "github.com/BradenHooton/logingate/pkg/http"
	pkglogger "github.com/BradenHooton/logingate/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.Any("ip_policies", cfg.Limits.Policies.IP),
		slog.Any("cookie_policies", cfg.Limits.Policies.Cookie),
		slog.Any("username_policies", cfg.Limits.Policies.Username))

	// Initialize admission service
	auditLogger := pkglogger.NewAuditLogger(logger, cfg.Server.Env)
	rateLimitService, err := services.NewRateLimitService(
		services.NewMemoryStores(cfg.Limits.Policies),
		services.RateLimitConfig{Policies: cfg.Limits.Policies},
		auditLogger,
	)
	if err != nil {
		logger.Error("failed to initialize rate limit service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(rateLimitService, logger, cfg.Limits.SweepInterval)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	admissionHandler := handlers.NewAdmissionHandler(rateLimitService, ipConfig)

	floodGuard := middlewareCustom.DefaultFloodGuard()
	floodGuard.RequestsPerMinute = cfg.Limits.FloodGuardPerMinute
	floodGuard.IPConfig = ipConfig

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(10 * time.Second))

	routes.RegisterRoutes(router, admissionHandler, floodGuard, cfg.Server.Env)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupManager.Stop()
	cleanupCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
