// Package main is the entrypoint for the MetricHub API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/metrichub/metrichub/internal/cache"
	"github.com/metrichub/metrichub/internal/config"
	"github.com/metrichub/metrichub/internal/handler"
	"github.com/metrichub/metrichub/internal/metrics"
	"github.com/metrichub/metrichub/internal/middleware"
	"github.com/metrichub/metrichub/internal/repository"
	"github.com/metrichub/metrichub/internal/server"
	"github.com/metrichub/metrichub/internal/service"
	"github.com/metrichub/metrichub/internal/store"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize DynamoDB store
	st, err := store.NewDynamo(ctx, store.DynamoOptions{
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.DynamoDBEndpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		logger.Error(
			"failed to connect to DynamoDB",
			slog.String("error", err.Error()),
			slog.String("region", cfg.AWSRegion),
		)
		os.Exit(1)
	}
	logger.Info("connected to DynamoDB", "region", cfg.AWSRegion)

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(st, cfg.UsersTable)
	metricRepo := repository.NewMetricRepository(st, cfg.MetricsTable)

	recorder := metrics.NewInMemory()
	userService := service.NewUserService(userRepo, recorder)
	metricService := service.NewMetricService(metricRepo, recorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(st, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	metricHandler := handler.NewMetricHandler(metricService, logger)
	opsHandler := handler.NewOpsMetricsHandler(recorder)

	// Setup router
	r := setupRouter(h, healthHandler, userHandler, metricHandler, opsHandler, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	userHandler *handler.UserHandler,
	metricHandler *handler.MetricHandler,
	opsHandler *handler.OpsMetricsHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no rate limiting)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Operational metrics
	r.Get("/metrics/ops", opsHandler.Metrics)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/by-username/{username}", userHandler.GetByUsername)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", metricHandler.List)
			r.Post("/", metricHandler.Create)
			r.Get("/latest", metricHandler.Latest)
			r.Get("/summary", metricHandler.Summary)
			r.Get("/{id}", metricHandler.Get)
			r.Put("/{id}", metricHandler.Update)
			r.Delete("/{id}", metricHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
