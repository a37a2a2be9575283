// Package main is the entrypoint for the ReviewPulse statistics API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reviewpulse/reviewpulse/internal/cache"
	"github.com/reviewpulse/reviewpulse/internal/config"
	"github.com/reviewpulse/reviewpulse/internal/handler"
	"github.com/reviewpulse/reviewpulse/internal/metrics"
	"github.com/reviewpulse/reviewpulse/internal/middleware"
	"github.com/reviewpulse/reviewpulse/internal/repository"
	"github.com/reviewpulse/reviewpulse/internal/server"
	"github.com/reviewpulse/reviewpulse/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Review source
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Snapshot cache. Interfaces stay nil when caching is disabled.
	var (
		snapshots   service.SnapshotCache
		cacheHealth handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.StatsCacheEnabled {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		snapshots = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis", "ttl", cfg.StatsCacheTTL)
	} else {
		logger.Info("snapshot cache disabled")
	}

	recorder, metricsEndpoint, err := initMetrics(cfg)
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	statsService := service.NewStatisticsService(
		repository.NewReviewRepository(repo),
		snapshots,
		service.StatisticsConfig{
			DefaultTimeZone: cfg.StatsTimeZone,
			CacheTTL:        cfg.StatsCacheTTL,
			MaxRange:        time.Duration(cfg.StatsMaxRangeDays) * 24 * time.Hour,
		},
		recorder,
		logger,
	)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheHealth)
	statsHandler := handler.NewStatisticsHandler(statsService, cfg.StatsTimeZone, logger)

	r := setupRouter(h, healthHandler, statsHandler, metricsEndpoint, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"time_zone", cfg.StatsTimeZone,
		"metrics_backend", cfg.MetricsBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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

// initMetrics selects the metrics recorder and the /metrics endpoint that
// exposes it.
func initMetrics(cfg *config.Config) (metrics.Recorder, http.HandlerFunc, error) {
	switch cfg.MetricsBackend {
	case config.MetricsBackendPrometheus:
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder, err := metrics.NewPrometheus(reg)
		if err != nil {
			return nil, nil, err
		}
		return recorder, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP, nil
	case config.MetricsBackendNoop:
		return metrics.NewNoop(), handler.NewMetricsHandler(nil).Metrics, nil
	default:
		recorder := metrics.NewInMemory()
		return recorder, handler.NewMetricsHandler(recorder).Metrics, nil
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	statsHandler *handler.StatisticsHandler,
	metricsEndpoint http.HandlerFunc,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsEndpoint)
	r.Get("/", h.Hello)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/statistics", statsHandler.Overview)
		r.Route("/clients/{clientID}", func(r chi.Router) {
			r.Get("/statistics", statsHandler.Client)
			r.Get("/branches/{branchID}/statistics", statsHandler.Branch)
		})
	})

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
