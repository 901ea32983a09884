// Package main is the entrypoint for the install statistics server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickinstall/installstats/internal/cache"
	"github.com/quickinstall/installstats/internal/config"
	"github.com/quickinstall/installstats/internal/forward"
	"github.com/quickinstall/installstats/internal/handler"
	"github.com/quickinstall/installstats/internal/metrics"
	"github.com/quickinstall/installstats/internal/middleware"
	"github.com/quickinstall/installstats/internal/server"
	"github.com/quickinstall/installstats/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	store, err := cache.New(ctx, cfg.RedisURL, cfg.ScanCount)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis", slog.Int64("scan_count", cfg.ScanCount))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	forwarder, err := newForwarder(cfg)
	if err != nil {
		logger.Error("invalid forward configuration",
			slog.String("error", sanitizeError(err, cfg.ForwardURL)),
			slog.String("forward_url", redactURL(cfg.ForwardURL)),
		)
		os.Exit(1)
	}
	if !cfg.ForwardingEnabled() && cfg.IsProduction() {
		logger.Warn("FORWARD_URL not set; install reports will not reach the secondary sink")
	}

	installSvc := service.NewInstallService(store, forwarder, logger, recorder)
	statsSvc := service.NewStatsService(store, logger, recorder)

	r := setupRouter(routerDeps{
		health:   handler.NewHealthHandler(store),
		install:  handler.NewInstallHandler(installSvc, logger),
		stats:    handler.NewStatsHandler(statsSvc, logger),
		metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		cors:     middleware.CORSConfig{AllowedOrigins: middleware.ParseOrigins(cfg.CORSAllowedOrigins), MaxAge: cfg.CORSMaxAge},
		logger:   logger,
		devRoute: cfg.IsDevelopment(),
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so Redis closes after in-flight forwards drain.
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return store.Close()
	})
	srv.OnShutdown("forwarder", installSvc.Drain)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"forwarding", cfg.ForwardingEnabled(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newForwarder(cfg *config.Config) (forward.Forwarder, error) {
	if !cfg.ForwardingEnabled() {
		return forward.Noop{}, nil
	}
	return forward.NewHTTPForwarder(cfg.ForwardURL, forward.NewHTTPClient(cfg.ForwardTimeout))
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "installstats")
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

type routerDeps struct {
	health  *handler.HealthHandler
	install *handler.InstallHandler
	stats   *handler.StatsHandler
	metrics http.Handler
	cors    middleware.CORSConfig
	logger  *slog.Logger

	// devRoute enables GET /debug/routes.
	devRoute bool
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.metrics)
	}
	r.Get("/", h.Hello)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(d.cors))

		r.Get("/crate/", d.install.Record)
		r.Get("/crate/{tarball}", d.install.Record)
		r.Get("/architectures", d.install.Architectures)

		r.Get("/stats", d.stats.Daily)
		r.Get("/stats/monthly", d.stats.Monthly)
		r.Get("/agents", d.stats.Agents)
	})

	if d.devRoute {
		r.Get("/debug/routes", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
				_, err := w.Write([]byte(method + " " + route + "\n"))
				return err
			})
		})
	}

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
			username = "redacted"
		}
		parsed.User = url.User(username)
	}
	if parsed.RawQuery != "" {
		q := parsed.Query()
		for key := range q {
			lk := strings.ToLower(key)
			if strings.Contains(lk, "token") || strings.Contains(lk, "key") || strings.Contains(lk, "secret") {
				q.Set(key, "redacted")
			}
		}
		parsed.RawQuery = q.Encode()
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
