package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"okr/internal/domain/audit"
	"okr/internal/domain/auth"
	"okr/internal/domain/dashboard"
	"okr/internal/domain/directory"
	"okr/internal/domain/notifications"
	"okr/internal/domain/performance"
	"okr/internal/domain/reports"
	"okr/internal/platform/config"
	"okr/internal/platform/db"
	"okr/internal/platform/email"
	"okr/internal/platform/jobs"
	"okr/internal/platform/metrics"
	"okr/internal/transport/http/api"
	audithandler "okr/internal/transport/http/handlers/audit"
	authhandler "okr/internal/transport/http/handlers/auth"
	dashboardhandler "okr/internal/transport/http/handlers/dashboard"
	directoryhandler "okr/internal/transport/http/handlers/directory"
	notificationshandler "okr/internal/transport/http/handlers/notifications"
	performancehandler "okr/internal/transport/http/handlers/performance"
	reportshandler "okr/internal/transport/http/handlers/reports"
	"okr/internal/transport/http/middleware"
)

const (
	devJWTSecret    = "okr-dev-secret"
	shutdownTimeout = 15 * time.Second
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Router  http.Handler
}

// RouteRegistrar mounts a handler group under /api/v1.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// New wires stores, services and handlers for one database and optional
// Redis client.
func New(cfg config.Config, pool *pgxpool.Pool, cache *redis.Client) *App {
	collector := metrics.New()
	perms := auth.StaticPermissions{}

	directorySvc := directory.NewService(directory.NewStore(pool))
	performanceSvc := performance.NewService(performance.NewStore(pool), directorySvc)
	notificationSvc := notifications.New(notifications.NewStore(pool))
	if mailer := email.New(cfg); email.Enabled(mailer) {
		notificationSvc.WithEmail(mailer, directorySvc, cfg.EmailFrom)
	}
	auditSvc := audit.New(audit.NewStore(pool))
	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret)
	reportSvc := reports.NewService(performanceSvc, directorySvc, reports.NewCache(cache, cfg.ReportCacheTTL), collector.ReportCache)
	dashboardSvc := dashboard.NewService(performanceSvc, directorySvc, notificationSvc, cfg.FetchTimeout)

	overdue := jobs.OverdueSweep{
		Tasks:    performanceSvc,
		Notifier: notificationSvc,
		Now:      time.Now,
		Sent:     collector.OverdueReminders,
	}
	jobSvc := jobs.New(jobs.NewStore(pool), cfg.OverdueSweepInterval, overdue.Sweep())

	router := NewRouter(cfg, collector, pool.Ping,
		authhandler.NewHandler(authSvc, auditSvc),
		performancehandler.NewHandler(performanceSvc, perms, notificationSvc, auditSvc, reportSvc, collector),
		dashboardhandler.NewHandler(dashboardSvc, perms, collector),
		reportshandler.NewHandler(reportSvc, perms),
		directoryhandler.NewHandler(directorySvc, perms, auditSvc),
		notificationshandler.NewHandler(notificationSvc),
		audithandler.NewHandler(auditSvc, perms),
	)

	return &App{
		Config:  cfg,
		DB:      pool,
		Redis:   cache,
		Metrics: collector,
		Jobs:    jobSvc,
		Router:  router,
	}
}

// NewRouter builds the middleware chain, the probes and the API routes.
// ready reports whether the backing stores can serve traffic.
func NewRouter(cfg config.Config, collector *metrics.Collector, ready func(context.Context) error, groups ...RouteRegistrar) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]any{"status": "ok", "metrics": collector.Snapshot()}, middleware.GetRequestID(r.Context()))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			slog.Warn("readiness check failed", "err", err)
			api.Fail(w, http.StatusServiceUnavailable, api.CodeNotReady, "database not ready", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, middleware.GetRequestID(r.Context()))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	throttled := middleware.WithRejectHook(func() {
		slog.Debug("request throttled")
	})
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, throttled))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, throttled))
		for _, group := range groups {
			group.RegisterRoutes(r)
		}
	})

	return router
}

// Run connects the stores, prepares the schema and serves until ctx ends.
func Run(ctx context.Context, cfg config.Config) error {
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return err
		}
	}

	cache, err := db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, report cache disabled", "err", err)
		cache = nil
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				slog.Warn("redis close failed", "err", err)
			}
		}()
	}

	app := New(cfg, pool, cache)
	jobCtx, stopJobs := context.WithCancel(ctx)
	defer func() {
		stopJobs()
		app.Jobs.Wait()
	}()
	app.Jobs.Start(jobCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("okr server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
