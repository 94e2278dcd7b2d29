package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vadim/infra-metric/internal/config"
	httpcontroller "github.com/vadim/infra-metric/internal/controller/http"
	"github.com/vadim/infra-metric/internal/database"
	accountdao "github.com/vadim/infra-metric/internal/domain/account/dao"
	"github.com/vadim/infra-metric/internal/domain/account/policy"
	"github.com/vadim/infra-metric/internal/domain/account/service"
	"github.com/vadim/infra-metric/internal/domain/account/store"
	syncdao "github.com/vadim/infra-metric/internal/domain/sync/dao"
	"github.com/vadim/infra-metric/internal/domain/sync/orchestrator"
	"github.com/vadim/infra-metric/internal/domain/sync/scheduler"
	"github.com/vadim/infra-metric/internal/httpx/upstream/batchsync"
	"github.com/vadim/infra-metric/internal/metrics"
	"github.com/vadim/infra-metric/internal/storage"
)

// App is the main application container
type App struct {
	cfg           config.Config
	httpServer    *http.Server
	metricsServer *http.Server
	router        *chi.Mux
	logger        *slog.Logger

	// Infrastructure
	pool     *pgxpool.Pool
	registry *prometheus.Registry
	archive  *storage.S3Storage

	// Domain
	store        *store.Store
	attempts     *syncdao.StatusPostgres
	orchestrator *orchestrator.Orchestrator
	analytics    *service.Service
	exports      *policy.Policy

	// Scheduler for periodic account syncs
	scheduler *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		app.pool.Close()
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	// Register routes
	app.registerRoutes()

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Metrics.Enabled {
		app.metricsServer = metrics.NewServer(cfg.Metrics.Address, app.registry)
	}

	return app, nil
}

// initInfrastructure initializes infrastructure components (DB, metrics, S3)
func (a *App) initInfrastructure(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database.PostgresDSN, database.PoolConfig{
		MaxConns:     a.cfg.Database.MaxOpenConns,
		MinConns:     a.cfg.Database.MaxIdleConns,
		ConnLifetime: a.cfg.Database.ConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pool = pool

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterPgxPoolMetrics(a.registry, pool)

	if a.cfg.S3.Enabled {
		archive, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
		})
		if err != nil {
			pool.Close()
			return fmt.Errorf("initializing export archive: %w", err)
		}
		a.archive = archive
	}

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy, Orchestrator)
func (a *App) initDomains(ctx context.Context) error {
	records := accountdao.NewRecordPostgres(a.pool, a.logger)
	targets := accountdao.NewTargetPostgres(a.pool)
	a.attempts = syncdao.NewStatusPostgres(a.pool)

	syncClient := batchsync.New(a.cfg.Sync.BatchURL,
		batchsync.WithAPIKey(a.cfg.Sync.APIKey),
		batchsync.WithTimeout(a.cfg.Sync.Timeout),
	)

	a.store = store.New()
	a.orchestrator = orchestrator.New(
		syncClient,
		records,
		a.store,
		a.attempts,
		metrics.NewSyncRecorder(a.registry),
		orchestrator.Config{
			JobName:  a.cfg.Sync.JobName,
			Cooldown: a.cfg.Sync.Cooldown,
			Timeout:  a.cfg.Sync.Timeout,
		},
		a.logger,
	)

	// An empty snapshot is served until the first sync when the store cannot be read yet
	if err := a.orchestrator.Bootstrap(ctx); err != nil {
		a.logger.Error("failed to load initial account snapshot", "error", err)
	}

	a.analytics = service.New(a.store, targets, a.cfg.Analytics.MemoEnabled)
	metrics.RegisterMemoMetrics(a.registry, a.analytics)

	var archiver policy.Archiver
	if a.archive != nil {
		archiver = &archiveAdapter{storage: a.archive}
	}
	a.exports = policy.New(a.analytics, archiver)

	if a.cfg.Sync.SchedulerEnabled {
		a.scheduler = scheduler.New(a.orchestrator, scheduler.Config{Interval: a.cfg.Sync.Interval}, a.logger)
	}

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("Infra-Metric Analytics API", []byte(OpenAPISpec))
	swaggerHandler.RegisterRoutes(a.router)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.cfg.Server.RequestTimeout))

			analyticsHandler := httpcontroller.NewAnalyticsHandler(a.analytics, a.orchestrator, a.logger)
			analyticsHandler.RegisterRoutes(r)

			exportHandler := httpcontroller.NewExportHandler(a.exports, a.logger)
			exportHandler.RegisterRoutes(r)
		})

		// Manual syncs block for the whole remote job and events stream indefinitely
		syncHandler := httpcontroller.NewSyncHandler(a.orchestrator, a.attempts, a.cfg.Sync.Timeout+30*time.Second, a.logger)
		syncHandler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := a.pool.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"database unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start scheduler if enabled
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	// Channel to receive errors from servers
	errCh := make(chan error, 2)

	if a.metricsServer != nil {
		go func() {
			a.logger.Info("starting metrics server", "addr", a.metricsServer.Addr)
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		_ = a.Shutdown(context.Background())
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Stop scheduler
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	// Shutdown HTTP servers with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down HTTP server: %w", err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down metrics server: %w", err))
		}
	}

	a.pool.Close()

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// archiveAdapter adapts storage.S3Storage to policy.Archiver
type archiveAdapter struct {
	storage *storage.S3Storage
}

func (a *archiveAdapter) ArchiveCSV(ctx context.Context, filename string, body []byte) (*policy.ArchiveOutput, error) {
	out, err := a.storage.ArchiveCSV(ctx, filename, body)
	if err != nil {
		return nil, err
	}
	return &policy.ArchiveOutput{
		Key: out.Key,
		URL: out.URL,
	}, nil
}
