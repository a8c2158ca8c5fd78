package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"myxpicks/internal/config"
	"myxpicks/internal/dataprocessing"
	apierrors "myxpicks/internal/errors"
	"myxpicks/internal/files"
	"myxpicks/internal/infrastructure"
	customMiddleware "myxpicks/internal/middleware"
	"myxpicks/internal/publish"
	"myxpicks/internal/services"
	handlers "myxpicks/internal/transport/http"
	ws "myxpicks/internal/websocket"
)

// DataURLPrefix is where the data directory is served. The page falls back
// to these files when the API is unavailable.
const DataURLPrefix = "/website_data"

// Application represents the main application container
type Application struct {
	Config     *config.Config
	Paths      *config.Paths
	Logger     *slog.Logger
	Router     *chi.Mux
	Server     *http.Server
	Hub        *ws.Hub
	Picks      *services.PicksService
	Health     *services.HealthService
	OTel       *infrastructure.OTelProviders
	Metrics    *infrastructure.BusinessMetrics
	Scheduler  *cron.Cron
	FrontendFS fs.FS

	errorHandler *apierrors.ErrorHandler
	logCloser    io.Closer
}

// NewApplication loads configuration, initializes the default logger and
// builds the application. frontendFS may be nil.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	a, err := New(cfg, logger, frontendFS)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.logCloser = closer
	return a, nil
}

// New builds the application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger, frontendFS fs.FS) (*Application, error) {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.OTel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:       cfg,
		Paths:        paths,
		Logger:       logger,
		OTel:         providers,
		FrontendFS:   frontendFS,
		errorHandler: apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.initializeServices(); err != nil {
		providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	if cfg.Schedule.Enabled {
		if err := a.setupScheduler(); err != nil {
			providers.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to schedule refresh: %w", err)
		}
	}

	return a, nil
}

// NewPicksService builds the picks service with tracing and metrics. The
// git publisher is attached when publish is set.
func NewPicksService(cfg *config.Config, paths *config.Paths, logger *slog.Logger, providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics, publish bool, extra ...services.PicksOption) (*services.PicksService, error) {
	opts := []services.PicksOption{
		services.WithTracer(providers.Tracer),
		services.WithMetrics(metrics),
	}
	if publish {
		opts = append(opts, services.WithPublisher(newPublisher(cfg, paths, logger)))
	}
	opts = append(opts, extra...)
	return services.NewPicksService(cfg, paths, logger, opts...)
}

func newPublisher(cfg *config.Config, paths *config.Paths, logger *slog.Logger) services.Publisher {
	return publish.NewGitPublisher(cfg.Publish, paths, logger)
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTel.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	if err := infrastructure.RegisterRuntimeGauges(a.OTel.Meter, time.Now()); err != nil {
		return fmt.Errorf("failed to register runtime gauges: %w", err)
	}

	a.Hub = ws.NewHub(a.Logger)

	picks, err := NewPicksService(a.Config, a.Paths, a.Logger, a.OTel, a.Metrics,
		a.Config.Publish.Enabled, services.WithBroadcaster(a.Hub))
	if err != nil {
		return fmt.Errorf("failed to initialize picks service: %w", err)
	}
	a.Picks = picks

	a.Health = services.NewHealthService(config.AppVersion, a.Paths, a.Hub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware that does not wrap the ResponseWriter, safe for upgrades.
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Get("/ws", ws.Handler(a.Hub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTel.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(a.errorHandler.Recoverer)
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		a.setupAPIRoutes(r)

		r.Get("/weekly", handlers.ServeWeeklyReport(a.Picks, a.errorHandler))
		r.Handle(DataURLPrefix+"/*", handlers.ServeDataFiles(DataURLPrefix, a.Paths.DataDir))
		r.Handle("/metrics", handlers.NewMetricsHandler(a.OTel.PrometheusHTTP, a.errorHandler))

		if a.FrontendFS != nil {
			r.Handle("/*", handlers.ServeFrontend(a.FrontendFS))
		} else {
			a.Logger.Warn("Frontend filesystem not available, serving API only")
		}
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
		}
		r.Use(render.SetContentType(render.ContentTypeJSON))

		picksHandler := handlers.NewPicksHandler(a.Picks, a.Config.Schedule.Timeout, a.Logger, a.errorHandler)
		r.Mount("/picks", picksHandler.Routes())

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		r.Post("/logs", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// setupScheduler registers the refresh job. Overlapping runs are skipped.
func (a *Application) setupScheduler() error {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(a.Logger.Handler(), slog.LevelDebug))
	a.Scheduler = cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := a.Scheduler.AddFunc(a.Config.Schedule.Cron, a.scheduledRefresh); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.Config.Schedule.Cron, err)
	}
	a.Logger.Info("Refresh scheduled",
		slog.String("cron", a.Config.Schedule.Cron),
		slog.Duration("timeout", a.Config.Schedule.Timeout))
	return nil
}

// scheduledRefresh runs one refresh for the scheduler.
func (a *Application) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Schedule.Timeout)
	defer cancel()

	result, err := a.Picks.Refresh(ctx)
	switch {
	case err == nil:
		a.Logger.InfoContext(ctx, "Scheduled refresh complete",
			slog.String("run_id", result.RunID),
			slog.Int("total_stocks", result.TotalStocks))
	case errors.Is(err, files.ErrNoReportFound),
		errors.Is(err, dataprocessing.ErrNoPicks),
		errors.Is(err, dataprocessing.ErrEmptyReport),
		errors.Is(err, services.ErrRefreshRunning):
		a.Logger.WarnContext(ctx, "Scheduled refresh skipped", slog.String("reason", err.Error()))
	default:
		a.Logger.ErrorContext(ctx, "Scheduled refresh failed", slog.String("error", err.Error()))
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Hub.Run(gctx)
	})

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("level", a.Config.Logging.Level))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown requested")
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	if a.Scheduler != nil {
		select {
		case <-a.Scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			a.Logger.Warn("Scheduled refresh still running at shutdown")
		}
	}

	if err := a.OTel.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
	}

	a.Logger.Info("Application shutdown complete")
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
