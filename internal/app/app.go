package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"providerpulse/internal/config"
	apierrors "providerpulse/internal/errors"
	"providerpulse/internal/infrastructure"
	pulsemw "providerpulse/internal/middleware"
	"providerpulse/internal/services"
	handlers "providerpulse/internal/transport/http"
	ws "providerpulse/internal/websocket"
	"providerpulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        chi.Router
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	SystemMetrics *infrastructure.SystemMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Hub           *ws.Hub
	Datasets      *services.DatasetService
	Health        *services.HealthService

	wg          sync.WaitGroup
	stopRefresh context.CancelFunc
	stopOnce    sync.Once
}

// NewApplication loads configuration and the process logger, then wires
// the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load config", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.initializeServices()

	app.SystemMetrics, err = infrastructure.NewSystemMetrics(providers.Meter, infrastructure.StateSources{
		Datasets:         app.Datasets.Count,
		WebSocketClients: app.Hub.ClientCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register system metrics: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices creates the hub and the services that depend on it
func (a *Application) initializeServices() {
	a.Hub = ws.NewHub(a.Logger)
	a.Datasets = services.NewDatasetService(a.Config.Ingest, a.Hub, a.Metrics, a.Logger)
	a.Health = services.NewHealthService(
		services.BuildInfo{Version: contracts.Version, BuildTime: contracts.BuildTime, Commit: contracts.GitCommit},
		a.Config.Ingest.DefaultPath,
		a.Datasets,
		a.Hub,
		a.Logger,
	)
}

// setupRouter configures the HTTP router. The websocket endpoint sits
// outside the timeout and rate limit group because connections are long lived.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(pulsemw.RequestID)
	r.Use(pulsemw.RealIP)

	cors := a.corsConfig()
	r.With(pulsemw.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws", handlers.NewWebSocketHandler(a.Hub, a.Config.WebSocket, cors.AllowedOrigins, a.Logger, a.ErrorHandler))

	r.Group(func(r chi.Router) {
		r.Use(pulsemw.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(pulsemw.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(pulsemw.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(pulsemw.CORS(cors))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(pulsemw.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
		}

		r.Mount("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.Hub).Routes())
		a.setupAPIRoutes(r)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures the /api routes
func (a *Application) setupAPIRoutes(r chi.Router) {
	health := handlers.NewHealthHandler(a.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(pulsemw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.Mount("/health", health.Routes())
		r.Get("/version", health.Version)
		r.Mount("/datasets", handlers.NewDatasetHandler(a.Datasets, a.Config.Ingest.MaxUploadBytes, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/weeks", handlers.NewWeeksHandler(a.Logger, a.ErrorHandler).Routes())
	})
}

// corsConfig builds the CORS policy from the security section
func (a *Application) corsConfig() pulsemw.CORSConfig {
	return pulsemw.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
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
	}
}

// Start starts the hub, loads the default dataset and begins serving.
// A failing default workbook is logged and the server still comes up.
// cancel is called when the listener fails.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Hub.Start()

	if a.Config.Ingest.DefaultPath != "" {
		if _, err := a.Datasets.LoadDefault(ctx); err != nil {
			infrastructure.WithError(a.Logger, err).WarnContext(ctx, "Default dataset not loaded",
				slog.String("path", a.Config.Ingest.DefaultPath))
		}

		refreshCtx, stopRefresh := context.WithCancel(ctx)
		a.stopRefresh = stopRefresh

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.Datasets.RunRefresher(refreshCtx)
		}()
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application. Only the first call has effect.
func (a *Application) Stop(ctx context.Context) error {
	var stopErr error
	a.stopOnce.Do(func() {
		stopErr = a.stop(ctx)
	})
	return stopErr
}

func (a *Application) stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Hub.Stop()
	if a.stopRefresh != nil {
		a.stopRefresh()
	}
	a.wg.Wait()

	if err := a.SystemMetrics.Unregister(); err != nil {
		a.Logger.ErrorContext(ctx, "Error unregistering system metrics", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
