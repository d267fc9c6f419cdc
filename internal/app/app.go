package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Francelinojr/teste-gener/internal/classify"
	"github.com/Francelinojr/teste-gener/internal/config"
	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/exporter"
	"github.com/Francelinojr/teste-gener/internal/files"
	"github.com/Francelinojr/teste-gener/internal/infrastructure"
	customMiddleware "github.com/Francelinojr/teste-gener/internal/middleware"
	"github.com/Francelinojr/teste-gener/internal/pipeline"
	"github.com/Francelinojr/teste-gener/internal/store"
	handlers "github.com/Francelinojr/teste-gener/internal/transport/http"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Resolver      *files.Resolver
	Runner        *pipeline.Runner
	Exporter      *exporter.Exporter
	Store         *store.Store // nil unless paths.database is set
	Results       *handlers.ResultHolder
	Router        *chi.Mux
	Server        *http.Server
}

// Outcome is what one pipeline run produced
type Outcome struct {
	Result  *pipeline.Result
	Filters exporter.Filters
	Export  *exporter.Summary
	// UnresolvedNames are subject names that matched no area group
	UnresolvedNames []string
}

// NewApplication creates a new application instance from a validated configuration
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.TraceExporter = cfg.Telemetry.TraceExporter
	otelCfg.MetricExporter = cfg.Telemetry.MetricExporter
	otelCfg.SampleRatio = cfg.Telemetry.SampleRatio
	otelCfg.EnableTracing = cfg.Telemetry.TraceExporter != "none"
	otelCfg.EnableMetrics = cfg.Telemetry.MetricExporter != "none"

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize opentelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateCensusMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create census metrics: %w", err)
	}

	resolver := files.NewResolver(cfg.Paths.DataDir, cfg.Paths.CSVDirs, logger)
	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Resolver:      resolver,
		Runner: pipeline.NewRunner(resolver, logger,
			pipeline.WithTracer(providers.Tracer),
			pipeline.WithMetrics(metrics)),
		Exporter: exporter.New(files.NewManager(cfg.Paths.OutputDir, logger), logger),
		Results:  handlers.NewResultHolder(nil),
	}

	if cfg.Paths.Database != "" {
		st, err := store.Open(cfg.Paths.Database, store.WithMkdirAll(), store.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		a.Store = st
	}

	logger.Info("application initialized",
		slog.String("data_dir", cfg.Paths.DataDir),
		slog.Any("csv_dirs", cfg.Paths.CSVDirs),
		slog.String("output_dir", cfg.Paths.OutputDir),
		slog.String("database", cfg.Paths.Database))
	return a, nil
}

// Scan discovers the source files under the configured directories
func (a *Application) Scan(ctx context.Context) error {
	return a.Resolver.Scan(ctx)
}

// PipelineOptions translates the configuration into run options
func (a *Application) PipelineOptions() (pipeline.Options, config.YearSelection, []string, error) {
	pc := a.Config.Pipeline
	sel, err := config.ParseYears(pc.Years, a.Resolver.Years())
	if err != nil {
		return pipeline.Options{}, sel, nil, err
	}
	codes, unresolved := classify.Selection(pc.SubjectCodes, pc.SubjectNames)

	opts := pipeline.Options{
		Years:             sel.Years,
		Regions:           Regions(pc.Regions),
		SelectedCodes:     codes,
		ChunkSize:         pc.ChunkSize,
		TopMunicipalities: pc.TopMunicipalities,
		Parallel:          pc.ParallelYears,
	}
	return opts, sel, unresolved, nil
}

// RunPipeline scans the sources, runs the pipeline, exports the tables and
// stores the run when a database is configured. The finished run is
// published to the API.
func (a *Application) RunPipeline(ctx context.Context) (*Outcome, error) {
	if err := a.Scan(ctx); err != nil {
		return nil, err
	}
	opts, sel, unresolved, err := a.PipelineOptions()
	if err != nil {
		return nil, err
	}
	for _, n := range unresolved {
		a.Logger.WarnContext(ctx, "subject name matches no area group", slog.String("name", n))
	}
	if len(opts.Years) == 0 {
		return nil, fmt.Errorf("no years found under %s: %w", a.Config.Paths.DataDir, apperrors.ErrNoData)
	}

	res, err := a.Runner.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	filters := exporter.NewFilters(exporter.FilterInput{
		SelectedCodes: opts.SelectedCodes,
		Years:         opts.Years,
		YearsExplicit: sel.Explicit,
		Regions:       opts.Regions,
		Clusters:      a.Config.Pipeline.Clusters,
	})
	summary, err := a.Exporter.Export(ctx, res, filters)
	if err != nil {
		return nil, err
	}

	if a.Store != nil {
		if err := a.Store.SaveRun(ctx, res); err != nil {
			return nil, err
		}
	}

	a.Results.Set(res)
	return &Outcome{Result: res, Filters: filters, Export: summary, UnresolvedNames: unresolved}, nil
}

// Regions converts configured region names. Names are validated by config.
func Regions(names []string) []domain.Region {
	out := make([]domain.Region, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Region(strings.TrimSpace(n)))
	}
	return out
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	// RequestID → OTel → Logger → Recoverer → SecurityHeaders → RateLimit
	r.Use(customMiddleware.RequestID)
	if a.OTelProviders != nil {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("failed to create opentelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	health := handlers.NewHealthHandler(a.Results, a.Logger)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/healthz", health.HealthCheck)

	var runs handlers.RunLister
	if a.Store != nil {
		runs = a.Store
	}
	data := handlers.NewDataHandler(a.Results, runs, a.Logger, errorHandler)
	r.Mount("/api/v1", data.Routes())

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// Handler returns the API router, building it on first use
func (a *Application) Handler() http.Handler {
	if a.Router == nil {
		a.setupRouter()
	}
	return a.Router
}

// runtimeSampleInterval is how often serve mode samples runtime gauges
const runtimeSampleInterval = 15 * time.Second

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Serve runs the HTTP API until ctx is cancelled, then shuts it down gracefully
func (a *Application) Serve(ctx context.Context) error {
	a.createServer()

	if a.OTelProviders != nil {
		collector, err := infrastructure.NewRuntimeCollector(a.OTelProviders.Meter, runtimeSampleInterval)
		if err != nil {
			return err
		}
		go collector.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Close releases the store, flushes telemetry and closes the log file
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
