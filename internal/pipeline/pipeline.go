// Package pipeline runs a full census pass: per-year loading, concatenation
// in year order, classification, institution-type labelling and the
// aggregated tables.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Francelinojr/teste-gener/internal/aggregation"
	"github.com/Francelinojr/teste-gener/internal/classify"
	"github.com/Francelinojr/teste-gener/internal/dataprocessing"
	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/infrastructure"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Options selects what a run loads and reports
type Options struct {
	Years   []int
	Regions []domain.Region
	// TargetCodes defines the target group; empty uses classify.DefaultTargetCodes
	TargetCodes []string
	// SelectedCodes narrows the target group; empty keeps all of it
	SelectedCodes     []string
	ChunkSize         int
	TopMunicipalities int
	// Parallel is the number of years loaded at once, at least 1
	Parallel int
}

// Result is the outcome of a run. Records is the full canonical table with
// labels; Target holds the in-target records after narrowing, which the
// tables are built from.
type Result struct {
	RunID          string                       `json:"run_id"`
	StartedAt      time.Time                    `json:"started_at"`
	FinishedAt     time.Time                    `json:"finished_at"`
	Years          []int                        `json:"years"`
	LoadedYears    []int                        `json:"loaded_years"`
	ReferenceYear  int                          `json:"reference_year"`
	YearResults    []dataprocessing.YearResult  `json:"year_results"`
	Classification classify.Stats               `json:"classification"`
	Records        []domain.EnrollmentRecord    `json:"-"`
	Target         []domain.EnrollmentRecord    `json:"-"`
	Tables         []aggregation.Table          `json:"-"`
}

// Table returns a table by name
func (r *Result) Table(name string) (aggregation.Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return aggregation.Table{}, false
}

// Runner executes pipeline runs over a set of sources
type Runner struct {
	sources dataprocessing.SourceResolver
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.CensusMetrics
}

// Option configures a Runner
type Option func(*Runner)

// WithTracer sets the tracer for run and year spans
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithMetrics sets the loader instruments
func WithMetrics(m *infrastructure.CensusMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner
func NewRunner(sources dataprocessing.SourceResolver, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		sources: sources,
		logger:  logger.With(slog.String("component", "pipeline")),
		tracer:  otel.Tracer(infrastructure.MeterName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the requested years and builds the tables. It fails with
// apperrors.ErrNoData when no year yields records, and with the context
// error when ctx is cancelled; every other problem is absorbed per source.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	years := append([]int(nil), opts.Years...)
	sort.Ints(years)

	res := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Years:     years,
	}
	ctx, span := r.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("run_id", res.RunID),
		attribute.IntSlice("years", years),
	))
	defer span.End()
	ctx = infrastructure.WithRunID(ctx, res.RunID)

	logger := r.logger
	logger.InfoContext(ctx, "pipeline run started",
		slog.Any("years", years),
		slog.Any("regions", opts.Regions),
		slog.Int("chunk_size", opts.ChunkSize),
		slog.Int("parallel", opts.Parallel))

	loaded, err := r.loadYears(ctx, years, opts)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	res.YearResults = loaded

	for _, yr := range loaded {
		if len(yr.Records) == 0 {
			continue
		}
		res.LoadedYears = append(res.LoadedYears, yr.Year)
		res.Records = append(res.Records, yr.Records...)
	}
	if len(res.Records) == 0 {
		err := fmt.Errorf("years %v: %w", years, apperrors.ErrNoData)
		infrastructure.RecordError(ctx, err)
		logger.ErrorContext(ctx, "no data loaded", slog.Any("years", years))
		return nil, err
	}
	res.ReferenceYear = res.LoadedYears[len(res.LoadedYears)-1]

	res.Classification = classify.New(opts.TargetCodes, logger).Label(ctx, res.Records)
	aggregation.LabelInstitutionTypes(res.Records)
	res.Target = classify.Narrow(classify.InTarget(res.Records), opts.SelectedCodes)

	codes := opts.SelectedCodes
	if len(codes) == 0 {
		codes = opts.TargetCodes
	}
	res.Tables = BuildTables(res.Target, TableOptions{
		ReferenceYear:     res.ReferenceYear,
		TopMunicipalities: opts.TopMunicipalities,
		TargetCodes:       codes,
	})
	res.FinishedAt = time.Now().UTC()

	span.SetAttributes(
		attribute.Int("records", len(res.Records)),
		attribute.Int("target_records", len(res.Target)),
	)
	logger.InfoContext(ctx, "pipeline run finished",
		slog.Any("loaded_years", res.LoadedYears),
		slog.Int("records", len(res.Records)),
		slog.Int("target_records", len(res.Target)),
		slog.Int("tables", len(res.Tables)),
		slog.Duration("duration", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

// loadYears runs the dispatcher for every year. Results are stored by
// index so their order is the year order whatever the completion order.
func (r *Runner) loadYears(ctx context.Context, years []int, opts Options) ([]dataprocessing.YearResult, error) {
	d := dataprocessing.NewDispatcher(r.sources, dataprocessing.DispatcherConfig{
		ChunkSize: opts.ChunkSize,
		Regions:   opts.Regions,
	}, r.logger, dataprocessing.WithTracer(r.tracer), dataprocessing.WithMetrics(r.metrics))

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	results := make([]dataprocessing.YearResult, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, year := range years {
		g.Go(func() error {
			yr, err := d.LoadYear(gctx, year)
			if err != nil {
				return err
			}
			results[i] = yr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
