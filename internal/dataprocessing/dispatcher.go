package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Francelinojr/teste-gener/internal/infrastructure"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// SourceResolver maps a year to the extracts available for it on disk
type SourceResolver interface {
	InstitutionSource
	ModernFile(year int) (string, bool)
	LegacyFiles(year int) []string
	LegacyInstitutionFile(year int) (string, bool)
}

// State is a step of the per-year loading machine
type State int

const (
	StateModernAttempt State = iota
	StateLegacyAttempt
	StateDone
)

func (s State) String() string {
	switch s {
	case StateModernAttempt:
		return "modern_attempt"
	case StateLegacyAttempt:
		return "legacy_attempt"
	default:
		return "done"
	}
}

// MarshalText renders the state name in JSON reports
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Attempt records what one state of the machine did
type Attempt struct {
	State      State        `json:"state"`
	Files      []string     `json:"files,omitempty"`
	RowsRead   int          `json:"rows_read"`
	Records    int          `json:"records"`
	Provenance []Provenance `json:"provenance,omitempty"`
	Failures   []string     `json:"failures,omitempty"`
}

// YearResult is the outcome of loading one year. Source tells which format
// produced Records; SourceNone means the year contributes nothing.
type YearResult struct {
	Year     int                       `json:"year"`
	Source   domain.Source             `json:"source"`
	Records  []domain.EnrollmentRecord `json:"-"`
	Attempts []Attempt                 `json:"attempts"`
}

// DispatcherConfig controls batching and the region-of-interest filter
type DispatcherConfig struct {
	// ChunkSize is the number of rows per batch; zero reads files whole
	ChunkSize int
	// Regions keeps only records in these regions. Empty keeps everything,
	// including RegionUnknown.
	Regions []domain.Region
}

// Dispatcher loads a year from whichever format is available, trying the
// unified modern extract first and falling back to the legacy files
type Dispatcher struct {
	sources      SourceResolver
	institutions *InstitutionIndex
	cfg          DispatcherConfig
	regions      map[domain.Region]bool
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *infrastructure.CensusMetrics
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTracer sets the tracer used for per-year spans
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithMetrics sets the loader instruments
func WithMetrics(m *infrastructure.CensusMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a dispatcher over sources
func NewDispatcher(sources SourceResolver, cfg DispatcherConfig, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sources:      sources,
		institutions: NewInstitutionIndex(sources, logger),
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "dispatcher")),
		tracer:       otel.Tracer(infrastructure.MeterName),
	}
	if len(cfg.Regions) > 0 {
		d.regions = make(map[domain.Region]bool, len(cfg.Regions))
		for _, r := range cfg.Regions {
			d.regions[r] = true
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadYear runs the loading machine for year. Unreadable or empty sources
// are not errors: they move the machine on, and a year where every source
// is empty comes back with SourceNone. Only cancellation of ctx is returned.
func (d *Dispatcher) LoadYear(ctx context.Context, year int) (YearResult, error) {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "dispatcher.LoadYear", trace.WithAttributes(attribute.Int("year", year)))
	defer span.End()

	res := YearResult{Year: year, Source: domain.SourceNone}
	geo := d.institutions.Load(ctx, year)

	state := StateModernAttempt
	for state != StateDone {
		var (
			recs []domain.EnrollmentRecord
			att  Attempt
		)
		switch state {
		case StateModernAttempt:
			recs, att = d.attemptModern(ctx, year, geo)
		case StateLegacyAttempt:
			recs, att = d.attemptLegacy(ctx, year, geo)
		}
		res.Attempts = append(res.Attempts, att)

		if err := ctx.Err(); err != nil {
			infrastructure.RecordError(ctx, err)
			return YearResult{Year: year, Source: domain.SourceNone, Attempts: res.Attempts}, err
		}

		switch {
		case len(recs) > 0 && state == StateModernAttempt:
			res.Source, res.Records, state = domain.SourceModern, recs, StateDone
		case len(recs) > 0:
			res.Source, res.Records, state = domain.SourceLegacy, recs, StateDone
		case state == StateModernAttempt:
			state = StateLegacyAttempt
		default:
			state = StateDone
		}
	}

	span.SetAttributes(
		attribute.String("source", string(res.Source)),
		attribute.Int("records", len(res.Records)),
	)
	infrastructure.RecordYearLoaded(ctx, d.metrics, string(res.Source), time.Since(start))

	d.logger.InfoContext(ctx, "year loaded",
		slog.Int("year", year),
		slog.String("source", string(res.Source)),
		slog.Int("records", len(res.Records)),
		slog.Int("attempts", len(res.Attempts)),
		slog.Duration("duration", time.Since(start)))

	return res, nil
}

func (d *Dispatcher) attemptModern(ctx context.Context, year int, geo map[string]domain.InstitutionGeo) ([]domain.EnrollmentRecord, Attempt) {
	att := Attempt{State: StateModernAttempt}
	path, ok := d.sources.ModernFile(year)
	if !ok {
		return nil, att
	}
	att.Files = []string{path}

	acc := NewAccumulator()
	opts := modernReadOptions
	opts.ChunkSize = d.cfg.ChunkSize
	err := ReadBatches(ctx, path, opts, func(fr *Frame) error {
		recs, prov := MapModern(fr, year)
		if len(att.Provenance) == 0 {
			att.Provenance = append(att.Provenance, prov)
		}
		att.RowsRead += fr.Len()
		for i := range recs {
			Backfill(&recs[i], geo)
			completeGeography(&recs[i])
		}
		acc.Add(d.filterRegions(recs)...)
		return nil
	})
	infrastructure.RecordRowsRead(ctx, d.metrics, string(domain.SourceModern), att.RowsRead)

	if err != nil {
		d.sourceFailed(ctx, &att, domain.SourceModern, year, path, err)
		return nil, att
	}

	att.Records = acc.Len()
	return acc.Records(), att
}

func (d *Dispatcher) attemptLegacy(ctx context.Context, year int, geo map[string]domain.InstitutionGeo) ([]domain.EnrollmentRecord, Attempt) {
	files := d.sources.LegacyFiles(year)
	att := Attempt{State: StateLegacyAttempt, Files: files}
	if len(files) == 0 {
		return nil, att
	}

	institutions := d.loadLegacyInstitutions(ctx, year, &att)

	acc := NewAccumulator()
	opts := legacyReadOptions
	opts.ChunkSize = d.cfg.ChunkSize
	for _, path := range files {
		// A file that fails midway contributes nothing, not a prefix of its rows
		fileAcc := NewAccumulator()
		rows := 0
		err := ReadBatches(ctx, path, opts, func(fr *Frame) error {
			recs, prov := MapLegacy(fr, year)
			if rows == 0 {
				att.Provenance = append(att.Provenance, prov)
			}
			rows += fr.Len()
			for i := range recs {
				r := &recs[i]
				if institutions != nil {
					institutions.Apply(r)
				}
				Backfill(r, geo)
				completeGeography(r)
				if r.MunicipalityName == "" {
					r.MunicipalityName = r.MunicipalityCode
				}
			}
			fileAcc.Add(d.filterRegions(recs)...)
			return nil
		})
		att.RowsRead += rows
		if err != nil {
			d.sourceFailed(ctx, &att, domain.SourceLegacy, year, path, err)
			if ctx.Err() != nil {
				return nil, att
			}
			continue
		}
		acc.Add(fileAcc.Records()...)
	}
	infrastructure.RecordRowsRead(ctx, d.metrics, string(domain.SourceLegacy), att.RowsRead)

	att.Records = acc.Len()
	return acc.Records(), att
}

func (d *Dispatcher) loadLegacyInstitutions(ctx context.Context, year int, att *Attempt) *LegacyInstitutions {
	path, ok := d.sources.LegacyInstitutionFile(year)
	if !ok {
		d.logger.InfoContext(ctx, "no legacy institution file, administrative category stays missing",
			slog.Int("year", year))
		return nil
	}
	inst, err := LoadLegacyInstitutions(ctx, path)
	if err != nil {
		d.sourceFailed(ctx, att, domain.SourceLegacy, year, path, err)
		return nil
	}
	if inst.Collisions > 0 {
		d.logger.WarnContext(ctx, "legacy institutions share (state, municipality) join keys, first entry wins",
			slog.Int("year", year),
			slog.String("path", path),
			slog.Int("collisions", inst.Collisions))
	}
	return inst
}

func (d *Dispatcher) sourceFailed(ctx context.Context, att *Attempt, format domain.Source, year int, path string, err error) {
	att.Failures = append(att.Failures, err.Error())
	infrastructure.RecordSourceFailure(ctx, d.metrics, string(format))
	d.logger.WarnContext(ctx, "source unusable, treated as empty",
		slog.Int("year", year),
		slog.String("format", string(format)),
		slog.String("path", path),
		slog.String("error", err.Error()))
}

func (d *Dispatcher) filterRegions(recs []domain.EnrollmentRecord) []domain.EnrollmentRecord {
	if d.regions == nil {
		return recs
	}
	out := recs[:0]
	for _, r := range recs {
		if d.regions[r.Region] {
			out = append(out, r)
		}
	}
	return out
}
