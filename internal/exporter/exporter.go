package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/Francelinojr/teste-gener/internal/aggregation"
	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/files"
	"github.com/Francelinojr/teste-gener/internal/pipeline"
)

// Output file stems
const (
	EnrollmentsTable = "enrollments"
	WorkbookName     = "census_tables"
	FiltersName      = "applied_filters"
	RunReportName    = "run_report"
)

// Summary lists the files an export produced, relative to the output root
type Summary struct {
	Suffix string   `json:"suffix"`
	Files  []string `json:"files"`
}

// Exporter writes a pipeline result to the output directory
type Exporter struct {
	manager *files.Manager
	csv     *CSVWriter
	logger  *slog.Logger
}

// New creates an exporter over manager
func New(manager *files.Manager, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		manager: manager,
		csv:     NewCSVWriter(manager, logger),
		logger:  logger,
	}
}

// Export writes every table of res as CSV, the canonical in-target table as
// CSV, all tables as one workbook, the filters and the run report. extra
// tables are exported alongside the pipeline's own.
func (e *Exporter) Export(ctx context.Context, res *pipeline.Result, filters Filters, extra ...aggregation.Table) (*Summary, error) {
	if res == nil {
		return nil, apperrors.NewAppValidationError("nothing to export: empty result")
	}
	if _, err := e.manager.EnsureDirectory(files.TablesDir); err != nil {
		return nil, apperrors.NewStorageError("create output directory", err)
	}

	sum := &Summary{Suffix: filters.Suffix}
	tables := append(append([]aggregation.Table(nil), res.Tables...), extra...)
	all := append(tables, aggregation.RecordTable(EnrollmentsTable, res.Target))

	for _, t := range all {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := path.Join(files.TablesDir, t.Name+filters.Suffix+".csv")
		if err := e.csv.WriteTable(name, t); err != nil {
			return sum, apperrors.NewStorageError("write table "+t.Name, err)
		}
		sum.Files = append(sum.Files, name)
	}

	book := WorkbookName + filters.Suffix + ".xlsx"
	if err := e.manager.WriteFile(book, func(w io.Writer) error {
		return WriteWorkbook(w, tables)
	}); err != nil {
		return sum, apperrors.NewStorageError("write workbook", err)
	}
	sum.Files = append(sum.Files, book)

	for _, doc := range []struct {
		name  string
		value interface{}
	}{
		{FiltersName + filters.Suffix + ".json", filters},
		{RunReportName + filters.Suffix + ".json", res},
	} {
		if err := e.writeJSON(doc.name, doc.value); err != nil {
			return sum, err
		}
		sum.Files = append(sum.Files, doc.name)
	}

	e.logger.InfoContext(ctx, "export complete",
		slog.String("run_id", res.RunID),
		slog.String("suffix", filters.Suffix),
		slog.Int("files", len(sum.Files)))
	return sum, nil
}

func (e *Exporter) writeJSON(name string, v interface{}) error {
	err := e.manager.WriteFile(name, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write %s", name), err)
	}
	return nil
}
