package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/Francelinojr/teste-gener/internal/aggregation"
	"github.com/Francelinojr/teste-gener/internal/files"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	manager *files.Manager
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(manager *files.Manager, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{manager: manager, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Comma     rune
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file under the output directory
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", name),
		slog.String("full_path", w.manager.Path(name)),
		slog.Int("record_count", len(options.Records)))

	return w.manager.WriteFile(name, func(out io.Writer) error {
		return encodeCSV(out, options)
	})
}

// WriteTable writes a table as semicolon-separated CSV with a BOM
func (w *CSVWriter) WriteTable(name string, t aggregation.Table) error {
	return w.WriteCSV(name, WriteOptions{
		Headers:   t.Columns,
		Records:   t.Rows,
		Comma:     ';',
		BOMPrefix: true,
	})
}

func encodeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if options.Comma != 0 {
		writer.Comma = options.Comma
	}

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
