package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Francelinojr/teste-gener/internal/config"
)

// The process logger is created once; commands that share a process (tests,
// serve after run) reuse it.
var (
	loggerMu   sync.Mutex
	procLogger *slog.Logger
	logFile    *os.File
)

// console is where "console" and "both" outputs write. stdout is left to
// command output.
var console io.Writer = os.Stderr

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Later calls return the logger built by the first one.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if procLogger != nil {
		return procLogger, nil
	}

	out, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}
	procLogger = NewLogger(out, cfg.Format, parseLogLevel(cfg.Level))
	slog.SetDefault(procLogger)
	return procLogger, nil
}

// NewLogger returns a logger writing json or text records to w, tagged
// with the correlation ids found in each call's context
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: level <= slog.LevelDebug, Level: level}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(&correlationHandler{Handler: h})
}

// GetLogger returns the process logger, or slog.Default before InitializeLogger
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if procLogger == nil {
		return slog.Default()
	}
	return procLogger
}

func logOutput(cfg config.LoggingConfig) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return console, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}
	logFile = f

	if output == "both" {
		return io.MultiWriter(console, f), nil
	}
	return f, nil
}

// correlationHandler adds trace_id and run_id from the context to every record
type correlationHandler struct {
	slog.Handler
}

func (h *correlationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(contextAttrs(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h *correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &correlationHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *correlationHandler) WithGroup(name string) slog.Handler {
	return &correlationHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so the next
// InitializeLogger call builds a new one
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	loggerMu.Lock()
	procLogger = nil
	loggerMu.Unlock()
}
