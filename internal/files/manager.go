package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager owns the output directory tree
type Manager struct {
	outputDir string
	logger    *slog.Logger
}

// Output subdirectories
const (
	TablesDir = "tables"
)

// NewManager creates a manager rooted at outputDir
func NewManager(outputDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{outputDir: outputDir, logger: logger}
}

// Root returns the output directory
func (m *Manager) Root() string {
	return m.outputDir
}

// Path resolves name under the output directory. Absolute paths are
// returned unchanged.
func (m *Manager) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.outputDir, name)
}

// EnsureDirectory creates a directory under the output root if it doesn't exist
func (m *Manager) EnsureDirectory(name string) (string, error) {
	full := m.Path(name)

	m.logger.Debug("Ensuring directory exists",
		slog.String("path", name),
		slog.String("full_path", full))

	if err := os.MkdirAll(full, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", full, err)
	}
	return full, nil
}

// WriteFile writes a file through fn atomically: content goes to a
// temporary file in the same directory which is renamed into place once
// fn and the sync succeed
func (m *Manager) WriteFile(name string, fn func(w io.Writer) error) error {
	full := m.Path(name)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", full, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", full, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", full, err)
	}

	m.logger.Info("Wrote file", slog.String("path", full))
	return nil
}

// ListFiles returns all files in an output subdirectory (non-recursive)
func (m *Manager) ListFiles(name string) ([]string, error) {
	entries, err := os.ReadDir(m.Path(name))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
