package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// writeLatin1 writes lines as an ISO-8859-1 file, the way the census
// agency publishes its extracts
func writeLatin1(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	content, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeSources struct {
	modern          map[int]string
	legacy          map[int][]string
	legacyInstitute map[int]string
	institutions    map[int][]string
}

func (f fakeSources) ModernFile(year int) (string, bool) {
	p, ok := f.modern[year]
	return p, ok
}

func (f fakeSources) LegacyFiles(year int) []string {
	return f.legacy[year]
}

func (f fakeSources) LegacyInstitutionFile(year int) (string, bool) {
	p, ok := f.legacyInstitute[year]
	return p, ok
}

func (f fakeSources) InstitutionCandidates(year int) []string {
	return f.institutions[year]
}
