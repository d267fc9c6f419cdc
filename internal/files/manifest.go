package files

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
)

var (
	manifestName = regexp.MustCompile(`(?i)^md5_microdados_ed_superior_.*\.txt$`)
	manifestYear = regexp.MustCompile(`\d{4}`)
	manifestCSV  = regexp.MustCompile(`(?i)[A-Za-z0-9_]+\.CSV`)
)

// ManifestRow is the completeness report of one MD5 listing
type ManifestRow struct {
	Year         int      `json:"year"`
	Path         string   `json:"path"`
	Expected     int      `json:"expected"`
	Present      int      `json:"present"`
	Missing      int      `json:"missing"`
	MissingFiles []string `json:"missing_files,omitempty"`
}

// ScanManifests finds every md5_microdados_ed_superior_*.txt under dataDir
// and checks the CSV names each one lists against the CSV files of its
// year directory. Rows are sorted by year.
func ScanManifests(ctx context.Context, dataDir string) ([]ManifestRow, error) {
	var manifests []string
	err := walkFiles(ctx, dataDir, func(path string, _ fs.DirEntry) {
		if manifestName.MatchString(filepath.Base(path)) {
			manifests = append(manifests, path)
		}
	})
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(dataDir, err)
	}

	rows := make([]ManifestRow, 0, len(manifests))
	for _, path := range manifests {
		expected, err := readManifest(path)
		if err != nil {
			return nil, err
		}
		present, err := csvNames(ctx, yearRoot(dataDir, path))
		if err != nil {
			return nil, err
		}

		row := ManifestRow{Path: path, Expected: len(expected)}
		if y := manifestYear.FindString(filepath.Base(path)); y != "" {
			row.Year, _ = strconv.Atoi(y)
		}
		for name := range expected {
			if present[name] {
				row.Present++
			} else {
				row.MissingFiles = append(row.MissingFiles, name)
			}
		}
		sort.Strings(row.MissingFiles)
		row.Missing = len(row.MissingFiles)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// readManifest returns the upper-cased CSV names listed in a latin1 file
func readManifest(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(path, err)
	}
	defer f.Close()

	out := make(map[string]bool)
	sc := bufio.NewScanner(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	for sc.Scan() {
		for _, name := range manifestCSV.FindAllString(sc.Text(), -1) {
			out[strings.ToUpper(name)] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.NewParsingError("read manifest "+path, err)
	}
	return out, nil
}

func csvNames(ctx context.Context, root string) (map[string]bool, error) {
	out := make(map[string]bool)
	err := walkFiles(ctx, root, func(path string, _ fs.DirEntry) {
		name := strings.ToUpper(filepath.Base(path))
		if strings.HasSuffix(name, ".CSV") {
			out[name] = true
		}
	})
	return out, err
}

// yearRoot is the top-level directory under dataDir that holds path, or
// dataDir itself for manifests placed directly in it
func yearRoot(dataDir, path string) string {
	rel, err := filepath.Rel(dataDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Dir(path)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return dataDir
	}
	return filepath.Join(dataDir, parts[0])
}
