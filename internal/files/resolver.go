package files

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

var (
	modernName    = regexp.MustCompile(`(?i)CURSOS_.*?(\d{4})\.CSV$`)
	legacyDirName = regexp.MustCompile(`(?i)^microdados_censo_da_educacao_superior_(\d{4})$`)
	legacyCourse  = regexp.MustCompile(`(?i)^GRADUACAO_.*\.CSV$`)
	institution   = regexp.MustCompile(`(?i)IES_(\d{4})\.CSV$`)
)

const legacyInstitutionName = "INSTITUICAO.CSV"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// YearFiles lists everything found for one year
type YearFiles struct {
	Year              int             `json:"year"`
	Modern            string          `json:"modern,omitempty"`
	Legacy            []string        `json:"legacy,omitempty"`
	LegacyInstitution string          `json:"legacy_institution,omitempty"`
	Institutions      []string        `json:"institutions,omitempty"`
	Formats           []domain.Source `json:"formats"`
}

// Resolver maps years to the census files under the data directories.
//
// Modern extracts (*CURSOS_<yyyy>.CSV) are searched recursively in the CSV
// directories, in order; the first directory holding a year wins. Legacy
// files live under <data>/microdados_censo_da_educacao_superior_<yyyy>/**/DADOS/.
// Institution metadata (*IES_<yyyy>.CSV) is taken from the top level of the
// CSV directories and from anywhere under the data directory.
type Resolver struct {
	dataDir string
	csvDirs []string
	logger  *slog.Logger

	modern       map[int]string
	legacy       map[int][]string
	legacyInst   map[int]string
	institutions map[int][]string
}

// NewResolver creates a resolver. Call Scan before querying it.
func NewResolver(dataDir string, csvDirs []string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		dataDir:      dataDir,
		csvDirs:      csvDirs,
		logger:       logger.With(slog.String("component", "file_resolver")),
		modern:       make(map[int]string),
		legacy:       make(map[int][]string),
		legacyInst:   make(map[int]string),
		institutions: make(map[int][]string),
	}
}

// Scan walks the directories and indexes the files by year. Directories
// that do not exist are skipped.
func (r *Resolver) Scan(ctx context.Context) error {
	for _, dir := range r.csvDirs {
		if err := r.scanModern(ctx, dir); err != nil {
			return err
		}
	}
	if err := r.scanInstitutions(ctx); err != nil {
		return err
	}
	if err := r.scanLegacy(ctx); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "census files indexed",
		slog.Int("modern_years", len(r.modern)),
		slog.Int("legacy_years", len(r.legacy)),
		slog.Any("years", r.Years()))
	return nil
}

func (r *Resolver) scanModern(ctx context.Context, dir string) error {
	found := make(map[int]string)
	err := walkFiles(ctx, dir, func(path string, _ fs.DirEntry) {
		m := modernName.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			return
		}
		year, _ := strconv.Atoi(m[1])
		if _, ok := found[year]; !ok {
			found[year] = path
		}
	})
	if err != nil {
		return err
	}
	for year, path := range found {
		if _, ok := r.modern[year]; !ok {
			r.modern[year] = path
		}
	}
	return nil
}

func (r *Resolver) scanInstitutions(ctx context.Context) error {
	seen := make(map[string]bool)
	add := func(path string) {
		m := institution.FindStringSubmatch(filepath.Base(path))
		if m == nil || seen[path] {
			return
		}
		seen[path] = true
		year, _ := strconv.Atoi(m[1])
		r.institutions[year] = append(r.institutions[year], path)
	}

	for _, dir := range r.csvDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(dir, e.Name()))
			}
		}
	}
	return walkFiles(ctx, r.dataDir, func(path string, _ fs.DirEntry) { add(path) })
}

func (r *Resolver) scanLegacy(ctx context.Context) error {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		m := legacyDirName.FindStringSubmatch(e.Name())
		if !e.IsDir() || m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		err := walkFiles(ctx, filepath.Join(r.dataDir, e.Name()), func(path string, _ fs.DirEntry) {
			if !strings.EqualFold(filepath.Base(filepath.Dir(path)), "DADOS") {
				return
			}
			name := filepath.Base(path)
			switch {
			case legacyCourse.MatchString(name):
				r.legacy[year] = append(r.legacy[year], path)
			case strings.EqualFold(name, legacyInstitutionName):
				if _, ok := r.legacyInst[year]; !ok {
					r.legacyInst[year] = path
				}
			}
		})
		if err != nil {
			return err
		}
	}
	for year := range r.legacy {
		sort.Strings(r.legacy[year])
	}
	return nil
}

// ModernFile returns the modern extract for year
func (r *Resolver) ModernFile(year int) (string, bool) {
	p, ok := r.modern[year]
	return p, ok
}

// LegacyFiles returns the legacy graduation files for year, sorted
func (r *Resolver) LegacyFiles(year int) []string {
	return r.legacy[year]
}

// LegacyInstitutionFile returns the legacy institution file for year
func (r *Resolver) LegacyInstitutionFile(year int) (string, bool) {
	p, ok := r.legacyInst[year]
	return p, ok
}

// InstitutionCandidates returns the institution metadata files for year in
// search order
func (r *Resolver) InstitutionCandidates(year int) []string {
	return r.institutions[year]
}

// Years lists every year with a modern extract or legacy graduation files
func (r *Resolver) Years() []int {
	set := make(map[int]bool, len(r.modern)+len(r.legacy))
	for y := range r.modern {
		set[y] = true
	}
	for y, files := range r.legacy {
		if len(files) > 0 {
			set[y] = true
		}
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Inventory describes the files found for every year
func (r *Resolver) Inventory() []YearFiles {
	var out []YearFiles
	for _, year := range r.Years() {
		yf := YearFiles{
			Year:              year,
			Modern:            r.modern[year],
			Legacy:            r.legacy[year],
			LegacyInstitution: r.legacyInst[year],
			Institutions:      r.institutions[year],
		}
		if yf.Modern != "" {
			yf.Formats = append(yf.Formats, domain.SourceModern)
		}
		if len(yf.Legacy) > 0 {
			yf.Formats = append(yf.Formats, domain.SourceLegacy)
		}
		out = append(out, yf)
	}
	return out
}

// Stat returns the FileInfo for path
func Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Path: path, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}, nil
}

// walkFiles calls fn for every regular file under root in lexical order.
// A missing root is not an error.
func walkFiles(ctx context.Context, root string, fn func(path string, d fs.DirEntry)) error {
	if root == "" {
		return nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			fn(path, d)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
