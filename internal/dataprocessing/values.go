package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// columnIndex caches header positions for the concepts of one batch
type columnIndex map[Concept]int

func newColumnIndex(fr *Frame, prov Provenance) columnIndex {
	idx := make(columnIndex, len(prov.Columns))
	for c, col := range prov.Columns {
		idx[c] = fr.Index(col)
	}
	return idx
}

func (ci columnIndex) cell(fr *Frame, row int, c Concept) string {
	pos, ok := ci[c]
	if !ok {
		return ""
	}
	return fr.Cell(row, pos)
}

func (ci columnIndex) count(fr *Frame, row int, c Concept) domain.Count {
	if _, ok := ci[c]; !ok {
		return domain.Missing
	}
	return domain.ParseCount(ci.cell(fr, row, c))
}

// NormalizeCode renders identifier cells consistently so the same
// institution or municipality joins across files: integral numbers written
// as "3550308.0" or "0042" become "3550308" and "42".
func NormalizeCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(v, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func regionOrUnknown(r domain.Region) domain.Region {
	if r == "" {
		return domain.RegionUnknown
	}
	return r
}
