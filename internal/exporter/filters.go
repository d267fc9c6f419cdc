package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Francelinojr/teste-gener/internal/classify"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Filters describes the selection a run was made with. It is written next
// to the outputs as applied_filters<suffix>.json.
type Filters struct {
	Codes    []string        `json:"codes"`
	YearSpan []int           `json:"year_span,omitempty"` // first and last year, explicit selections only
	Years    []int           `json:"years"`
	Regions  []domain.Region `json:"regions"`
	Clusters int             `json:"clusters"`
	Suffix   string          `json:"suffix"`
	Title    string          `json:"title"`
}

// FilterInput is what NewFilters needs from the run configuration
type FilterInput struct {
	// SelectedCodes are the codes chosen by the user; empty means the whole
	// target group
	SelectedCodes []string
	Years         []int
	YearsExplicit bool
	Regions       []domain.Region
	Clusters      int
}

// NewFilters computes the suffix and title for a run
func NewFilters(in FilterInput) Filters {
	f := Filters{
		Codes:    append([]string(nil), in.SelectedCodes...),
		Years:    append([]int(nil), in.Years...),
		Regions:  append([]domain.Region(nil), in.Regions...),
		Clusters: in.Clusters,
	}
	if in.YearsExplicit && len(in.Years) > 0 {
		f.YearSpan = []int{minInt(in.Years), maxInt(in.Years)}
	}
	f.Suffix = f.suffix()
	f.Title = f.title()
	return f
}

func (f Filters) suffix() string {
	var b strings.Builder
	if len(f.Codes) > 0 {
		b.WriteString("_cine_" + strings.Join(f.Codes, "_"))
	}
	if len(f.YearSpan) == 2 {
		fmt.Fprintf(&b, "_anos_%d_%d", f.YearSpan[0], f.YearSpan[1])
	}
	if len(f.Regions) > 0 {
		b.WriteString("_regs_" + strings.Join(regionTags(f.Regions), "-"))
	}
	if f.Clusters > 0 {
		b.WriteString("_k" + strconv.Itoa(f.Clusters))
	}
	return b.String()
}

func (f Filters) title() string {
	var parts []string
	if len(f.Codes) > 0 {
		names := make([]string, 0, len(f.Codes))
		for _, c := range f.Codes {
			if n, ok := classify.GroupNames[c]; ok {
				names = append(names, c+" "+n)
			} else {
				names = append(names, c)
			}
		}
		parts = append(parts, "CINE="+strings.Join(names, ", "))
	} else {
		parts = append(parts, "STEM")
	}
	if len(f.YearSpan) == 2 {
		parts = append(parts, fmt.Sprintf("Anos=%d–%d", f.YearSpan[0], f.YearSpan[1]))
	}
	if len(f.Regions) > 0 {
		parts = append(parts, "Regiões="+strings.Join(regionTags(f.Regions), ","))
	}
	if f.Clusters > 0 {
		parts = append(parts, "k="+strconv.Itoa(f.Clusters))
	}
	return strings.Join(parts, " | ")
}

func regionTags(regions []domain.Region) []string {
	tags := make([]string, len(regions))
	for i, r := range regions {
		tags[i] = r.Abbreviation()
	}
	return tags
}

func minInt(v []int) int {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt(v []int) int {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
