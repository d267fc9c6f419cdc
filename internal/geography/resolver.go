// Package geography resolves region and state labels for census rows from
// whichever identifying columns a file carries.
//
// The rule is chosen once per batch from the header (see NewPlan) and then
// applied to every row, so rows of the same file never disagree about where
// their region came from.
package geography

import (
	"math"
	"strconv"
	"strings"

	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Rule identifies which column family a plan resolves from
type Rule int

const (
	RuleNone Rule = iota
	RuleRegionColumn
	RuleStateAbbreviation
	RuleStateCode
	RuleMunicipalityCode
)

func (r Rule) String() string {
	switch r {
	case RuleRegionColumn:
		return "region_column"
	case RuleStateAbbreviation:
		return "state_abbreviation"
	case RuleStateCode:
		return "state_code"
	case RuleMunicipalityCode:
		return "municipality_code"
	default:
		return "none"
	}
}

// MarshalText renders the rule name in JSON provenance reports
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Columns lists the accepted header names per geographic concept, in probe order
type Columns struct {
	Region           []string
	State            []string
	StateCode        []string
	MunicipalityCode []string
}

// CourseColumns are the names used by course-level extracts
var CourseColumns = Columns{
	Region:           []string{"NO_REGIAO"},
	State:            []string{"SG_UF"},
	StateCode:        []string{"CO_UF"},
	MunicipalityCode: []string{"CO_MUNICIPIO"},
}

// InstitutionColumns are the names used by institution metadata files
var InstitutionColumns = Columns{
	Region:           []string{"NO_REGIAO_IES", "NO_REGIAO"},
	State:            []string{"SG_UF_IES", "SG_UF"},
	StateCode:        []string{"CO_UF_IES", "CO_UF"},
	MunicipalityCode: []string{"CO_MUNICIPIO_IES", "CO_MUNICIPIO"},
}

// Plan is the per-batch resolution decision. It doubles as the provenance
// record of which rule and column produced a batch's regions.
type Plan struct {
	Rule Rule `json:"rule"`
	// Column is the header the rule reads from
	Column string `json:"column,omitempty"`
	// StateColumn is the state abbreviation header, when the batch has one
	StateColumn string `json:"state_column,omitempty"`
}

// Resolution is the outcome for a single row
type Resolution struct {
	Region domain.Region
	State  string
}

// NewPlan decides the resolution rule from the batch header
func NewPlan(header []string, cols Columns) Plan {
	state := Lookup(header, cols.State...)
	if c := Lookup(header, cols.Region...); c != "" {
		return Plan{Rule: RuleRegionColumn, Column: c, StateColumn: state}
	}
	if state != "" {
		return Plan{Rule: RuleStateAbbreviation, Column: state, StateColumn: state}
	}
	if c := Lookup(header, cols.StateCode...); c != "" {
		return Plan{Rule: RuleStateCode, Column: c}
	}
	if c := Lookup(header, cols.MunicipalityCode...); c != "" {
		return Plan{Rule: RuleMunicipalityCode, Column: c}
	}
	return Plan{Rule: RuleNone}
}

// Resolve applies the plan to one row. get returns the raw cell for a header.
// With RuleNone the zero Resolution is returned and callers must treat
// geography as absent.
func (p Plan) Resolve(get func(col string) string) Resolution {
	switch p.Rule {
	case RuleRegionColumn:
		res := Resolution{Region: domain.Region(strings.TrimSpace(get(p.Column)))}
		if res.Region == "" {
			res.Region = domain.RegionUnknown
		}
		if p.StateColumn != "" {
			res.State = strings.TrimSpace(get(p.StateColumn))
		}
		return res
	case RuleStateAbbreviation:
		st := strings.TrimSpace(get(p.Column))
		return Resolution{Region: RegionForState(st), State: st}
	case RuleStateCode:
		st, region := FromStateCode(get(p.Column))
		return Resolution{Region: region, State: st}
	case RuleMunicipalityCode:
		st, region := FromMunicipalityCode(get(p.Column))
		return Resolution{Region: region, State: st}
	default:
		return Resolution{}
	}
}

// RegionForState maps a state abbreviation to its region
func RegionForState(state string) domain.Region {
	if r, ok := RegionByState[state]; ok {
		return r
	}
	return domain.RegionUnknown
}

// FromStateCode maps a numeric state code to its abbreviation and region.
// Unknown or malformed codes give an empty state and RegionUnknown.
func FromStateCode(raw string) (string, domain.Region) {
	code, ok := parseCode(raw)
	if !ok {
		return "", domain.RegionUnknown
	}
	return stateAndRegion(code)
}

// FromMunicipalityCode derives the state from the leading two digits of a
// seven-digit IBGE municipality code, e.g. 3550308 -> 35 -> SP, Sudeste.
func FromMunicipalityCode(raw string) (string, domain.Region) {
	code, ok := parseCode(raw)
	if !ok || code < 10 {
		return "", domain.RegionUnknown
	}
	digits := strconv.FormatInt(code, 10)
	uf, err := strconv.ParseInt(digits[:2], 10, 64)
	if err != nil {
		return "", domain.RegionUnknown
	}
	return stateAndRegion(uf)
}

func stateAndRegion(code int64) (string, domain.Region) {
	region, ok := RegionByCode[int(code)]
	if !ok {
		return "", domain.RegionUnknown
	}
	return StateByCode[int(code)], region
}

// parseCode accepts integer cells and integral float renderings ("35.0")
func parseCode(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, v >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// Lookup returns the first header matching one of names, compared
// case-insensitively, or "" when none is present.
func Lookup(header []string, names ...string) string {
	for _, name := range names {
		for _, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return h
			}
		}
	}
	return ""
}
