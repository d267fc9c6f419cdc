// Package classify labels canonical enrollment records as in or out of the
// target subject-area group.
//
// An authoritative area code, when a record has one, decides on its own. Only
// records without a code fall back to the keyword heuristic over the area
// name. Each keyword belongs to one group so keyword matches also carry a
// group code, which is what narrowing filters on.
package classify

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Target group codes of the standardized area taxonomy
const (
	GroupSciences    = "05"
	GroupICT         = "06"
	GroupEngineering = "07"
)

// DefaultTargetCodes is the target group used when none is configured
var DefaultTargetCodes = []string{GroupSciences, GroupICT, GroupEngineering}

// GroupNames are the display names of the target groups
var GroupNames = map[string]string{
	GroupSciences:    "Ciências Naturais, Matemática e Estatística",
	GroupICT:         "Tecnologias da Informação e Comunicação (TIC)",
	GroupEngineering: "Engenharia, Produção e Construção",
}

type keyword struct {
	text  string
	group string
}

// keywords are probed in order against the uppercased name and match when
// contained anywhere in it; the first match decides the group. Source text
// is inconsistently encoded so both spellings are listed.
var keywords = []keyword{
	{text: "CIÊNCIAS NATURAIS", group: GroupSciences},
	{text: "CIENCIAS NATURAIS", group: GroupSciences},
	{text: "CIÊNCIAS EXATAS", group: GroupSciences},
	{text: "CIENCIAS EXATAS", group: GroupSciences},
	{text: "MATEMÁTICA", group: GroupSciences},
	{text: "MATEMATICA", group: GroupSciences},
	{text: "ESTATÍSTICA", group: GroupSciences},
	{text: "ESTATISTICA", group: GroupSciences},
	{text: "COMPUTAÇÃO", group: GroupICT},
	{text: "COMPUTACAO", group: GroupICT},
	{text: "TIC", group: GroupICT},
	{text: "TECNOLOGIA", group: GroupICT},
	{text: "ENGENHARIA", group: GroupEngineering},
	{text: "PRODUÇÃO", group: GroupEngineering},
	{text: "PRODUCAO", group: GroupEngineering},
	{text: "CONSTRUÇÃO", group: GroupEngineering},
	{text: "CONSTRUCAO", group: GroupEngineering},
}

// Result is the outcome for one record
type Result struct {
	InTarget bool
	// Group is the target group code the record falls in, "" when out of target
	Group string
	// ByCode reports that the authoritative code decided
	ByCode bool
}

// Stats summarises a labelling pass
type Stats struct {
	Records   int `json:"records"`
	ByCode    int `json:"by_code"`
	ByKeyword int `json:"by_keyword"`
	InTarget  int `json:"in_target"`
	Conflicts int `json:"conflicts"`
}

// Classifier labels records against a set of target codes
type Classifier struct {
	targets map[string]bool
	logger  *slog.Logger
}

// New creates a classifier for targets. An empty list uses DefaultTargetCodes.
func New(targets []string, logger *slog.Logger) *Classifier {
	if len(targets) == 0 {
		targets = DefaultTargetCodes
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{
		targets: make(map[string]bool, len(targets)),
		logger:  logger.With(slog.String("component", "classifier")),
	}
	for _, t := range targets {
		if code := PadCode(t); code != "" {
			c.targets[code] = true
		}
	}
	return c
}

// Classify decides one record from its area code and name
func (c *Classifier) Classify(areaCode, areaName string) Result {
	if code := PadCode(areaCode); code != "" {
		if c.targets[code] {
			return Result{InTarget: true, Group: code, ByCode: true}
		}
		return Result{ByCode: true}
	}
	if group, ok := MatchKeyword(areaName); ok {
		return Result{InTarget: true, Group: group}
	}
	return Result{}
}

// Label sets InTarget and TargetGroup on every record in place. When a
// code and a keyword-matchable name disagree the code wins and the
// disagreement is only logged.
func (c *Classifier) Label(ctx context.Context, recs []domain.EnrollmentRecord) Stats {
	st := Stats{Records: len(recs)}
	for i := range recs {
		r := &recs[i]
		res := c.Classify(r.AreaCode, r.AreaName)
		r.InTarget, r.TargetGroup = res.InTarget, res.Group

		if res.ByCode {
			st.ByCode++
			if group, ok := MatchKeyword(r.AreaName); ok && group != res.Group {
				st.Conflicts++
				c.logger.DebugContext(ctx, "area code and name disagree",
					slog.String("area_code", r.AreaCode),
					slog.String("area_name", r.AreaName),
					slog.String("keyword_group", group),
					slog.Bool("in_target", res.InTarget))
			}
		} else if res.InTarget {
			st.ByKeyword++
		}
		if res.InTarget {
			st.InTarget++
		}
	}
	if st.Conflicts > 0 {
		c.logger.InfoContext(ctx, "area code overrode keyword classification",
			slog.Int("conflicts", st.Conflicts))
	}
	return st
}

// MatchKeyword runs the keyword heuristic over an area name
func MatchKeyword(areaName string) (string, bool) {
	text := strings.ToUpper(strings.TrimSpace(areaName))
	if text == "" {
		return "", false
	}
	for _, k := range keywords {
		if strings.Contains(text, k.text) {
			return k.group, true
		}
	}
	return "", false
}

// PadCode zero-pads an area code to two digits. Numeric cells written as
// floats ("6.0") are accepted when integral; blank cells give "".
func PadCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == math.Trunc(f) && f < 100 {
		s = strconv.Itoa(int(f))
	}
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// InTarget returns the labelled records that are in target
func InTarget(recs []domain.EnrollmentRecord) []domain.EnrollmentRecord {
	out := make([]domain.EnrollmentRecord, 0, len(recs))
	for _, r := range recs {
		if r.InTarget {
			out = append(out, r)
		}
	}
	return out
}

// Narrow keeps the records whose target group is in codes. An empty codes
// list keeps everything.
func Narrow(recs []domain.EnrollmentRecord, codes []string) []domain.EnrollmentRecord {
	if len(codes) == 0 {
		return recs
	}
	keep := make(map[string]bool, len(codes))
	for _, c := range codes {
		keep[PadCode(c)] = true
	}
	out := make([]domain.EnrollmentRecord, 0, len(recs))
	for _, r := range recs {
		if keep[r.TargetGroup] {
			out = append(out, r)
		}
	}
	return out
}
