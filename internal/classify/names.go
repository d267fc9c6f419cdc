package classify

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameCodes maps folded group names to their codes
var nameCodes = map[string]string{
	"CIENCIAS NATURAIS":                       GroupSciences,
	"MATEMATICA":                              GroupSciences,
	"ESTATISTICA":                             GroupSciences,
	"EXATAS":                                  GroupSciences,
	"TIC":                                     GroupICT,
	"TI":                                      GroupICT,
	"TECNOLOGIAS DA INFORMACAO E COMUNICACAO": GroupICT,
	"ENGENHARIA":                              GroupEngineering,
	"ENGENHARIA PRODUCAO CONSTRUCAO":          GroupEngineering,
	"ENGENHARIA PRODUCAO E CONSTRUCAO":        GroupEngineering,
	"ENG":                                     GroupEngineering,
}

// FoldName uppercases s, strips diacritics and keeps only letters and
// single spaces: "Tecnologias da Informação" -> "TECNOLOGIAS DA INFORMACAO"
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return unicode.ToUpper(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}

// CodeForName resolves a target-group name to its code. Exact folded names
// are tried first, then fragments: EXATAS, MAT or ESTAT for sciences, TI or
// TIC for ICT, ENG for engineering.
func CodeForName(name string) (string, bool) {
	k := FoldName(name)
	if k == "" {
		return "", false
	}
	if code, ok := nameCodes[k]; ok {
		return code, true
	}
	switch {
	case strings.Contains(k, "EXATAS"), strings.Contains(k, "MAT"), strings.Contains(k, "ESTAT"):
		return GroupSciences, true
	case k == "TI", strings.Contains(k, "TIC"):
		return GroupICT, true
	case strings.Contains(k, "ENG"):
		return GroupEngineering, true
	}
	return "", false
}

// Selection merges explicit codes and group names into one sorted, deduplicated
// code list. Names that resolve to nothing are returned separately.
func Selection(codes, names []string) (selected []string, unresolved []string) {
	set := make(map[string]bool)
	for _, c := range codes {
		if p := PadCode(c); p != "" {
			set[p] = true
		}
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		code, ok := CodeForName(n)
		if !ok {
			unresolved = append(unresolved, n)
			continue
		}
		set[code] = true
	}
	for c := range set {
		selected = append(selected, c)
	}
	sort.Strings(selected)
	return selected, unresolved
}
