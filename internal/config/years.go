package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
)

// YearSelection is a parsed pipeline.years value
type YearSelection struct {
	// Explicit reports whether the user chose years; when false every
	// available year is used
	Explicit bool
	Years    []int
}

// ParseYears parses a selection like "2015-2020" or "2010,2012-2014".
// An empty selection returns every year in available. Explicit selections
// are returned as given (deduplicated, ascending) even when a year has no
// data, so the loader can report it as empty.
func ParseYears(selection string, available []int) (YearSelection, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		years := append([]int(nil), available...)
		sort.Ints(years)
		return YearSelection{Years: dedupe(years)}, nil
	}

	var years []int
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err := parseYear(lo)
			if err != nil {
				return YearSelection{}, err
			}
			b, err := parseYear(hi)
			if err != nil {
				return YearSelection{}, err
			}
			if a > b {
				return YearSelection{}, apperrors.NewAppValidationError(fmt.Sprintf("year range %q is reversed", part))
			}
			for y := a; y <= b; y++ {
				years = append(years, y)
			}
			continue
		}
		y, err := parseYear(part)
		if err != nil {
			return YearSelection{}, err
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return YearSelection{}, apperrors.NewAppValidationError(fmt.Sprintf("no years in selection %q", selection))
	}

	sort.Ints(years)
	return YearSelection{Explicit: true, Years: dedupe(years)}, nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1900 || y > 2100 {
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid year %q", s))
	}
	return y, nil
}

func dedupe(sorted []int) []int {
	out := sorted[:0]
	for _, y := range sorted {
		if len(out) == 0 || y != out[len(out)-1] {
			out = append(out, y)
		}
	}
	return out
}
