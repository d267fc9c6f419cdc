package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count is a missing-aware enrollment count. The zero value is missing,
// which is distinct from a known zero.
type Count struct {
	Value int64
	Valid bool
}

// Missing is the explicit absent count
var Missing = Count{}

// CountOf returns a known count
func CountOf(v int64) Count {
	return Count{Value: v, Valid: true}
}

// ParseCount coerces a raw cell into a Count. Blank, non-numeric and
// non-integral cells become Missing rather than zero.
func ParseCount(raw string) Count {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return CountOf(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Missing
	}
	return CountOf(int64(f))
}

// Add sums two counts skipping missing operands. Missing + Missing stays missing.
func (c Count) Add(o Count) Count {
	switch {
	case !c.Valid:
		return o
	case !o.Valid:
		return c
	default:
		return CountOf(c.Value + o.Value)
	}
}

// Sub subtracts o from c; the result is missing unless both are known.
func (c Count) Sub(o Count) Count {
	if !c.Valid || !o.Valid {
		return Missing
	}
	return CountOf(c.Value - o.Value)
}

// Float returns the count as float64 and whether it is known
func (c Count) Float() (float64, bool) {
	return float64(c.Value), c.Valid
}

// String renders the count, or an empty string when missing
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatInt(c.Value, 10)
}

// MarshalJSON encodes missing counts as null
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(c.Value, 10)), nil
}

// UnmarshalJSON accepts a number or null
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Missing
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = CountOf(v)
	return nil
}
