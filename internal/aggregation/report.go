package aggregation

import (
	"sort"
	"strconv"

	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// ConsistencyRow counts metric anomalies for one (year, region)
type ConsistencyRow struct {
	Year               int           `json:"year"`
	Region             domain.Region `json:"region"`
	Buckets            int           `json:"buckets"`
	NegativeParity     int           `json:"negative_parity"`
	PercentOutOfBounds int           `json:"percent_out_of_bounds"`
}

// Consistency checks the buckets' metrics: a negative parity index or a
// percentage outside [0, 100] means an upstream sign or double-count bug
func Consistency(buckets []Bucket) []ConsistencyRow {
	type key struct {
		year   int
		region domain.Region
	}
	index := make(map[key]int)
	var out []ConsistencyRow
	for _, b := range buckets {
		k := key{b.Year, b.Region}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, ConsistencyRow{Year: b.Year, Region: b.Region})
		}
		row := &out[i]
		row.Buckets++
		if b.ParityIndex != nil && *b.ParityIndex < 0 {
			row.NegativeParity++
		}
		if b.PercentFemale != nil && (*b.PercentFemale < 0 || *b.PercentFemale > 100) {
			row.PercentOutOfBounds++
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// Metric selects the value TopBy ranks on
type Metric string

const (
	MetricParity        Metric = "gender_parity_index"
	MetricPercentFemale Metric = "percent_female"
)

func (m Metric) of(b Bucket) *float64 {
	if m == MetricPercentFemale {
		return b.PercentFemale
	}
	return b.ParityIndex
}

// TopBy returns the n buckets with the highest metric, skipping buckets
// where it is undefined. Ties keep the buckets' key order.
func TopBy(buckets []Bucket, metric Metric, n int) []Bucket {
	ranked := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if metric.of(b) != nil && b.Total.Valid {
			ranked = append(ranked, b)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *metric.of(ranked[i]) > *metric.of(ranked[j])
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Table is a flat named-column rendering ready for serialization
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// BucketTable renders buckets with the key columns first
func BucketTable(name string, keys []Key, buckets []Bucket) Table {
	t := Table{Name: name, Rows: make([][]string, 0, len(buckets))}
	for _, k := range keys {
		t.Columns = append(t.Columns, string(k))
	}
	t.Columns = append(t.Columns, "total_enrolled", "female_enrolled", "male_enrolled", "percent_female", "gender_parity_index")

	for _, b := range buckets {
		row := make([]string, 0, len(t.Columns))
		for _, k := range keys {
			row = append(row, groupValue(b.Group, k))
		}
		row = append(row,
			b.Total.String(),
			b.Female.String(),
			b.Male.String(),
			formatFloat(b.PercentFemale, 2),
			formatFloat(b.ParityIndex, 4),
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ConsistencyTable renders a consistency report
func ConsistencyTable(name string, rows []ConsistencyRow) Table {
	t := Table{
		Name:    name,
		Columns: []string{"year", "region", "buckets", "negative_parity", "percent_out_of_bounds"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.Year),
			string(r.Region),
			strconv.Itoa(r.Buckets),
			strconv.Itoa(r.NegativeParity),
			strconv.Itoa(r.PercentOutOfBounds),
		})
	}
	return t
}

// RecordTable renders canonical records, one row each
func RecordTable(name string, records []domain.EnrollmentRecord) Table {
	t := Table{
		Name: name,
		Columns: []string{
			"year", "region", "state", "municipality_name", "municipality_code",
			"administrative_category_code", "institution_type", "area_name", "area_code",
			"institution_id", "total_enrolled", "female_enrolled", "male_enrolled",
			"entrants", "graduates", "in_target", "target_group",
		},
		Rows: make([][]string, 0, len(records)),
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.Year),
			string(r.Region),
			r.State,
			r.MunicipalityName,
			r.MunicipalityCode,
			r.AdminCategory.String(),
			string(r.InstitutionType),
			r.AreaName,
			r.AreaCode,
			r.InstitutionID,
			r.Total.String(),
			r.Female.String(),
			r.Male().String(),
			r.Entrants.String(),
			r.Graduates.String(),
			strconv.FormatBool(r.InTarget),
			r.TargetGroup,
		})
	}
	return t
}

func groupValue(g Group, k Key) string {
	switch k {
	case KeyYear:
		return strconv.Itoa(g.Year)
	case KeyRegion:
		return string(g.Region)
	case KeyInstitutionType:
		return string(g.InstitutionType)
	case KeyArea:
		return g.Area
	case KeyMunicipality:
		return g.Municipality
	default:
		return ""
	}
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
