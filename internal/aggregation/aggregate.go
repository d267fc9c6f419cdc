// Package aggregation groups classified canonical records into buckets and
// derives the gender metrics reported for each bucket.
//
// Everything here is a pure function of its input. Buckets come back sorted
// by their group key so output never depends on record order.
package aggregation

import (
	"sort"

	"github.com/Francelinojr/teste-gener/internal/classify"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Key is a grouping dimension
type Key string

const (
	KeyYear            Key = "year"
	KeyRegion          Key = "region"
	KeyInstitutionType Key = "institution_type"
	KeyArea            Key = "area"
	KeyMunicipality    Key = "municipality"
)

// Standard key sets of the reported tables
var (
	ByYearRegion         = []Key{KeyYear, KeyRegion}
	ByYearRegionInstType = []Key{KeyYear, KeyRegion, KeyInstitutionType}
	ByRegionArea         = []Key{KeyRegion, KeyArea}
	ByMunicipalityRegion = []Key{KeyMunicipality, KeyRegion}
)

// Group holds a bucket's key values. Dimensions not grouped on stay zero.
type Group struct {
	Year            int                    `json:"year,omitempty"`
	Region          domain.Region          `json:"region,omitempty"`
	InstitutionType domain.InstitutionType `json:"institution_type,omitempty"`
	Area            string                 `json:"area,omitempty"`
	Municipality    string                 `json:"municipality,omitempty"`
}

// Bucket is one aggregated row. Male is always Total - Female, so the
// derivation invariant holds per bucket whenever both sums are known.
type Bucket struct {
	Group
	Total  domain.Count `json:"total_enrolled"`
	Female domain.Count `json:"female_enrolled"`
	Male   domain.Count `json:"male_enrolled"`
	// PercentFemale is nil when the total is zero or missing
	PercentFemale *float64 `json:"percent_female"`
	// ParityIndex is female/male, nil unless male > 0
	ParityIndex *float64 `json:"gender_parity_index"`
	Records     int      `json:"records"`
}

// Aggregate groups records by keys and sums their counts with
// missing-aware addition
func Aggregate(records []domain.EnrollmentRecord, keys ...Key) []Bucket {
	acc := newAccumulator()
	for _, r := range records {
		acc.add(project(groupOf(r), keys), r.Total, r.Female, 1)
	}
	return acc.buckets()
}

// Reaggregate folds buckets again by keys. Reaggregating by the keys a
// bucket set was built with returns the same totals.
func Reaggregate(buckets []Bucket, keys ...Key) []Bucket {
	acc := newAccumulator()
	for _, b := range buckets {
		acc.add(project(b.Group, keys), b.Total, b.Female, b.Records)
	}
	return acc.buckets()
}

// LabelInstitutionTypes sets InstitutionType on every record in place.
// Administrative categories 1 to 3 are public; anything else, missing
// included, is private.
func LabelInstitutionTypes(records []domain.EnrollmentRecord) {
	for i := range records {
		records[i].InstitutionType = InstitutionTypeOf(records[i].AdminCategory)
	}
}

// InstitutionTypeOf maps an administrative category code to its label
func InstitutionTypeOf(category domain.Count) domain.InstitutionType {
	if category.Valid && category.Value >= 1 && category.Value <= 3 {
		return domain.InstitutionPublic
	}
	return domain.InstitutionPrivate
}

// AreaLabel is the area a record is reported under: its target group name
// when it has one, else the raw area name
func AreaLabel(r domain.EnrollmentRecord) string {
	if name, ok := classify.GroupNames[r.TargetGroup]; ok {
		return name
	}
	return r.AreaName
}

func groupOf(r domain.EnrollmentRecord) Group {
	municipality := r.MunicipalityName
	if municipality == "" {
		municipality = r.MunicipalityCode
	}
	return Group{
		Year:            r.Year,
		Region:          r.Region,
		InstitutionType: r.InstitutionType,
		Area:            AreaLabel(r),
		Municipality:    municipality,
	}
}

func project(g Group, keys []Key) Group {
	var out Group
	for _, k := range keys {
		switch k {
		case KeyYear:
			out.Year = g.Year
		case KeyRegion:
			out.Region = g.Region
		case KeyInstitutionType:
			out.InstitutionType = g.InstitutionType
		case KeyArea:
			out.Area = g.Area
		case KeyMunicipality:
			out.Municipality = g.Municipality
		}
	}
	return out
}

type accumulator struct {
	index map[Group]int
	out   []Bucket
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[Group]int)}
}

func (a *accumulator) add(g Group, total, female domain.Count, records int) {
	i, ok := a.index[g]
	if !ok {
		i = len(a.out)
		a.index[g] = i
		a.out = append(a.out, Bucket{Group: g})
	}
	b := &a.out[i]
	b.Total = b.Total.Add(total)
	b.Female = b.Female.Add(female)
	b.Records += records
}

func (a *accumulator) buckets() []Bucket {
	for i := range a.out {
		finish(&a.out[i])
	}
	sort.SliceStable(a.out, func(i, j int) bool { return less(a.out[i].Group, a.out[j].Group) })
	return a.out
}

func finish(b *Bucket) {
	b.Male = b.Total.Sub(b.Female)
	b.PercentFemale, b.ParityIndex = nil, nil
	if b.Total.Valid && b.Total.Value != 0 && b.Female.Valid {
		v := 100 * float64(b.Female.Value) / float64(b.Total.Value)
		b.PercentFemale = &v
	}
	if b.Male.Valid && b.Male.Value > 0 && b.Female.Valid {
		v := float64(b.Female.Value) / float64(b.Male.Value)
		b.ParityIndex = &v
	}
}

func less(a, b Group) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Region != b.Region {
		return a.Region < b.Region
	}
	if a.InstitutionType != b.InstitutionType {
		return a.InstitutionType < b.InstitutionType
	}
	if a.Area != b.Area {
		return a.Area < b.Area
	}
	return a.Municipality < b.Municipality
}
