package pipeline

import (
	"sort"

	"github.com/Francelinojr/teste-gener/internal/aggregation"
	"github.com/Francelinojr/teste-gener/internal/classify"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// Table names
const (
	TableEvolution       = "evolution_by_year_region"
	TableInstitutionType = "disparity_by_institution_type"
	TableArea            = "disparity_by_area"
	TableMunicipality    = "municipality_summary"
	TableTopParity       = "top_municipalities_parity"
	TableTopPercent      = "top_municipalities_percent"
	TableConsistency     = "gender_consistency"
	TableTargetGroups    = "target_groups"
)

// DefaultTopMunicipalities is the ranking length used when none is set
const DefaultTopMunicipalities = 10

// TableOptions controls BuildTables
type TableOptions struct {
	// ReferenceYear restricts the area, institution-type and municipality
	// tables to one year
	ReferenceYear     int
	TopMunicipalities int
	TargetCodes       []string
}

// BuildTables renders the reported tables from the in-target records
func BuildTables(target []domain.EnrollmentRecord, opts TableOptions) []aggregation.Table {
	topN := opts.TopMunicipalities
	if topN <= 0 {
		topN = DefaultTopMunicipalities
	}
	ref := forYear(target, opts.ReferenceYear)

	evolution := aggregation.Aggregate(target, aggregation.ByYearRegion...)

	byType := aggregation.Aggregate(ref, aggregation.ByYearRegionInstType...)
	byArea := aggregation.Aggregate(ref, aggregation.ByRegionArea...)
	sortByParityDesc(byArea)
	byMunicipality := aggregation.Aggregate(ref, aggregation.ByMunicipalityRegion...)

	return []aggregation.Table{
		aggregation.BucketTable(TableEvolution, aggregation.ByYearRegion, evolution),
		aggregation.BucketTable(TableInstitutionType, aggregation.ByYearRegionInstType, byType),
		aggregation.BucketTable(TableArea, aggregation.ByRegionArea, byArea),
		aggregation.BucketTable(TableMunicipality, aggregation.ByMunicipalityRegion, byMunicipality),
		aggregation.BucketTable(TableTopParity, aggregation.ByMunicipalityRegion,
			aggregation.TopBy(byMunicipality, aggregation.MetricParity, topN)),
		aggregation.BucketTable(TableTopPercent, aggregation.ByMunicipalityRegion,
			aggregation.TopBy(byMunicipality, aggregation.MetricPercentFemale, topN)),
		aggregation.ConsistencyTable(TableConsistency, aggregation.Consistency(evolution)),
		targetGroupTable(opts.TargetCodes),
	}
}

func forYear(recs []domain.EnrollmentRecord, year int) []domain.EnrollmentRecord {
	out := make([]domain.EnrollmentRecord, 0, len(recs))
	for _, r := range recs {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// sortByParityDesc orders area buckets by region, then highest parity
// first; undefined parity goes last
func sortByParityDesc(buckets []aggregation.Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		switch {
		case a.ParityIndex == nil:
			return false
		case b.ParityIndex == nil:
			return true
		default:
			return *a.ParityIndex > *b.ParityIndex
		}
	})
}

func targetGroupTable(codes []string) aggregation.Table {
	if len(codes) == 0 {
		codes = classify.DefaultTargetCodes
	}
	t := aggregation.Table{Name: TableTargetGroups, Columns: []string{"code", "name"}}
	for _, c := range codes {
		code := classify.PadCode(c)
		t.Rows = append(t.Rows, []string{code, classify.GroupNames[code]})
	}
	return t
}
