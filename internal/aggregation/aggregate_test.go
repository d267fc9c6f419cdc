package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

func rec(year int, region domain.Region, total, female int64) domain.EnrollmentRecord {
	return domain.EnrollmentRecord{
		Year:   year,
		Region: region,
		Total:  domain.CountOf(total),
		Female: domain.CountOf(female),
	}
}

func TestAggregate_YearRegionScenario(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2020, "A", 100, 40),
		rec(2020, "A", 50, 10),
	}

	buckets := Aggregate(records, ByYearRegion...)
	require.Len(t, buckets, 1)
	b := buckets[0]
	assert.Equal(t, Group{Year: 2020, Region: "A"}, b.Group)
	assert.Equal(t, domain.CountOf(150), b.Total)
	assert.Equal(t, domain.CountOf(50), b.Female)
	assert.Equal(t, domain.CountOf(100), b.Male)
	require.NotNil(t, b.PercentFemale)
	assert.InDelta(t, 33.33, *b.PercentFemale, 0.005)
	require.NotNil(t, b.ParityIndex)
	assert.Equal(t, 0.5, *b.ParityIndex)
	assert.Equal(t, 2, b.Records)
}

func TestAggregate_UndefinedMetrics(t *testing.T) {
	tests := []struct {
		name        string
		records     []domain.EnrollmentRecord
		wantPercent bool
		wantParity  bool
	}{
		{"no male enrollment", []domain.EnrollmentRecord{rec(2020, "A", 10, 10)}, true, false},
		{"zero total", []domain.EnrollmentRecord{rec(2020, "A", 0, 0)}, false, false},
		{"missing female", []domain.EnrollmentRecord{{Year: 2020, Region: "A", Total: domain.CountOf(5)}}, false, false},
		{"missing total", []domain.EnrollmentRecord{{Year: 2020, Region: "A", Female: domain.CountOf(5)}}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Aggregate(tt.records, ByYearRegion...)[0]
			assert.Equal(t, tt.wantPercent, b.PercentFemale != nil)
			assert.Equal(t, tt.wantParity, b.ParityIndex != nil)
		})
	}
}

func TestAggregate_MissingAwareSums(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2020, "A", 10, 4),
		{Year: 2020, Region: "A", Total: domain.Missing, Female: domain.Missing},
	}
	b := Aggregate(records, ByYearRegion...)[0]
	assert.Equal(t, domain.CountOf(10), b.Total)
	assert.Equal(t, domain.CountOf(4), b.Female)

	onlyMissing := Aggregate([]domain.EnrollmentRecord{{Year: 2020, Region: "A"}}, ByYearRegion...)[0]
	assert.Equal(t, domain.Missing, onlyMissing.Total)
	assert.Equal(t, domain.Missing, onlyMissing.Male)
}

func TestAggregate_PropertiesHold(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2019, domain.RegionNordeste, 30, 12),
		rec(2019, domain.RegionSudeste, 7, 7),
		rec(2020, domain.RegionNordeste, 0, 0),
		rec(2020, domain.RegionSudeste, 90, 15),
		rec(2020, domain.RegionSudeste, 11, 2),
		{Year: 2020, Region: domain.RegionNordeste, Total: domain.CountOf(4)},
	}

	for _, keys := range [][]Key{ByYearRegion, {KeyRegion}, {KeyYear}} {
		buckets := Aggregate(records, keys...)
		for _, b := range buckets {
			if b.Total.Valid && b.Female.Valid {
				assert.Equal(t, b.Total.Value, b.Female.Value+b.Male.Value)
			}
			if b.PercentFemale != nil {
				assert.GreaterOrEqual(t, *b.PercentFemale, 0.0)
				assert.LessOrEqual(t, *b.PercentFemale, 100.0)
			}
			if b.Male.Valid && b.Male.Value > 0 {
				require.NotNil(t, b.ParityIndex)
				assert.Equal(t, float64(b.Female.Value)/float64(b.Male.Value), *b.ParityIndex)
			} else {
				assert.Nil(t, b.ParityIndex)
			}
		}
		assert.Equal(t, buckets, Reaggregate(buckets, keys...))
	}
}

func TestReaggregate_Coarser(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2019, domain.RegionSul, 10, 5),
		rec(2020, domain.RegionSul, 20, 5),
		rec(2020, domain.RegionNorte, 4, 1),
	}
	direct := Aggregate(records, KeyRegion)
	folded := Reaggregate(Aggregate(records, ByYearRegion...), KeyRegion)
	assert.Equal(t, direct, folded)
	require.Len(t, folded, 2)
	assert.Equal(t, domain.RegionNorte, folded[0].Region)
	assert.Equal(t, domain.CountOf(30), folded[1].Total)
}

func TestLabelInstitutionTypes(t *testing.T) {
	records := []domain.EnrollmentRecord{
		{AdminCategory: domain.CountOf(1)},
		{AdminCategory: domain.CountOf(3)},
		{AdminCategory: domain.CountOf(4)},
		{AdminCategory: domain.CountOf(9)},
		{AdminCategory: domain.Missing},
	}
	LabelInstitutionTypes(records)

	want := []domain.InstitutionType{
		domain.InstitutionPublic, domain.InstitutionPublic,
		domain.InstitutionPrivate, domain.InstitutionPrivate, domain.InstitutionPrivate,
	}
	for i, w := range want {
		assert.Equal(t, w, records[i].InstitutionType, "record %d", i)
	}
}

func TestAggregate_StandardKeySets(t *testing.T) {
	records := []domain.EnrollmentRecord{
		{Year: 2020, Region: domain.RegionNordeste, MunicipalityName: "Recife", InstitutionType: domain.InstitutionPublic,
			TargetGroup: "07", AreaName: "Engenharia civil", Total: domain.CountOf(10), Female: domain.CountOf(3)},
		{Year: 2020, Region: domain.RegionNordeste, MunicipalityCode: "2611606", InstitutionType: domain.InstitutionPrivate,
			AreaName: "Outra", Total: domain.CountOf(5), Female: domain.CountOf(5)},
	}

	byType := Aggregate(records, ByYearRegionInstType...)
	require.Len(t, byType, 2)
	assert.Equal(t, domain.InstitutionPrivate, byType[0].InstitutionType)

	byArea := Aggregate(records, ByRegionArea...)
	require.Len(t, byArea, 2)
	assert.Equal(t, "Engenharia, Produção e Construção", byArea[0].Area)
	assert.Equal(t, "Outra", byArea[1].Area)

	byMunicipality := Aggregate(records, ByMunicipalityRegion...)
	require.Len(t, byMunicipality, 2)
	assert.Equal(t, "2611606", byMunicipality[0].Municipality)
	assert.Equal(t, "Recife", byMunicipality[1].Municipality)
}
