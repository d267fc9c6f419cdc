package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Francelinojr/teste-gener/internal/geography"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

func TestMapModern(t *testing.T) {
	fr := NewFrame(
		[]string{"NO_REGIAO", "SG_UF", "NO_MUNICIPIO", "CO_MUNICIPIO", "TP_CATEGORIA_ADMINISTRATIVA",
			"NO_CINE_AREA_GERAL", "CO_CINE_AREA_GERAL", "CO_IES", "QT_MAT", "QT_MAT_FEM", "QT_ING", "QT_CONC"},
		[][]string{
			{"Nordeste", "BA", "Salvador", "2927408.0", "1", "Engenharia", "7", "42", "30", "12", "8", "2"},
			{"Sul", "PR", "Curitiba", "4106902", "4", "Direito", "4", "7", "n/a", "", "1.5", "0"},
		},
	)

	recs, prov := MapModern(fr, 2021)
	require.Len(t, recs, 2)
	assert.Empty(t, prov.Missing)
	assert.Equal(t, geography.RuleRegionColumn, prov.Geography.Rule)
	assert.Equal(t, "NO_CINE_AREA_GERAL", prov.Column(ConceptAreaName))

	assert.Equal(t, domain.EnrollmentRecord{
		Year:             2021,
		Region:           domain.RegionNordeste,
		State:            "BA",
		MunicipalityName: "Salvador",
		MunicipalityCode: "2927408",
		AdminCategory:    domain.CountOf(1),
		AreaName:         "Engenharia",
		AreaCode:         "07",
		InstitutionID:    "42",
		Total:            domain.CountOf(30),
		Female:           domain.CountOf(12),
		Entrants:         domain.CountOf(8),
		Graduates:        domain.CountOf(2),
	}, recs[0])
	assert.Equal(t, domain.CountOf(18), recs[0].Male())

	// Unparseable counts are missing, not zero
	assert.Equal(t, domain.Missing, recs[1].Total)
	assert.Equal(t, domain.Missing, recs[1].Female)
	assert.Equal(t, domain.Missing, recs[1].Entrants)
	assert.Equal(t, domain.CountOf(0), recs[1].Graduates)
	assert.Equal(t, domain.Missing, recs[1].Male())
}

func TestMapModern_AreaCodeKeepsTwoDigits(t *testing.T) {
	fr := NewFrame([]string{"CO_CINE_AREA_GERAL", "QT_MAT"}, [][]string{{"06", "1"}, {"5.0", "1"}, {"", "1"}})
	recs, _ := MapModern(fr, 2021)
	require.Len(t, recs, 3)
	assert.Equal(t, "06", recs[0].AreaCode)
	assert.Equal(t, "05", recs[1].AreaCode)
	assert.Empty(t, recs[2].AreaCode)
}

func TestMapModern_AreaNameFallbacks(t *testing.T) {
	older := NewFrame([]string{"NO_OCDE_AREA_GERAL", "QT_MAT"}, [][]string{{"Ciências", "1"}})
	recs, prov := MapModern(older, 2010)
	assert.Equal(t, "Ciências", recs[0].AreaName)
	assert.Equal(t, "NO_OCDE_AREA_GERAL", prov.Column(ConceptAreaName))

	none := NewFrame([]string{"QT_MAT"}, [][]string{{"1"}})
	recs, prov = MapModern(none, 2010)
	assert.Equal(t, "", recs[0].AreaName)
	assert.Contains(t, prov.Missing, ConceptAreaName)
	assert.Equal(t, domain.RegionUnknown, recs[0].Region)
	assert.Equal(t, domain.Missing, recs[0].AdminCategory)
}

func TestMapModern_MunicipalityCodeOnly(t *testing.T) {
	fr := NewFrame([]string{"CO_MUNICIPIO", "QT_MAT"}, [][]string{{"3550308", "5"}})

	recs, prov := MapModern(fr, 2022)
	require.Len(t, recs, 1)
	assert.Equal(t, geography.RuleMunicipalityCode, prov.Geography.Rule)
	assert.Equal(t, "SP", recs[0].State)
	assert.Equal(t, domain.RegionSudeste, recs[0].Region)
}

func TestMapLegacy_ShiftSums(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		row        []string
		wantFemale domain.Count
		wantTotal  domain.Count
	}{
		{
			name:       "all shifts",
			header:     []string{"QT_MAT_ATU_DIU_FEMI", "QT_MAT_ATU_NOT_FEMI", "QT_MAT_ATU_DIU_MASC", "QT_MAT_ATU_NOT_MASC"},
			row:        []string{"5", "7", "10", "8"},
			wantFemale: domain.CountOf(12),
			wantTotal:  domain.CountOf(30),
		},
		{
			name:       "night shift columns absent",
			header:     []string{"QT_MAT_ATU_DIURNO_FEMI", "QT_MAT_ATU_DIURNO_MASC"},
			row:        []string{"4", "6"},
			wantFemale: domain.CountOf(4),
			wantTotal:  domain.CountOf(10),
		},
		{
			name:       "blank cell contributes nothing",
			header:     []string{"QT_MAT_ATU_DIU_FEMI", "QT_MAT_ATU_NOT_FEMI", "QT_MAT_ATU_DIU_MASC"},
			row:        []string{"", "3", "2"},
			wantFemale: domain.CountOf(3),
			wantTotal:  domain.CountOf(5),
		},
		{
			name:       "male concept absent",
			header:     []string{"QT_MAT_ATU_DIU_FEMI", "QT_MAT_ATU_NOT_FEMI"},
			row:        []string{"1", "2"},
			wantFemale: domain.CountOf(3),
			wantTotal:  domain.Missing,
		},
		{
			name:       "no gender columns",
			header:     []string{"CO_IES"},
			row:        []string{"1"},
			wantFemale: domain.Missing,
			wantTotal:  domain.Missing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, _ := MapLegacy(NewFrame(tt.header, [][]string{tt.row}), 2005)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.wantFemale, recs[0].Female)
			assert.Equal(t, tt.wantTotal, recs[0].Total)
			assert.Equal(t, domain.Missing, recs[0].AdminCategory)
		})
	}
}

func TestMapLegacy_AliasesAndGeography(t *testing.T) {
	fr := NewFrame(
		[]string{"codigo_ies", "SG_UF_CURSO", "CODMUNIC", "AREACURSO", "QT_MAT_ATU_DIU_FEMI", "QT_MAT_ATU_DIU_MASC"},
		[][]string{{"0042", "MG", "3106200", "Saúde", "1", "1"}},
	)

	recs, prov := MapLegacy(fr, 2003)
	require.Len(t, recs, 1)
	assert.Equal(t, "codigo_ies", prov.Column(ConceptInstitution))
	assert.Equal(t, geography.RuleStateAbbreviation, prov.Geography.Rule)

	r := recs[0]
	assert.Equal(t, "42", r.InstitutionID)
	assert.Equal(t, "MG", r.State)
	assert.Equal(t, domain.RegionSudeste, r.Region)
	assert.Equal(t, "3106200", r.MunicipalityCode)
	assert.Equal(t, "Saúde", r.AreaName)
}

func TestMappedRecordsKeepDerivationInvariant(t *testing.T) {
	fr := NewFrame(
		[]string{"QT_MAT", "QT_MAT_FEM"},
		[][]string{{"10", "4"}, {"0", "0"}, {"7", ""}, {"", "3"}},
	)
	recs, _ := MapModern(fr, 2020)
	for _, r := range recs {
		male := r.Male()
		if r.Total.Valid && r.Female.Valid {
			require.True(t, male.Valid)
			assert.Equal(t, r.Total.Value, r.Female.Value+male.Value)
		} else {
			assert.False(t, male.Valid)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"3550308.0": "3550308",
		"0042":      "42",
		" 7 ":       "7",
		"":          "",
		"ABC":       "ABC",
		"1.5":       "1.5",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCode(in), in)
	}
}

func TestCollapse(t *testing.T) {
	a := domain.EnrollmentRecord{Year: 2020, Region: domain.RegionSul, InstitutionID: "1",
		Total: domain.CountOf(10), Female: domain.CountOf(4)}
	b := domain.EnrollmentRecord{Year: 2020, Region: domain.RegionNorte, InstitutionID: "2",
		Total: domain.CountOf(3), Female: domain.Missing}
	c := a
	c.Total, c.Female = domain.CountOf(5), domain.CountOf(1)
	d := b
	d.Female = domain.CountOf(2)

	out := Collapse([]domain.EnrollmentRecord{a, b, c, d})
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].InstitutionID)
	assert.Equal(t, domain.CountOf(15), out[0].Total)
	assert.Equal(t, domain.CountOf(5), out[0].Female)
	assert.Equal(t, domain.CountOf(6), out[1].Total)
	assert.Equal(t, domain.CountOf(2), out[1].Female)
}
