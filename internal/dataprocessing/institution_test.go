package dataprocessing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

func TestInstitutionIndex_FirstParseableCandidateWins(t *testing.T) {
	dir := t.TempDir()
	noID := writeLatin1(t, dir, "a/MICRODADOS_ED_SUP_IES_2019.CSV", "NO_MUNICIPIO_IES;SG_UF_IES", "Recife;PE")
	good := writeLatin1(t, dir, "b/MICRODADOS_ED_SUP_IES_2019.CSV",
		"CO_IES;NO_MUNICIPIO_IES;CO_MUNICIPIO_IES;SG_UF_IES;NO_REGIAO_IES",
		"1;Recife;2611606;PE;Nordeste",
		"2;Niterói;3303302.0;RJ;Sudeste",
		"1;Olinda;2609600;PE;Nordeste",
	)
	later := writeLatin1(t, dir, "c/MICRODADOS_ED_SUP_IES_2019.CSV", "CO_IES;SG_UF_IES", "9;AM")

	src := fakeSources{institutions: map[int][]string{
		2019: {filepath.Join(dir, "missing.CSV"), noID, good, later},
	}}
	idx := NewInstitutionIndex(src, nil).Load(context.Background(), 2019)

	require.Len(t, idx, 2)
	assert.Equal(t, domain.InstitutionGeo{
		InstitutionID:    "1",
		MunicipalityName: "Recife",
		MunicipalityCode: "2611606",
		State:            "PE",
		Region:           domain.RegionNordeste,
	}, idx["1"])
	assert.Equal(t, "3303302", idx["2"].MunicipalityCode)
	assert.Equal(t, "Niterói", idx["2"].MunicipalityName)
}

func TestInstitutionIndex_NoCandidates(t *testing.T) {
	idx := NewInstitutionIndex(fakeSources{}, nil).Load(context.Background(), 2000)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)
}

func TestBackfill(t *testing.T) {
	idx := map[string]domain.InstitutionGeo{
		"1": {InstitutionID: "1", MunicipalityName: "Recife", MunicipalityCode: "2611606", State: "PE", Region: domain.RegionNordeste},
	}

	rec := domain.EnrollmentRecord{InstitutionID: "1", Region: domain.RegionUnknown}
	Backfill(&rec, idx)
	assert.Equal(t, "Recife", rec.MunicipalityName)
	assert.Equal(t, "2611606", rec.MunicipalityCode)
	assert.Equal(t, "PE", rec.State)
	assert.Equal(t, domain.RegionNordeste, rec.Region)

	own := domain.EnrollmentRecord{InstitutionID: "1", MunicipalityName: "Olinda", State: "PE", Region: domain.RegionNordeste}
	Backfill(&own, idx)
	assert.Equal(t, "Olinda", own.MunicipalityName)

	unknown := domain.EnrollmentRecord{InstitutionID: "99", Region: domain.RegionUnknown}
	Backfill(&unknown, idx)
	assert.Equal(t, domain.RegionUnknown, unknown.Region)
}

func TestCompleteGeography(t *testing.T) {
	fromState := domain.EnrollmentRecord{State: "GO", Region: domain.RegionUnknown}
	completeGeography(&fromState)
	assert.Equal(t, domain.RegionCentroOeste, fromState.Region)

	fromCode := domain.EnrollmentRecord{MunicipalityCode: "3550308", Region: domain.RegionUnknown}
	completeGeography(&fromCode)
	assert.Equal(t, domain.RegionSudeste, fromCode.Region)
	assert.Equal(t, "SP", fromCode.State)

	nothing := domain.EnrollmentRecord{}
	completeGeography(&nothing)
	assert.Equal(t, domain.RegionUnknown, nothing.Region)
}

func TestLegacyInstitutions(t *testing.T) {
	dir := t.TempDir()
	withID := writeLatin1(t, dir, "INSTITUICAO.CSV",
		"CO_IES|IN_DEP_ADM|SG_UF|CODMUNIC|NO_MUNICIPIO",
		"10|1|BA|2927408|Salvador",
		"11|4|BA|2927408|Salvador",
		"12|2|PE|2611606|Recife",
	)

	inst, err := LoadLegacyInstitutions(context.Background(), withID)
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Len())
	assert.Equal(t, 1, inst.Collisions)

	byID := domain.EnrollmentRecord{InstitutionID: "11", State: "BA", MunicipalityCode: "2927408"}
	require.True(t, inst.Apply(&byID))
	assert.Equal(t, domain.CountOf(4), byID.AdminCategory)
	assert.Equal(t, "Salvador", byID.MunicipalityName)

	// Without an id the place key is used and the first entry wins
	byPlace := domain.EnrollmentRecord{State: "BA", MunicipalityCode: "2927408"}
	require.True(t, inst.Apply(&byPlace))
	assert.Equal(t, domain.CountOf(1), byPlace.AdminCategory)

	miss := domain.EnrollmentRecord{InstitutionID: "99"}
	assert.False(t, inst.Apply(&miss))
	assert.Equal(t, domain.Missing, miss.AdminCategory)
}

func TestLegacyInstitutions_SemicolonAndNoID(t *testing.T) {
	path := writeLatin1(t, t.TempDir(), "INSTITUICAO.CSV",
		"TP_CATEGORIA_ADMINISTRATIVA;SG_UF;CO_MUNICIPIO",
		"3;SP;3550308",
	)

	inst, err := LoadLegacyInstitutions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, inst.Len())

	rec := domain.EnrollmentRecord{InstitutionID: "5", State: "SP", MunicipalityCode: "3550308"}
	require.True(t, inst.Apply(&rec))
	assert.Equal(t, domain.CountOf(3), rec.AdminCategory)
}

func TestLegacyInstitutions_RequiresCategory(t *testing.T) {
	path := writeLatin1(t, t.TempDir(), "INSTITUICAO.CSV", "CO_IES|SG_UF", "1|SP")

	_, err := LoadLegacyInstitutions(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeSchemaMismatch, apperrors.TypeOf(err))
}
