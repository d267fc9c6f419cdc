package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

type sources struct {
	modern map[int]string
	legacy map[int][]string
}

func (s sources) ModernFile(year int) (string, bool) {
	p, ok := s.modern[year]
	return p, ok
}
func (s sources) LegacyFiles(year int) []string                 { return s.legacy[year] }
func (s sources) LegacyInstitutionFile(int) (string, bool)       { return "", false }
func (s sources) InstitutionCandidates(int) []string             { return nil }

func writeLatin1(t *testing.T, path string, lines ...string) string {
	t.Helper()
	content, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixture(t *testing.T) sources {
	dir := t.TempDir()
	return sources{
		modern: map[int]string{2020: writeLatin1(t, filepath.Join(dir, "MICRODADOS_CADASTRO_CURSOS_2020.CSV"),
			"NO_REGIAO;SG_UF;NO_MUNICIPIO;CO_MUNICIPIO;TP_CATEGORIA_ADMINISTRATIVA;NO_CINE_AREA_GERAL;CO_CINE_AREA_GERAL;CO_IES;QT_MAT;QT_MAT_FEM",
			"Nordeste;PE;Recife;2611606;1;Engenharia;07;1;100;40",
			"Nordeste;PE;Recife;2611606;4;Computação;06;2;50;10",
			"Nordeste;PE;Recife;2611606;1;Direito;03;3;80;50",
		)},
		legacy: map[int][]string{2019: {writeLatin1(t, filepath.Join(dir, "2019", "DADOS", "GRADUACAO_PRESENCIAL.CSV"),
			"CO_IES|SG_UF_CURSO|CODMUNIC|NO_AREA_CONHE|QT_MAT_ATU_DIU_FEMI|QT_MAT_ATU_DIU_MASC",
			"1|PE|2611606|Engenharia Civil|5|15",
		)}},
	}
}

func TestRun(t *testing.T) {
	res, err := NewRunner(fixture(t), nil).Run(context.Background(), Options{
		Years:    []int{2020, 2019, 2018},
		Parallel: 3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []int{2018, 2019, 2020}, res.Years)
	assert.Equal(t, []int{2019, 2020}, res.LoadedYears)
	assert.Equal(t, 2020, res.ReferenceYear)
	require.Len(t, res.YearResults, 3)
	assert.Equal(t, domain.SourceNone, res.YearResults[0].Source)
	assert.Equal(t, domain.SourceLegacy, res.YearResults[1].Source)
	assert.Equal(t, domain.SourceModern, res.YearResults[2].Source)

	require.Len(t, res.Records, 4)
	assert.Equal(t, 2019, res.Records[0].Year)
	assert.Equal(t, domain.InstitutionPrivate, res.Records[0].InstitutionType)
	assert.Equal(t, 4, res.Classification.Records)
	assert.Equal(t, 3, res.Classification.ByCode)
	assert.Equal(t, 1, res.Classification.ByKeyword)
	assert.Len(t, res.Target, 3)

	evolution, ok := res.Table(TableEvolution)
	require.True(t, ok)
	assert.Equal(t, [][]string{
		{"2019", "Nordeste", "20", "5", "15", "25.00", "0.3333"},
		{"2020", "Nordeste", "150", "50", "100", "33.33", "0.5000"},
	}, evolution.Rows)

	byType, ok := res.Table(TableInstitutionType)
	require.True(t, ok)
	require.Len(t, byType.Rows, 2)
	assert.Equal(t, []string{"2020", "Nordeste", "private", "50", "10", "40", "20.00", "0.2500"}, byType.Rows[0])

	groups, ok := res.Table(TableTargetGroups)
	require.True(t, ok)
	assert.Len(t, groups.Rows, 3)

	_, ok = res.Table("nope")
	assert.False(t, ok)
}

func TestRun_Narrowing(t *testing.T) {
	res, err := NewRunner(fixture(t), nil).Run(context.Background(), Options{
		Years:         []int{2019, 2020},
		SelectedCodes: []string{"7"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Target, 2)

	evolution, _ := res.Table(TableEvolution)
	assert.Equal(t, []string{"2020", "Nordeste", "100", "40", "60", "40.00", "0.6667"}, evolution.Rows[1])

	groups, _ := res.Table(TableTargetGroups)
	assert.Equal(t, [][]string{{"07", "Engenharia, Produção e Construção"}}, groups.Rows)
}

func TestRun_NoData(t *testing.T) {
	_, err := NewRunner(fixture(t), nil).Run(context.Background(), Options{Years: []int{1990}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoData)

	_, err = NewRunner(fixture(t), nil).Run(context.Background(), Options{
		Years:   []int{2020},
		Regions: []domain.Region{domain.RegionSul},
	})
	assert.ErrorIs(t, err, apperrors.ErrNoData)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(fixture(t), nil).Run(ctx, Options{Years: []int{2020}})
	assert.ErrorIs(t, err, context.Canceled)
}
