package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Francelinojr/teste-gener/internal/config"
	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

func writeLatin1(t *testing.T, path string, lines ...string) {
	t.Helper()
	content, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(root, "Dados")
	cfg.Paths.OutputDir = filepath.Join(root, "out")
	cfg.Paths.Database = filepath.Join(root, "db", "census.db")
	cfg.Telemetry.MetricExporter = "prometheus"
	cfg.Telemetry.TraceExporter = "none"
	cfg.Normalize()
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := NewApplication(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestRunPipelineAndServe(t *testing.T) {
	cfg := testConfig(t)
	writeLatin1(t, filepath.Join(cfg.Paths.DataDir, "MICRODADOS_CADASTRO_CURSOS_2020.CSV"),
		"NO_REGIAO;SG_UF;NO_MUNICIPIO;CO_MUNICIPIO;TP_CATEGORIA_ADMINISTRATIVA;NO_CINE_AREA_GERAL;CO_CINE_AREA_GERAL;CO_IES;QT_MAT;QT_MAT_FEM",
		"Nordeste;PE;Recife;2611606;1;Engenharia;07;1;100;40",
		"Nordeste;PE;Recife;2611606;4;Computação;06;2;50;10",
		"Sul;RS;Porto Alegre;4314902;1;Engenharia;07;3;70;20",
	)
	a := newTestApp(t, cfg)

	out, err := a.RunPipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2020}, out.Result.LoadedYears)
	assert.Equal(t, "_regs_NE-SE_k3", out.Filters.Suffix)
	assert.FileExists(t, filepath.Join(cfg.Paths.OutputDir, "tables", "evolution_by_year_region_regs_NE-SE_k3.csv"))
	assert.FileExists(t, filepath.Join(cfg.Paths.OutputDir, "census_tables_regs_NE-SE_k3.xlsx"))

	// The Sul row is outside the default regions
	for _, rec := range out.Result.Records {
		assert.NotEqual(t, domain.RegionSul, rec.Region)
	}

	runs, err := a.Store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.Result.RunID, runs[0].RunID)

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	tests := []struct {
		path   string
		status int
	}{
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/years", http.StatusOK},
		{"/api/v1/tables", http.StatusOK},
		{"/api/v1/tables/evolution_by_year_region", http.StatusOK},
		{"/api/v1/tables/nope", http.StatusNotFound},
		{"/api/v1/records?year=2020&region=NE&target=true", http.StatusOK},
		{"/api/v1/records?year=abc", http.StatusBadRequest},
		{"/api/v1/runs", http.StatusOK},
		{"/nothing-here", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}

	resp, err := http.Get(srv.URL + "/api/v1/records?region=Nordeste")
	require.NoError(t, err)
	defer resp.Body.Close()
	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 2, page.Total)
}

func TestRunPipeline_NoData(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Database = ""
	a := newTestApp(t, cfg)

	_, err := a.RunPipeline(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoData)
}

func TestPipelineOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Database = ""
	cfg.Pipeline.Years = "2018-2019"
	cfg.Pipeline.SubjectCodes = []string{"07"}
	cfg.Pipeline.SubjectNames = []string{"TIC", "Astrologia"}
	cfg.Pipeline.ChunkSize = 1000
	a := newTestApp(t, cfg)

	opts, sel, unresolved, err := a.PipelineOptions()
	require.NoError(t, err)
	assert.True(t, sel.Explicit)
	assert.Equal(t, []int{2018, 2019}, opts.Years)
	assert.Equal(t, []string{"06", "07"}, opts.SelectedCodes)
	assert.Equal(t, []string{"Astrologia"}, unresolved)
	assert.Equal(t, []domain.Region{domain.RegionNordeste, domain.RegionSudeste}, opts.Regions)
	assert.Equal(t, 1000, opts.ChunkSize)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Database = ""
	cfg.Server.Port = 0
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Serve(ctx))
}
