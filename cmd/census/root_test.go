package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Francelinojr/teste-gener/internal/config"
	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/files"
	"github.com/Francelinojr/teste-gener/pkg/contracts"
)

func writeLatin1(t *testing.T, path string, lines ...string) {
	t.Helper()
	content, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func dataFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeLatin1(t, filepath.Join(dir, "MICRODADOS_CADASTRO_CURSOS_2021.CSV"),
		"NO_REGIAO;SG_UF;NO_MUNICIPIO;CO_MUNICIPIO;TP_CATEGORIA_ADMINISTRATIVA;NO_CINE_AREA_GERAL;CO_CINE_AREA_GERAL;CO_IES;QT_MAT;QT_MAT_FEM",
		"Sudeste;SP;São Paulo;3550308;1;Engenharia;07;1;100;30",
	)
	writeLatin1(t, filepath.Join(dir, "microdados_censo_da_educacao_superior_2009", "dados", "DADOS", "GRADUACAO_PRESENCIAL.CSV"),
		"CO_IES|SG_UF_CURSO|CODMUNIC|NO_AREA_CONHE|QT_MAT_ATU_DIU_FEMI|QT_MAT_ATU_DIU_MASC",
		"1|BA|2927408|Engenharia Civil|5|15",
	)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestYearsCommand(t *testing.T) {
	dir := dataFixture(t)
	out, err := execute(t, "years", "--data-dir", dir, "--json")
	require.NoError(t, err)

	var inventory []files.YearFiles
	require.NoError(t, json.Unmarshal([]byte(out), &inventory))
	require.Len(t, inventory, 2)
	assert.Equal(t, 2009, inventory[0].Year)
	assert.Len(t, inventory[0].Legacy, 1)
	assert.Equal(t, 2021, inventory[1].Year)
	assert.NotEmpty(t, inventory[1].Modern)
}

func TestRunCommand(t *testing.T) {
	dir := dataFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "run",
		"--data-dir", dir,
		"--output", outDir,
		"--years", "2009,2021",
		"--codes", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded: [2009 2021]")
	assert.Contains(t, out, "2009: legacy, 1 records")
	assert.Contains(t, out, "2021: modern, 1 records")

	suffix := "_cine_07_anos_2009_2021_regs_NE-SE_k3"
	assert.FileExists(t, filepath.Join(outDir, "applied_filters"+suffix+".json"))
	assert.FileExists(t, filepath.Join(outDir, "tables", "evolution_by_year_region"+suffix+".csv"))
}

func TestRunCommand_NoData(t *testing.T) {
	_, err := execute(t, "run",
		"--data-dir", t.TempDir(),
		"--output", filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, apperrors.ErrNoData)
}

func TestRunCommand_InvalidRegion(t *testing.T) {
	_, err := execute(t, "run", "--data-dir", t.TempDir(), "--regions", "Atlantida")
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

func TestFlagsApply(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.CSVDirs = []string{"old"}
	f := &cliFlags{dataDir: "/data", years: "2015-2016", chunkSize: 500, regions: []string{"Sul"}}

	set := map[string]bool{"data-dir": true, "years": true, "chunk-size": true, "regions": true}
	f.apply(cfg, func(name string) bool { return set[name] })

	assert.Equal(t, "/data", cfg.Paths.DataDir)
	assert.Nil(t, cfg.Paths.CSVDirs)
	assert.Equal(t, "2015-2016", cfg.Pipeline.Years)
	assert.Equal(t, 500, cfg.Pipeline.ChunkSize)
	assert.Equal(t, []string{"Sul"}, cfg.Pipeline.Regions)
	// Untouched flags keep the configured values
	assert.Equal(t, 3, cfg.Pipeline.Clusters)
	assert.Equal(t, 10, cfg.Pipeline.TopMunicipalities)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.Version)
}
