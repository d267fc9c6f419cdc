package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_WriteFile(t *testing.T) {
	m := NewManager(t.TempDir(), nil)

	err := m.WriteFile(filepath.Join(TablesDir, "a.csv"), func(w io.Writer) error {
		_, err := io.WriteString(w, "x;y\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(m.Path(filepath.Join(TablesDir, "a.csv")))
	require.NoError(t, err)
	assert.Equal(t, "x;y\n", string(data))

	names, err := m.ListFiles(TablesDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, names)
}

func TestManager_WriteFileFailureLeavesNothing(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	boom := errors.New("boom")

	err := m.WriteFile("b.csv", func(w io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)

	names, err := m.ListFiles("")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestManager_Paths(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, nil)
	assert.Equal(t, root, m.Root())
	assert.Equal(t, "/abs/x", m.Path("/abs/x"))

	dir, err := m.EnsureDirectory(TablesDir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
