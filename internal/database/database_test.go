package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDatabaseURL_EnvironmentWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/db")

	url, err := loadDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host/db", url)
}

func TestLoadDatabaseURL_EnvFileDiscovery(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	content := "# local overrides\nOTHER_KEY=ignored\nDATABASE_URL = \"postgres://file-host/db\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))
	t.Chdir(dir)

	url, err := loadDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file-host/db", url)
}

func TestLoadDatabaseURL_EmptyValueRejected(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=\n"), 0644))
	t.Chdir(dir)

	_, err := loadDatabaseURL()
	assert.Error(t, err)
}

func TestFindEnvFile_WalksUpToParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("DATABASE_URL=x\n"), 0644))

	path, err := findEnvFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env"), path)
}
