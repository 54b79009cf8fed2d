package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("DOCSMITH_TEST_A=first\n"), 0600))
	require.NoError(t, os.WriteFile(second, []byte("DOCSMITH_TEST_A=second\nDOCSMITH_TEST_B=second\n"), 0600))
	t.Setenv("DOCSMITH_TEST_SHELL", "shell")
	t.Setenv("DOCSMITH_TEST_A", "")
	require.NoError(t, os.Unsetenv("DOCSMITH_TEST_A"))
	t.Setenv("DOCSMITH_TEST_B", "")
	require.NoError(t, os.Unsetenv("DOCSMITH_TEST_B"))

	loaded, err := LoadEnv(first, filepath.Join(dir, "missing.env"), "", second)

	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, loaded)
	assert.Equal(t, "first", os.Getenv("DOCSMITH_TEST_A"))
	assert.Equal(t, "second", os.Getenv("DOCSMITH_TEST_B"))
}

func TestLoadEnv_ShellWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCSMITH_TEST_KEY=file\n"), 0600))
	t.Setenv("DOCSMITH_TEST_KEY", "shell")

	_, err := LoadEnv(path)

	require.NoError(t, err)
	assert.Equal(t, "shell", os.Getenv("DOCSMITH_TEST_KEY"))
}

func TestLoadEnv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=x\n"), 0600))

	_, err := LoadEnv(path)

	assert.Error(t, err)
}

func TestDefaultEnvFiles(t *testing.T) {
	assert.Equal(t, []string{".env"}, DefaultEnvFiles(""))
	assert.Equal(t, []string{".env", filepath.Join("/cfg", ".env")}, DefaultEnvFiles("/cfg"))
}
