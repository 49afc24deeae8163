package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_WritesYAMLByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rootcut.yaml")

	require.NoError(t, runConfigInit(path, "yaml", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: skinny")
}

func TestConfigInit_RefusesExistingFileWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rootcut.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: slim\n"), 0o644))

	err := runConfigInit(path, "yaml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rootcut.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: slim\n"), 0o644))

	require.NoError(t, runConfigInit(path, "yaml", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: skinny")
}

func TestConfigInit_TOMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rootcut.toml")

	require.NoError(t, runConfigInit(path, "toml", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "skinny")
}

func TestRootCommand_RegistersConfigSubcommand(t *testing.T) {
	rootCmd := NewRootCommand("dev")
	cmd, _, err := rootCmd.Find([]string{"config", "init"})
	require.NoError(t, err)
	assert.Equal(t, "init <path>", cmd.Use)
}
