package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootcut/rootcut/internal/config"
)

func TestDefault(t *testing.T) {
	d := config.Default()
	assert.Equal(t, "skinny", d.Mode)
	assert.Equal(t, "etc/ld.so.conf", d.LoaderConfig)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	f, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), f)
}

func TestLoad_NonexistentFileReturnsDefaults(t *testing.T) {
	f, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), f)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rootcut.yaml")
	contents := "mode: loose\nexcluded:\n  - /usr/share/doc\nplugins:\n  strace: seconds=5\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loose", f.Mode)
	assert.Equal(t, []string{"/usr/share/doc"}, f.Excluded)
	assert.Equal(t, "seconds=5", f.Plugins["strace"])
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rootcut.toml")
	contents := "mode = \"regular\"\nincluded = [\"/opt/app\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "regular", f.Mode)
	assert.Equal(t, []string{"/opt/app"}, f.Included)
}

func TestFile_PluginSpecs(t *testing.T) {
	f := config.File{Plugins: map[string]string{"strace": "seconds=5", "scripts": ""}}
	specs := f.PluginSpecs()
	assert.ElementsMatch(t, []string{"strace:seconds=5", "scripts"}, specs)
}
