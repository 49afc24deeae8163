package toolcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/testutil"
	"github.com/rootcut/rootcut/internal/toolcheck"
)

func fullRunner() *testutil.FakeRunner {
	r := testutil.NewFakeRunner()
	for _, tool := range []string{"strace", "file", "rsync", "ldd", "ldconfig", "tar"} {
		r.Paths[tool] = "/usr/bin/" + tool
	}
	return r
}

func TestProbe_AllToolsPresent(t *testing.T) {
	r := fullRunner()
	paths, err := toolcheck.Probe(r, true, true)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ldd", paths["ldd"])
	assert.True(t, toolcheck.Active(paths, "strace"))
}

func TestProbe_MissingLDDAlwaysFails(t *testing.T) {
	r := fullRunner()
	delete(r.Paths, "ldd")
	_, err := toolcheck.Probe(r, false, false)
	require.Error(t, err)
	assert.IsType(t, domain.ErrMissingTool{}, err)
}

func TestProbe_MissingLdconfigOnlyFailsWhenNeeded(t *testing.T) {
	r := fullRunner()
	delete(r.Paths, "ldconfig")

	_, err := toolcheck.Probe(r, false, false)
	assert.NoError(t, err)

	_, err = toolcheck.Probe(r, true, false)
	assert.Error(t, err)
}

func TestProbe_MissingTarOnlyFailsWhenNeeded(t *testing.T) {
	r := fullRunner()
	delete(r.Paths, "tar")

	_, err := toolcheck.Probe(r, false, false)
	assert.NoError(t, err)

	_, err = toolcheck.Probe(r, false, true)
	assert.Error(t, err)
}

func TestProbe_OptionalToolsAbsentDoesNotFail(t *testing.T) {
	r := fullRunner()
	delete(r.Paths, "strace")
	delete(r.Paths, "file")
	delete(r.Paths, "rsync")

	paths, err := toolcheck.Probe(r, false, false)
	require.NoError(t, err)
	assert.False(t, toolcheck.Active(paths, "strace"))
	assert.False(t, toolcheck.Active(paths, "file"))
	assert.False(t, toolcheck.Active(paths, "rsync"))
}
