package loaderconf_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootcut/rootcut/internal/adapters"
	"github.com/rootcut/rootcut/internal/loaderconf"
)

func TestConfig_DisabledWhenRelPathEmpty(t *testing.T) {
	c := loaderconf.New(adapters.NewMemFS(), adapters.NewNoopLogger(), "")
	assert.False(t, c.Enabled())
	c.AddLibraryDir("/usr/lib")
	assert.Equal(t, 0, c.Len())
}

func TestConfig_AddLibraryDirDeduplicatesPreservingOrder(t *testing.T) {
	c := loaderconf.New(adapters.NewMemFS(), adapters.NewNoopLogger(), "etc/ld.so.conf")
	c.AddLibraryDir("/usr/lib")
	c.AddLibraryDir("/lib")
	c.AddLibraryDir("/usr/lib")
	assert.Equal(t, 2, c.Len())
}

func TestConfig_FlushWritesFileAndInvokesRefresh(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/out", 0o755))

	c := loaderconf.New(fs, adapters.NewNoopLogger(), "etc/ld.so.conf")
	c.AddLibraryDir("/usr/lib")
	c.AddLibraryDir("/lib/x86_64-linux-gnu")

	var refreshedRoot string
	err := c.Flush(ctx, "/out", func(ctx context.Context, root string) error {
		refreshedRoot = root
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/out", refreshedRoot)

	data, err := fs.ReadFile(ctx, "/out/etc/ld.so.conf")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"/usr/lib", "/lib/x86_64-linux-gnu"}, lines)
}

func TestConfig_FlushMergesExistingFileContents(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/out/etc", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/out/etc/ld.so.conf", []byte("/opt/lib\n"), 0o644))

	c := loaderconf.New(fs, adapters.NewNoopLogger(), "etc/ld.so.conf")
	c.AddLibraryDir("/usr/lib")

	require.NoError(t, c.Flush(ctx, "/out", nil))

	data, err := fs.ReadFile(ctx, "/out/etc/ld.so.conf")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"/opt/lib", "/usr/lib"}, lines)
}

func TestConfig_FlushNoopWhenDisabled(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	c := loaderconf.New(fs, adapters.NewNoopLogger(), "")
	require.NoError(t, c.Flush(ctx, "/out", func(ctx context.Context, root string) error {
		t.Fatal("refresh should not be invoked when disabled")
		return nil
	}))
	assert.False(t, fs.Exists(ctx, "/out/etc/ld.so.conf"))
}
