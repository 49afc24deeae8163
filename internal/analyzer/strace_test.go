package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootcut/rootcut/internal/adapters"
	"github.com/rootcut/rootcut/internal/analyzer"
	"github.com/rootcut/rootcut/internal/testutil"
)

func TestStraceAnalyzer_SkipsWhenVectorAlreadyTraced(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/run", []byte("elf"), 0o755))

	runner := testutil.NewFakeRunner()
	runner.Paths["strace"] = "/usr/bin/strace"
	ec := newTestContext(fs, runner)

	vector := []string{"/opt/app/run"}
	ec.MarkTraced(vector)

	require.NoError(t, analyzer.StraceAnalyzer{}.RunVector(ctx, ec, vector))
	assert.Empty(t, runner.Calls)
}

func TestStraceAnalyzer_MissingToolSkipsTraceButStillCopiesTarget(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/run", []byte("elf"), 0o755))

	runner := testutil.NewFakeRunner()
	ec := newTestContext(fs, runner)

	require.NoError(t, analyzer.StraceAnalyzer{}.RunVector(ctx, ec, []string{"/opt/app/run"}))
	assert.Empty(t, runner.Calls)
	assert.True(t, fs.Exists(ctx, "/out/opt/app/run"))
}

func TestStraceAnalyzer_ClassifiesExecDirAndGenericRecords(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/run", []byte("elf"), 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/helper", []byte("elf"), 0o755))
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app/assets", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/config.yaml", []byte("x"), 0o644))

	runner := testutil.NewFakeRunner()
	runner.Paths["strace"] = "/usr/bin/strace"
	runner.Outputs["/usr/bin/strace"] = "" +
		"execve(\"/opt/app/helper\", [\"helper\"], 0x7fff /* 40 vars */) = 0\n" +
		"openat(AT_FDCWD, \"/opt/app/assets\", O_RDONLY) = 3\n" +
		"stat(\"/opt/app/config.yaml\", {st_mode=S_IFREG|0644, st_size=1, ...}) = 0\n"

	ec := newTestContext(fs, runner)
	ec.Plugins = map[string]map[string]string{"strace": {"mode": "slim"}}

	require.NoError(t, analyzer.StraceAnalyzer{}.RunVector(ctx, ec, []string{"/opt/app/run"}))

	assert.True(t, ec.Queue.Seen("/opt/app/helper"))
	assert.True(t, fs.Exists(ctx, "/out/opt/app/assets"), "slim mode bulk-copies dir candidates")
	assert.True(t, fs.Exists(ctx, "/out/opt/app/config.yaml"))
	assert.True(t, fs.Exists(ctx, "/out/opt/app/run"))
}

func TestStraceAnalyzer_SkinnyModeDoesNotBulkCopyDirCandidate(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app/assets", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/run", []byte("elf"), 0o755))

	runner := testutil.NewFakeRunner()
	runner.Paths["strace"] = "/usr/bin/strace"
	runner.Outputs["/usr/bin/strace"] = "openat(AT_FDCWD, \"/opt/app/assets\", O_RDONLY) = 3\n"

	ec := newTestContext(fs, runner)
	// ec.Mode defaults to ModeSkinny; no plugin override.

	require.NoError(t, analyzer.StraceAnalyzer{}.RunVector(ctx, ec, []string{"/opt/app/run"}))
	assert.False(t, fs.Exists(ctx, "/out/opt/app/assets"))
}

func TestStraceAnalyzer_LibLikeGenericPathEnqueuedNotCopied(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/run", []byte("elf"), 0o755))
	require.NoError(t, fs.MkdirAll(ctx, "/usr/lib", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/usr/lib/libfoo.so.1", []byte("so"), 0o644))

	runner := testutil.NewFakeRunner()
	runner.Paths["strace"] = "/usr/bin/strace"
	runner.Outputs["/usr/bin/strace"] = "openat(AT_FDCWD, \"/usr/lib/libfoo.so.1\", O_RDONLY) = 3\n"

	ec := newTestContext(fs, runner)
	require.NoError(t, analyzer.StraceAnalyzer{}.RunVector(ctx, ec, []string{"/opt/app/run"}))

	assert.True(t, ec.Queue.Seen("/usr/lib/libfoo.so.1"))
	assert.False(t, fs.Exists(ctx, "/out/usr/lib/libfoo.so.1"))
}

func TestStraceAnalyzer_TimeoutStillAppliesPartialRecords(t *testing.T) {
	ctx := context.Background()
	fs := adapters.NewMemFS()
	require.NoError(t, fs.MkdirAll(ctx, "/opt/app", 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/run", []byte("elf"), 0o755))
	require.NoError(t, fs.WriteFile(ctx, "/opt/app/config.yaml", []byte("x"), 0o644))

	runner := testutil.NewFakeRunner()
	runner.Paths["strace"] = "/usr/bin/strace"
	runner.TimeoutTools["/usr/bin/strace"] = true
	runner.Outputs["/usr/bin/strace"] = "openat(AT_FDCWD, \"/opt/app/config.yaml\", O_RDONLY) = 4\n"

	ec := newTestContext(fs, runner)
	require.NoError(t, analyzer.StraceAnalyzer{}.RunVector(ctx, ec, []string{"/opt/app/run"}))
	assert.True(t, fs.Exists(ctx, "/out/opt/app/config.yaml"))
}
