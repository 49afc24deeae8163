// Package loaderconf manages the LoaderConfig entity (spec.md §3): the
// dynamic-linker configuration file inside the output tree that analyzers
// append library directories to as they discover shared objects, and that
// finalization deduplicates and flushes once.
package loaderconf

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/rootcut/rootcut/internal/domain"
)

// Config accumulates library directories in memory and flushes them to a
// single file at finalization, avoiding the source implementation's
// append-then-reread pattern (spec.md §9).
type Config struct {
	fs       domain.FS
	log      domain.Logger
	relPath  string // path relative to OutputRoot; empty disables loader-config rewriting
	dirs     *domain.OrderedStringSet
}

// New creates a loader-config accumulator. relPath is the path of the
// loader-config file relative to OutputRoot (the config file's
// loader_config setting; the CLI passes "" under --no-ldconfig); an empty
// relPath means loader-config rewriting is disabled entirely.
func New(fs domain.FS, log domain.Logger, relPath string) *Config {
	return &Config{
		fs:      fs,
		log:     log,
		relPath: relPath,
		dirs:    domain.NewOrderedStringSet(),
	}
}

// Enabled reports whether loader-config rewriting is active.
func (c *Config) Enabled() bool {
	return c.relPath != ""
}

// AddLibraryDir records dir as a line to ensure present in the loader
// config, preserving first-occurrence order. A no-op if rewriting is
// disabled or dir was already recorded.
func (c *Config) AddLibraryDir(dir string) {
	if !c.Enabled() || dir == "" {
		return
	}
	c.dirs.Add(dir)
}

// Flush writes the deduplicated, first-occurrence-ordered set of library
// directories to OutputRoot/<relPath>, merging in any lines the file
// already contains (spec.md §4.8 step 5: "read the file, dedupe lines
// preserving first-occurrence order, write back"), then invokes refresh to
// rebuild the loader cache rooted at outputRoot. A no-op if rewriting is
// disabled.
func (c *Config) Flush(ctx context.Context, outputRoot string, refresh func(ctx context.Context, root string) error) error {
	if !c.Enabled() {
		return nil
	}

	target := filepath.Join(outputRoot, c.relPath)

	merged := domain.NewOrderedStringSet()
	if existing, err := c.fs.ReadFile(ctx, target); err == nil {
		scanner := bufio.NewScanner(bytes.NewReader(existing))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				merged.Add(line)
			}
		}
	}
	for _, d := range c.dirs.Items() {
		merged.Add(d)
	}

	var buf bytes.Buffer
	for _, d := range merged.Items() {
		buf.WriteString(d)
		buf.WriteByte('\n')
	}

	if err := c.fs.MkdirAll(ctx, filepath.Dir(target), 0o755); err != nil {
		c.log.Warn(ctx, "loaderconf_mkdir_failed", "path", target, "error", err)
		return domain.ErrWriteFailed{Operation: "loaderconf_mkdir", Path: target, Err: err}
	}
	if err := c.fs.WriteFile(ctx, target, buf.Bytes(), 0o644); err != nil {
		c.log.Warn(ctx, "loaderconf_write_failed", "path", target, "error", err)
		return domain.ErrWriteFailed{Operation: "loaderconf_write", Path: target, Err: err}
	}

	if refresh == nil {
		return nil
	}
	if err := refresh(ctx, outputRoot); err != nil {
		c.log.Warn(ctx, "loader_cache_refresh_failed", "root", outputRoot, "error", err)
		return err
	}
	return nil
}

// Len returns the number of distinct library directories recorded so far,
// exposed for the loader-config deduplication property test (spec.md §8).
func (c *Config) Len() int {
	return c.dirs.Len()
}
