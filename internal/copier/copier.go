// Package copier implements C2, the file-copy engine: an idempotent,
// recursion-aware copy of files and directories into the output root,
// honoring inclusion/exclusion rules and never overwriting an existing
// destination.
package copier

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/pathresolve"
	"github.com/rootcut/rootcut/internal/rules"
)

// Engine is C2.
type Engine struct {
	fs         domain.FS
	runner     domain.Runner
	log        domain.Logger
	rules      *rules.Set
	resolver   *pathresolve.Resolver
	outputRoot string
	ledger     *Ledger
	rsyncPath  string // empty when rsync is unavailable; fallback copier is used
	copies     domain.Counter
}

// Opts configures Engine creation.
type Opts struct {
	FS         domain.FS
	Runner     domain.Runner
	Logger     domain.Logger
	Rules      *rules.Set
	Resolver   *pathresolve.Resolver
	OutputRoot string
	RsyncPath  string

	// Metrics is optional; when nil, ledger mutations are not counted.
	Metrics domain.Metrics
}

// New creates a file-copy engine.
func New(opts Opts) *Engine {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NewNoopMetrics()
	}

	return &Engine{
		fs:         opts.FS,
		runner:     opts.Runner,
		log:        opts.Logger,
		rules:      opts.Rules,
		resolver:   opts.Resolver,
		outputRoot: opts.OutputRoot,
		ledger:     NewLedger(),
		rsyncPath:  opts.RsyncPath,
		copies:     metrics.Counter("rootcut_copies_total"),
	}
}

// Ledger exposes the underlying copy ledger, for idempotence tests and for
// the orchestrator's summary logging.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Copy materializes source into the output tree, recursing into it when
// recursive is true. It implements spec.md §4.2's seven-step contract:
// resolve, protected check, excluded check, ledger check, materialize,
// never overwrite, record.
func (e *Engine) Copy(ctx context.Context, source string, recursive bool) error {
	if source == "" || source == "." || source == ".." {
		return nil
	}

	resolved, _, resolveErr := e.resolver.Resolve(ctx, source)
	if resolveErr != nil {
		e.log.Warn(ctx, "copy_resolve_failed", "source", source, "error", resolveErr)
	}

	if domain.IsProtected(resolved) {
		e.log.Debug(ctx, "copy_skip_protected", "path", resolved)
		return nil
	}

	if e.rules.Excluded.Matches(resolved) {
		e.log.Warn(ctx, "copy_skip_excluded", "path", resolved)
		return nil
	}

	if e.ledger.Seen(resolved, recursive) {
		return nil
	}

	if !e.fs.Exists(ctx, resolved) {
		return domain.ErrCopySourceMissing{Path: resolved}
	}

	if err := e.materialize(ctx, resolved, recursive); err != nil {
		e.log.Warn(ctx, "copy_materialize_failed", "path", resolved, "error", err)
		return domain.ErrWriteFailed{Operation: "copy", Path: resolved, Err: err}
	}

	e.ledger.Record(resolved, recursive)
	e.copies.Inc()
	return nil
}

// materialize prefers the whitelisting rsync invocation described in
// spec.md §4.2, falling back to a plain recursive copy when rsync is not
// on PATH (spec.md §5's "external tool presence checked once at startup").
func (e *Engine) materialize(ctx context.Context, source string, recursive bool) error {
	if e.rsyncPath != "" {
		if err := e.rsyncCopy(ctx, source, recursive); err == nil {
			return nil
		} else {
			e.log.Debug(ctx, "rsync_copy_failed_falling_back", "path", source, "error", err)
		}
	}
	return e.plainCopy(ctx, source, recursive)
}

// rsyncCopy builds an include/exclude filter list that lifts a single file
// (or directory) out of a large tree without copying its siblings: every
// ancestor of source gets an include rule (so rsync descends into it), the
// source itself (and source/** when recursive) is included, the caller's
// Excluded prefixes are excluded, and everything else is excluded.
func (e *Engine) rsyncCopy(ctx context.Context, source string, recursive bool) error {
	args := []string{"-a"}
	for _, ancestor := range ancestorsRootFirst(source) {
		args = append(args, "--include="+ancestor+"/")
	}
	args = append(args, "--include="+source)
	if recursive {
		args = append(args, "--include="+strings.TrimSuffix(source, "/")+"/**")
	}
	for _, pattern := range e.rules.Excluded.Patterns() {
		args = append(args, "--exclude="+pattern)
	}
	args = append(args, "--exclude=*", "/", e.outputRoot+"/")

	_, err := e.runner.Run(ctx, e.rsyncPath, args...)
	return err
}

// ancestorsRootFirst returns source's ancestor directories from "/" down to
// (but excluding) source itself, root first.
func ancestorsRootFirst(source string) []string {
	var reversed []string
	cur := filepath.Dir(filepath.Clean(source))
	for cur != "/" && cur != "." {
		reversed = append(reversed, cur)
		cur = filepath.Dir(cur)
	}
	out := make([]string, len(reversed))
	for i, a := range reversed {
		out[len(reversed)-1-i] = a
	}
	return out
}

// plainCopy performs a straightforward recursive copy through the FS port,
// used when the privilege-preserving whitelisting copier is unavailable.
func (e *Engine) plainCopy(ctx context.Context, source string, recursive bool) error {
	info, err := e.fs.Lstat(ctx, source)
	if err != nil {
		return fmt.Errorf("lstat %q: %w", source, err)
	}

	dest := filepath.Join(e.outputRoot, source)

	isLink, _ := e.fs.IsSymlink(ctx, source)
	if isLink {
		return e.copySymlink(ctx, source, dest)
	}

	if info.IsDir() {
		if !recursive {
			return e.fs.MkdirAll(ctx, dest, 0o755)
		}
		return e.copyDir(ctx, source, dest)
	}

	return e.copyFile(ctx, source, dest, info.Mode())
}

func (e *Engine) copySymlink(ctx context.Context, source, dest string) error {
	target, err := e.fs.ReadLink(ctx, source)
	if err != nil {
		return fmt.Errorf("readlink %q: %w", source, err)
	}
	if e.fs.Exists(ctx, dest) {
		return nil
	}
	if err := e.fs.MkdirAll(ctx, filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return e.fs.Symlink(ctx, target, dest)
}

func (e *Engine) copyDir(ctx context.Context, source, dest string) error {
	if err := e.fs.MkdirAll(ctx, dest, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dest, err)
	}

	entries, err := e.fs.ReadDir(ctx, source)
	if err != nil {
		return fmt.Errorf("readdir %q: %w", source, err)
	}

	for _, entry := range entries {
		childSource := filepath.Join(source, entry.Name())
		childDest := filepath.Join(dest, entry.Name())

		isLink, _ := e.fs.IsSymlink(ctx, childSource)
		if isLink {
			if err := e.copySymlink(ctx, childSource, childDest); err != nil {
				e.log.Warn(ctx, "copy_symlink_failed", "path", childSource, "error", err)
			}
			continue
		}

		if entry.IsDir() {
			if err := e.copyDir(ctx, childSource, childDest); err != nil {
				e.log.Warn(ctx, "copy_dir_failed", "path", childSource, "error", err)
			}
			continue
		}

		childInfo, err := e.fs.Stat(ctx, childSource)
		if err != nil {
			e.log.Warn(ctx, "copy_stat_failed", "path", childSource, "error", err)
			continue
		}
		if err := e.copyFile(ctx, childSource, childDest, childInfo.Mode()); err != nil {
			e.log.Warn(ctx, "copy_file_failed", "path", childSource, "error", err)
		}
	}
	return nil
}

func (e *Engine) copyFile(ctx context.Context, source, dest string, mode fs.FileMode) error {
	if e.fs.Exists(ctx, dest) {
		// Never overwrite an existing destination file (spec.md §4.2 step 6).
		return nil
	}
	if err := e.fs.MkdirAll(ctx, filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", filepath.Dir(dest), err)
	}
	data, err := e.fs.ReadFile(ctx, source)
	if err != nil {
		return fmt.Errorf("read %q: %w", source, err)
	}
	return e.fs.WriteFile(ctx, dest, data, mode)
}
