// Package pathresolve implements C1, the path resolver: it walks a path's
// ancestor chain, materializes every intermediate symlink into the output
// tree as a relative symlink mirroring the source topology, and returns the
// canonical non-symlink file the input ultimately refers to.
//
// The walk is grounded on the lexical ancestor-substitution approach used by
// cyphar/filepath-securejoin's SecureJoin implementation, adapted from
// "join a path safely under a root" to "mirror every symlink hop into a
// second, output root".
package pathresolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rootcut/rootcut/internal/domain"
)

// maxSymlinkHops bounds the walk so that a symlink cycle cannot loop
// forever; spec.md notes cycles terminate because resolved progress is
// strictly increasing, but a hard ceiling is cheap insurance against a
// pathological or adversarial input.
const maxSymlinkHops = 255

// Hop records one ancestor symlink encountered while resolving a path, the
// Go realization of spec.md §3's LinkChain tuple.
type Hop struct {
	LinkPath       string // absolute path of the symlink, e.g. /bin
	TargetAbsolute string // absolute, lexically-cleaned target, e.g. /usr/bin
	RewrittenTail  string // suffix of the original path past LinkPath
}

// Resolver is C1.
type Resolver struct {
	fs         domain.FS
	log        domain.Logger
	outputRoot string
}

// New creates a path resolver that materializes symlinks under outputRoot.
func New(fs domain.FS, log domain.Logger, outputRoot string) *Resolver {
	return &Resolver{fs: fs, log: log, outputRoot: outputRoot}
}

// Resolve walks P's ancestor chain from the leaf upward. Every ancestor that
// is a symlink is materialized in the output tree as a relative symlink
// mirroring its source topology; the function returns the final canonical
// path once no ancestor remains a symlink, along with the ordered Hops
// discovered along the way.
//
// A broken symlink (one whose target cannot be read) stops the walk at that
// point and returns the last valid path together with the error; this is
// not a fatal condition (spec.md §4.1) — callers log it and continue.
func (r *Resolver) Resolve(ctx context.Context, p string) (string, []Hop, error) {
	current := filepath.Clean(p)
	var hops []Hop

	for i := 0; i < maxSymlinkHops; i++ {
		changed, next, hop, err := r.resolveOnePass(ctx, current)
		if err != nil {
			return current, hops, err
		}
		if !changed {
			return current, hops, nil
		}
		hops = append(hops, hop)
		current = next
	}
	return current, hops, fmt.Errorf("pathresolve: too many levels of symbolic links resolving %q", p)
}

// resolveOnePass inspects p's ancestor chain (p itself, then its parent, and
// so on to "/") for the first ancestor that is a symlink. "." and ".." path
// components pass through untouched because filepath.Clean normalizes them
// before this function ever sees them.
func (r *Resolver) resolveOnePass(ctx context.Context, p string) (changed bool, next string, hop Hop, err error) {
	for _, ancestor := range ancestorsFromLeaf(p) {
		if ancestor == "/" {
			continue
		}

		isLink, statErr := r.fs.IsSymlink(ctx, ancestor)
		if statErr != nil {
			// Nonexistent ancestor: reading the leaf is not an error here
			// (the caller detects absence); a nonexistent intermediate
			// directory is treated the same as a non-symlink and skipped.
			continue
		}
		if !isLink {
			continue
		}

		target, readErr := r.fs.ReadLink(ctx, ancestor)
		if readErr != nil {
			return false, ancestor, Hop{}, fmt.Errorf("pathresolve: broken symlink %q: %w", ancestor, readErr)
		}

		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(ancestor), target)
		}
		target = filepath.Clean(target)

		rel, relErr := filepath.Rel(filepath.Dir(ancestor), target)
		if relErr == nil {
			r.materialize(ctx, ancestor, rel)
		} else {
			r.log.Warn(ctx, "pathresolve_relative_failed", "link", ancestor, "target", target, "error", relErr)
		}

		tail := strings.TrimPrefix(p, ancestor)
		newCandidate := filepath.Clean(target + tail)

		return true, newCandidate, Hop{LinkPath: ancestor, TargetAbsolute: target, RewrittenTail: tail}, nil
	}
	return false, p, Hop{}, nil
}

// materialize creates, under outputRoot, a symlink at linkPath whose content
// is relTarget. Failures are logged and ignored (spec.md §4.1): the
// file-copy engine will still attempt a direct copy of the eventual target.
func (r *Resolver) materialize(ctx context.Context, linkPath, relTarget string) {
	dest := filepath.Join(r.outputRoot, linkPath)
	parent := filepath.Dir(dest)

	if err := r.fs.MkdirAll(ctx, parent, 0o755); err != nil {
		r.log.Warn(ctx, "pathresolve_mkdir_failed", "path", parent, "error", err)
		return
	}

	if err := r.fs.Symlink(ctx, relTarget, dest); err != nil {
		if errors.Is(err, fs.ErrExist) || strings.Contains(err.Error(), "exists") {
			// Silently ignore EEXIST (spec.md §4.1).
			return
		}
		r.log.Warn(ctx, "pathresolve_symlink_failed", "link", dest, "target", relTarget, "error", err)
	}
}

// ancestorsFromLeaf returns p and every ancestor directory up to "/", in
// leaf-to-root order, matching spec.md §4.1's "walk the ancestor chain of P
// from the leaf upward".
func ancestorsFromLeaf(p string) []string {
	var out []string
	cur := filepath.Clean(p)
	for {
		out = append(out, cur)
		if cur == "/" || cur == "." {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return out
}
