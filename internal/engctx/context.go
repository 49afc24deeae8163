// Package engctx holds the run-scoped state analyzers operate over (C8's
// orchestration context). It is deliberately neutral: both internal/engine
// (the orchestrator) and internal/analyzer (the plugin chain) depend on it,
// so the context type itself cannot live in either without creating an
// import cycle between the two.
package engctx

import (
	"context"

	"github.com/rootcut/rootcut/internal/copier"
	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/loaderconf"
	"github.com/rootcut/rootcut/internal/pathresolve"
	"github.com/rootcut/rootcut/internal/queue"
	"github.com/rootcut/rootcut/internal/rules"
)

// PluginParams is the parsed form of spec.md §3's PluginConfig: a mapping
// from plugin name to its parameter map, built once at startup from the
// `--plugin name:k=v,...` activation grammar and threaded through Context
// rather than re-parsed per analyzer invocation (spec.md §9).
type PluginParams map[string]map[string]string

// Get returns the value of parameter key for plugin, and whether it was set.
func (p PluginParams) Get(plugin, key string) (string, bool) {
	params, ok := p[plugin]
	if !ok {
		return "", false
	}
	v, ok := params[key]
	return v, ok
}

// Active reports whether plugin appears in the activation set at all (the
// always-on analyzers are checked separately by the registry; this is for
// opt-in plugins like strace).
func (p PluginParams) Active(plugin string) bool {
	_, ok := p[plugin]
	return ok
}

// Context is the explicit engine context spec.md §9 calls for in place of
// global mutable state: every piece of mutable run state analyzers touch is
// a field here, passed by reference to every analyzer invocation.
type Context struct {
	FS     domain.FS
	Runner domain.Runner
	Log    domain.Logger

	// Tracer falls back to a no-op when unset (see StartSpan). Metrics is
	// not read by the engine itself; rootcut's CLI sets both to the no-op
	// adapters (see internal/cli/root.go).
	Tracer  domain.Tracer
	Metrics domain.Metrics

	OutputRoot string
	Mode       domain.Mode
	Plugins    PluginParams

	Queue      *queue.Queue
	Resolver   *pathresolve.Resolver
	Rules      *rules.Set
	Copier     *copier.Engine
	LoaderConf *loaderconf.Config

	// TracedVectors records the exact argument vectors already run under the
	// tracer (spec.md §4.7 step 1: "skip if the vector has already been
	// traced"), keyed by their joined exact string form.
	TracedVectors map[string]struct{}

	// ToolPaths maps a collaborator tool name (ldd, file, ldconfig, strace,
	// tar, rsync) to its resolved PATH location, or "" when absent — checked
	// once at startup (spec.md §5) by internal/toolcheck.
	ToolPaths map[string]string
}

// HasTool reports whether tool was found on PATH at startup.
func (c *Context) HasTool(tool string) bool {
	return c.ToolPaths[tool] != ""
}

// ToolPath returns the resolved path for tool, or "" if absent.
func (c *Context) ToolPath(tool string) string {
	return c.ToolPaths[tool]
}

// MarkTraced records vector as having been run under the tracer, keyed by
// its exact argument sequence.
func (c *Context) MarkTraced(vector []string) {
	c.TracedVectors[vectorKey(vector)] = struct{}{}
}

// Traced reports whether vector has already been traced.
func (c *Context) Traced(vector []string) bool {
	_, ok := c.TracedVectors[vectorKey(vector)]
	return ok
}

// tracer returns c.Tracer, or a no-op when the context was built without
// one (e.g. in tests that only exercise filesystem/queue behavior).
func (c *Context) tracer() domain.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}
	return domain.NewNoopTracer()
}

// StartSpan starts a span named name using the context's tracer, falling
// back to a no-op tracer when none was configured.
func (c *Context) StartSpan(ctx context.Context, name string) (context.Context, domain.Span) {
	return c.tracer().Start(ctx, name)
}

func vectorKey(vector []string) string {
	key := ""
	for i, v := range vector {
		if i > 0 {
			key += "\x00"
		}
		key += v
	}
	return key
}
