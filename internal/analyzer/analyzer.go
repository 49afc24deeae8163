// Package analyzer implements C4's polymorphic Analyzer abstraction and the
// five always-on C5/C6 analyzers run in a fixed order for every queued
// command: link, which, folder, ldd, scripts.
//
// spec.md §9 flags the source's dynamic dispatch by function-name
// convention (PLUGIN_<rank>_<name> discovered via reflection) for
// re-architecture; this package replaces it with a statically declared,
// ordered registry of values satisfying the Analyzer interface.
package analyzer

import (
	"context"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// Analyzer is the capability set spec.md §9 asks for in place of
// function-name-convention dispatch: a name, a fixed order, and a pure
// function over the engine context and the item under analysis.
type Analyzer interface {
	Name() string
	Order() int
	Run(ctx context.Context, ec *engctx.Context, item domain.WorkItem) (domain.Disposition, error)
}

// DefaultChain returns the always-active analyzers in pipeline order
// (spec.md §4.4): link, which, folder, ldd, scripts. strace is invoked
// separately by the orchestrator (spec.md §4.4) and is not part of this
// chain.
func DefaultChain() []Analyzer {
	return []Analyzer{
		LinkAnalyzer{},
		WhichAnalyzer{},
		FolderAnalyzer{},
		LDDAnalyzer{},
		ScriptAnalyzer{},
	}
}

// Run drains ec.Queue through chain in order, invoking each analyzer for
// every item until one returns Stop or the chain is exhausted.
func Run(ctx context.Context, ec *engctx.Context, chain []Analyzer) error {
	var errs []error
	for {
		item, ok := ec.Queue.Next()
		if !ok {
			break
		}
		for _, a := range chain {
			spanCtx, span := ec.StartSpan(ctx, "analyzer."+a.Name())
			disposition, err := a.Run(spanCtx, ec, item)
			if err != nil {
				span.RecordError(err)
				ec.Log.Warn(ctx, "analyzer_failed", "analyzer", a.Name(), "item", string(item), "error", err)
				errs = append(errs, err)
			}
			span.End()
			if disposition == domain.Stop {
				break
			}
		}
	}
	if len(errs) > 0 {
		return domain.ErrMultiple{Errors: errs}
	}
	return nil
}
