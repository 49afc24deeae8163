package analyzer

import (
	"context"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// LinkAnalyzer resolves symlinks via the path resolver; if the resolved
// path differs from the queued item, the resolved path is enqueued and
// this command is stopped (spec.md §4.4 step 1).
type LinkAnalyzer struct{}

func (LinkAnalyzer) Name() string { return "link" }
func (LinkAnalyzer) Order() int   { return 1 }

func (LinkAnalyzer) Run(ctx context.Context, ec *engctx.Context, item domain.WorkItem) (domain.Disposition, error) {
	resolved, _, err := ec.Resolver.Resolve(ctx, string(item))
	if err != nil {
		ec.Log.Debug(ctx, "link_resolve_partial", "item", string(item), "error", err)
	}
	if resolved == string(item) {
		return domain.Continue, nil
	}
	ec.Queue.Enqueue(domain.WorkItem(resolved))
	return domain.Stop, nil
}
