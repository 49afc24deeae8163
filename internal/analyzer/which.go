package analyzer

import (
	"context"
	"path/filepath"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// WhichAnalyzer resolves bare command names via system PATH lookup; when
// the resolved absolute path differs from the queued item, it is enqueued
// and this command is stopped (spec.md §4.4 step 2).
type WhichAnalyzer struct{}

func (WhichAnalyzer) Name() string { return "which" }
func (WhichAnalyzer) Order() int   { return 2 }

func (WhichAnalyzer) Run(ctx context.Context, ec *engctx.Context, item domain.WorkItem) (domain.Disposition, error) {
	name := string(item)
	if filepath.IsAbs(name) {
		return domain.Continue, nil
	}

	resolved, err := ec.Runner.LookPath(name)
	if err != nil {
		return domain.Continue, domain.ErrCommandNotFound{Command: name}
	}
	if resolved == name {
		return domain.Continue, nil
	}
	ec.Queue.Enqueue(domain.WorkItem(resolved))
	return domain.Stop, nil
}
