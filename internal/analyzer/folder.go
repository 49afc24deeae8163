package analyzer

import (
	"context"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// FolderAnalyzer copies directory commands recursively and stops further
// analysis (spec.md §4.4 step 3).
type FolderAnalyzer struct{}

func (FolderAnalyzer) Name() string { return "folder" }
func (FolderAnalyzer) Order() int   { return 3 }

func (FolderAnalyzer) Run(ctx context.Context, ec *engctx.Context, item domain.WorkItem) (domain.Disposition, error) {
	path := string(item)
	if !ec.FS.Exists(ctx, path) {
		return domain.Continue, nil
	}
	isDir, err := ec.FS.IsDir(ctx, path)
	if err != nil || !isDir {
		return domain.Continue, nil
	}

	if err := ec.Copier.Copy(ctx, path, true); err != nil {
		return domain.Stop, err
	}
	return domain.Stop, nil
}
