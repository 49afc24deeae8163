package analyzer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// LDDAnalyzer runs the dynamic-linker introspection tool against the
// resolved command, enqueues each reported library, records library
// directories in the loader config, and copies the command itself
// (spec.md §4.5).
type LDDAnalyzer struct{}

func (LDDAnalyzer) Name() string { return "ldd" }
func (LDDAnalyzer) Order() int   { return 4 }

func (a LDDAnalyzer) Run(ctx context.Context, ec *engctx.Context, item domain.WorkItem) (domain.Disposition, error) {
	path := string(item)

	if ec.HasTool("ldd") {
		out, err := ec.Runner.Run(ctx, ec.ToolPath("ldd"), path)
		if err != nil {
			ec.Log.Debug(ctx, "ldd_run_failed", "path", path, "error", err)
		} else {
			for _, libPath := range parseLDD(out) {
				ec.Queue.Enqueue(domain.WorkItem(libPath))
				if ec.LoaderConf.Enabled() {
					ec.LoaderConf.AddLibraryDir(filepath.Dir(libPath))
				}
			}
		}
	}

	if err := ec.Copier.Copy(ctx, path, false); err != nil {
		return domain.Continue, err
	}
	return domain.Continue, nil
}

// parseLDD extracts the right-hand-side absolute library path from each
// line of ldd output, dropping virtual-DSO lines and the
// "statically linked" marker (spec.md §4.5).
func parseLDD(output string) []string {
	var paths []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "linux-vdso") {
			continue
		}
		if strings.Contains(line, "statically linked") {
			continue
		}

		var libPath string
		if idx := strings.Index(line, "=>"); idx >= 0 {
			rhs := strings.TrimSpace(line[idx+2:])
			libPath = firstToken(rhs)
		} else if strings.HasPrefix(line, "/") {
			libPath = firstToken(line)
		}

		if libPath != "" && strings.HasPrefix(libPath, "/") {
			paths = append(paths, libPath)
		}
	}
	return paths
}

// firstToken returns the text of s up to (not including) the first " ("
// (the "(0x...)" address annotation), trimmed of surrounding whitespace.
func firstToken(s string) string {
	if idx := strings.Index(s, " ("); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
