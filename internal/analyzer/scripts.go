package analyzer

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// envLauncher is the portable env-launcher binary name (`/usr/bin/env`),
// which re-dispatches to a program named in its own argument rather than
// directly in the shebang's interpreter slot.
const envLauncher = "env"

// recognizedInterpreters is the set scripts.includefolders enrichment
// applies to (spec.md §4.6); interpreters outside it get a warning instead.
var recognizedInterpreters = map[string]bool{
	"bash":      true,
	"sh":        true,
	"perl":      true,
	"python":    true,
	"python3":   true,
	envLauncher: true,
}

// ScriptAnalyzer classifies the command via the filesystem-typing tool; if
// it is a script, parses the shebang, enqueues the interpreter (and the
// env-launched program, if any), and optionally enriches with the
// interpreter's standard library search paths (spec.md §4.6).
type ScriptAnalyzer struct{}

func (ScriptAnalyzer) Name() string { return "scripts" }
func (ScriptAnalyzer) Order() int   { return 5 }

func (a ScriptAnalyzer) Run(ctx context.Context, ec *engctx.Context, item domain.WorkItem) (domain.Disposition, error) {
	path := string(item)
	if !ec.HasTool("file") {
		return domain.Continue, nil
	}

	out, err := ec.Runner.Run(ctx, ec.ToolPath("file"), path)
	if err != nil {
		return domain.Continue, nil
	}
	if !strings.Contains(out, "script") {
		return domain.Continue, nil
	}

	shebang, err := a.readShebang(ctx, ec, path)
	if err != nil || shebang == "" {
		return domain.Continue, nil
	}

	fields := strings.Fields(shebang)
	if len(fields) == 0 {
		return domain.Continue, nil
	}
	interpreter := fields[0]
	ec.Queue.Enqueue(domain.WorkItem(interpreter))

	base := filepath.Base(interpreter)

	if base == envLauncher && len(fields) > 1 {
		program := fields[1]
		if resolved, err := ec.Runner.LookPath(program); err == nil {
			ec.Queue.Enqueue(domain.WorkItem(resolved))
		} else {
			ec.Queue.Enqueue(domain.WorkItem(program))
		}
	}

	if !recognizedInterpreters[base] {
		ec.Log.Warn(ctx, "scripts_unrecognized_interpreter", "interpreter", interpreter, "path", path)
		return domain.Stop, nil
	}

	if includeFolders, _ := ec.Plugins.Get("scripts", "includefolders"); includeFolders == "true" {
		a.enqueueSearchPaths(ctx, ec, base, interpreter)
	}

	return domain.Stop, nil
}

// readShebang reads the first line of path and returns the interpreter
// command line if it begins with "#!", stripped of the marker.
func (a ScriptAnalyzer) readShebang(ctx context.Context, ec *engctx.Context, path string) (string, error) {
	data, err := ec.FS.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	if !scanner.Scan() {
		return "", nil
	}
	first := scanner.Text()
	if !strings.HasPrefix(first, "#!") {
		return "", nil
	}
	return strings.TrimSpace(strings.TrimPrefix(first, "#!")), nil
}

// enqueueSearchPaths invokes the interpreter to list its standard library
// search paths (Perl's @INC, Python's sys.path) and enqueues the entries
// that are absolute and outside /home (spec.md §4.6).
func (a ScriptAnalyzer) enqueueSearchPaths(ctx context.Context, ec *engctx.Context, base, interpreter string) {
	var out string
	var err error
	switch base {
	case "perl":
		out, err = ec.Runner.Run(ctx, interpreter, "-e", "print join(\"\\n\", @INC)")
	case "python", "python3":
		out, err = ec.Runner.Run(ctx, interpreter, "-c", "import sys; print('\\n'.join(sys.path))")
	default:
		return
	}
	if err != nil {
		ec.Log.Debug(ctx, "scripts_searchpath_failed", "interpreter", interpreter, "error", err)
		return
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !filepath.IsAbs(line) {
			continue
		}
		if strings.HasPrefix(line, "/home") {
			continue
		}
		ec.Queue.Enqueue(domain.WorkItem(line))
	}
}
