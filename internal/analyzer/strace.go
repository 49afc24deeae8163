package analyzer

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// defaultTraceSeconds is the bounded timeout applied when the strace plugin
// does not override it via the `seconds` parameter (spec.md §4.7 step 2).
const defaultTraceSeconds = 3

// stockPathPatterns are built-in directories whose bulk copy would defeat
// minimization; the trace analyzer never bulk-copies a parent directory
// matching one of these (spec.md §4.7).
var stockPathPatterns = domain.NewPathRuleSet(
	"/$",
	"/boot",
	"/home",
	"/sys",
	"/tmp",
	"/usr/lib",
	"/usr",
	"/bin",
	"/sbin",
	"/etc",
	"/var",
	"/proc",
	"/dev",
	"/lib",
)

var execSyscalls = map[string]bool{
	"execve": true, "execveat": true,
}

var dirCandidateSyscalls = map[string]bool{
	"open": true, "openat": true, "mkdir": true, "mkdirat": true,
}

// StraceAnalyzer is C7: it runs a full command vector under a syscall
// tracer, classifies recorded paths, and copies or enqueues them according
// to the active Mode (spec.md §4.7).
type StraceAnalyzer struct{}

func (StraceAnalyzer) Name() string { return "strace" }

// RunVector traces vector and applies its discoveries to ec. It is invoked
// directly by the orchestrator for every user-declared execution, before
// the normal queue drain (spec.md §4.4, §4.8 step 3) — not through the
// Analyzer interface, since it operates on a full argument vector rather
// than a single queued WorkItem.
func (StraceAnalyzer) RunVector(ctx context.Context, ec *engctx.Context, vector []string) error {
	if len(vector) == 0 {
		return nil
	}
	if ec.Traced(vector) {
		return nil
	}
	ec.MarkTraced(vector)

	if !ec.HasTool("strace") {
		ec.Log.Warn(ctx, "strace_unavailable", "vector", vector)
		return ec.Copier.Copy(ctx, vector[0], false)
	}

	seconds := defaultTraceSeconds
	if s, ok := ec.Plugins.Get("strace", "seconds"); ok {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			seconds = n
		}
	}
	mode := ec.Mode
	if m, ok := ec.Plugins.Get("strace", "mode"); ok {
		mode = domain.ParseMode(m)
	}
	showOutput := false
	if s, ok := ec.Plugins.Get("strace", "showoutput"); ok {
		showOutput = s == "true"
	}

	args := append([]string{"-f", "-e", "trace=file", "-s", "4096"}, vector...)
	out, finished, err := ec.Runner.RunTimeout(ctx, time.Duration(seconds)*time.Second, ec.ToolPath("strace"), args...)
	if !finished {
		ec.Log.Debug(ctx, "strace_timeout", "vector", vector, "seconds", seconds)
	} else if err != nil {
		ec.Log.Debug(ctx, "strace_run_failed", "vector", vector, "error", err)
	}
	if showOutput {
		ec.Log.Info(ctx, "strace_output", "vector", vector, "output", out)
	}

	records := parseStraceLog(out)
	applyRecords(ctx, ec, mode, records)

	return ec.Copier.Copy(ctx, vector[0], false)
}

var straceLinePattern = regexp.MustCompile(`^(\w+)\(`)
var quotedStringPattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// parseStraceLog extracts quoted string arguments from each syscall line
// and classifies them per spec.md §4.7 step 4.
func parseStraceLog(log string) []domain.StraceRecord {
	var records []domain.StraceRecord
	for _, line := range strings.Split(log, "\n") {
		m := straceLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		syscallName := m[1]

		var kind domain.StraceKind
		switch {
		case execSyscalls[syscallName]:
			kind = domain.StraceExec
		case dirCandidateSyscalls[syscallName]:
			kind = domain.StraceDirCandidate
		default:
			kind = domain.StraceGeneric
		}

		for _, qm := range quotedStringPattern.FindAllStringSubmatch(line, -1) {
			records = append(records, domain.StraceRecord{Path: qm[1], Kind: kind})
		}
	}
	return records
}

// validPath applies spec.md §4.7 step 5's validation: non-empty, not /, .,
// .., does not start with ! or -, exists as a regular file or directory.
func validPath(ctx context.Context, fs domain.FS, p string) bool {
	if p == "" || p == "/" || p == "." || p == ".." {
		return false
	}
	if strings.HasPrefix(p, "!") || strings.HasPrefix(p, "-") {
		return false
	}
	info, err := fs.Stat(ctx, p)
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().IsRegular()
}

func isLibLike(path string) bool {
	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}
	return strings.HasPrefix(base, "lib") || strings.HasSuffix(base, ".so")
}

func isStockParent(path string) bool {
	parent := path
	if idx := strings.LastIndex(path, "/"); idx > 0 {
		parent = path[:idx]
	} else {
		parent = "/"
	}
	return stockPathPatterns.Matches(parent)
}

func dirOf(path string) string {
	if idx := strings.LastIndex(path, "/"); idx > 0 {
		return path[:idx]
	}
	return "/"
}

// applyRecords implements the §4.7 mode policy table: every mode copies
// plain files (routing lib-like names to ldd instead); slim/regular/loose
// additionally bulk-copy open/mkdir directory candidates; regular/loose
// additionally copy the parent of opened files outside stock paths; loose
// additionally copies the parent of every touched path outside stock paths.
func applyRecords(ctx context.Context, ec *engctx.Context, mode domain.Mode, records []domain.StraceRecord) {
	for _, rec := range records {
		if !validPath(ctx, ec.FS, rec.Path) {
			continue
		}

		switch rec.Kind {
		case domain.StraceExec:
			ec.Queue.Enqueue(domain.WorkItem(rec.Path))

		case domain.StraceDirCandidate:
			isDir, _ := ec.FS.IsDir(ctx, rec.Path)
			if isDir && mode >= domain.ModeSlim {
				if err := ec.Copier.Copy(ctx, rec.Path, true); err != nil {
					ec.Log.Warn(ctx, "strace_dir_copy_failed", "path", rec.Path, "error", err)
				}
				continue
			}
			handlePlainFile(ctx, ec, rec.Path)
			if mode >= domain.ModeRegular && !isStockParent(rec.Path) {
				if err := ec.Copier.Copy(ctx, dirOf(rec.Path), false); err != nil {
					ec.Log.Warn(ctx, "strace_parent_copy_failed", "path", rec.Path, "error", err)
				}
			}

		case domain.StraceGeneric:
			handlePlainFile(ctx, ec, rec.Path)
			if mode >= domain.ModeLoose && !isStockParent(rec.Path) {
				if err := ec.Copier.Copy(ctx, dirOf(rec.Path), false); err != nil {
					ec.Log.Warn(ctx, "strace_parent_copy_failed", "path", rec.Path, "error", err)
				}
			}
		}
	}
}

// handlePlainFile routes a lib-like name to ldd analysis instead of a
// direct copy, else copies it non-recursively (spec.md §4.7 mode table).
func handlePlainFile(ctx context.Context, ec *engctx.Context, path string) {
	if isLibLike(path) {
		ec.Queue.Enqueue(domain.WorkItem(path))
		return
	}
	isDir, _ := ec.FS.IsDir(ctx, path)
	if isDir {
		return
	}
	if err := ec.Copier.Copy(ctx, path, false); err != nil {
		ec.Log.Warn(ctx, "strace_file_copy_failed", "path", path, "error", err)
	}
}
