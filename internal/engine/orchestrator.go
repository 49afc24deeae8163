package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rootcut/rootcut/internal/analyzer"
	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// State is a position in the orchestrator's run-scoped state machine
// (spec.md §4.8: init → seed → drain → finalize → done, with a teardown
// branch on fatal error — no backward transitions).
type State int

const (
	StateInit State = iota
	StateSeed
	StateDrain
	StateFinalize
	StateDone
	StateTeardown
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSeed:
		return "seed"
	case StateDrain:
		return "drain"
	case StateFinalize:
		return "finalize"
	case StateDone:
		return "done"
	case StateTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// RunOpts configures a single orchestration run.
type RunOpts struct {
	OutputRoot  string
	Commands    []domain.WorkItem
	Includes    []string
	Executions  [][]string // user-declared executions to trace before the drain (spec.md §4.8 step 3)
	TarDest     string     // "" disables tarball emission; "-" means stdout
	RetainTmp   bool
}

// Orchestrator is C8: it drives Context through its state machine from a
// set of seed commands to a finalized output tree, grounded on the
// teacher's two-phase prepare/commit executor structure adapted to
// seed/drain/finalize.
type Orchestrator struct {
	ctx   *engctx.Context
	chain []analyzer.Analyzer
	runID string
}

// New creates an orchestrator over ec, using the default analyzer chain.
func New(ec *engctx.Context) *Orchestrator {
	return &Orchestrator{ctx: ec, chain: analyzer.DefaultChain(), runID: uuid.NewString()}
}

// Run executes the full state machine and returns the aggregate of
// non-fatal errors encountered, or a fatal error on a startup failure.
func (o *Orchestrator) Run(ctx context.Context, opts RunOpts) error {
	fatal := func(from State, err error) error {
		o.ctx.Log.Error(ctx, "orchestrator_fatal", "state", from.String(), "error", err)
		o.ctx.Log.Info(ctx, "orchestrator_state", "state", StateTeardown.String(), "run_id", o.runID)
		return err
	}

	state := StateInit
	o.ctx.Log.Info(ctx, "orchestrator_state", "state", state.String(), "run_id", o.runID)

	if err := o.init(ctx, opts); err != nil {
		return fatal(state, err)
	}

	state = StateSeed
	o.ctx.Log.Info(ctx, "orchestrator_state", "state", state.String(), "run_id", o.runID)
	if err := o.seed(ctx, opts); err != nil {
		return fatal(state, err)
	}

	state = StateDrain
	o.ctx.Log.Info(ctx, "orchestrator_state", "state", state.String(), "run_id", o.runID)
	drainErr := analyzer.Run(ctx, o.ctx, o.chain)
	if drainErr != nil {
		o.ctx.Log.Warn(ctx, "orchestrator_drain_errors", "error", drainErr)
	}

	state = StateFinalize
	o.ctx.Log.Info(ctx, "orchestrator_state", "state", state.String(), "run_id", o.runID)
	if err := o.finalize(ctx, opts); err != nil {
		return fatal(state, err)
	}

	state = StateDone
	o.ctx.Log.Info(ctx, "orchestrator_state", "state", state.String(), "run_id", o.runID)
	return drainErr
}

// init validates and creates OutputRoot and its tmp subdirectory (spec.md
// §4.8 step 1).
func (o *Orchestrator) init(ctx context.Context, opts RunOpts) error {
	root := filepath.Clean(opts.OutputRoot)
	if err := validateOutputRoot(root); err != nil {
		return err
	}
	if err := o.ctx.FS.MkdirAll(ctx, root, 0o755); err != nil {
		return domain.ErrWriteFailed{Operation: "mkdir_output_root", Path: root, Err: err}
	}
	if err := o.ctx.FS.MkdirAll(ctx, filepath.Join(root, "tmp"), 0o755); err != nil {
		return domain.ErrWriteFailed{Operation: "mkdir_tmp", Path: root, Err: err}
	}
	return nil
}

// dangerousRoots mirrors spec.md §3's OutputRoot invariant: never /, /etc,
// /var, /sys, /proc.
var dangerousRoots = map[string]bool{
	"/": true, "/etc": true, "/var": true, "/sys": true, "/proc": true,
}

func validateOutputRoot(root string) error {
	if dangerousRoots[root] {
		return domain.ErrInvalidOutputRoot{Path: root, Reason: "refusing a protected system path as OutputRoot"}
	}
	parent := filepath.Dir(root)
	if parent == root {
		return domain.ErrInvalidOutputRoot{Path: root, Reason: "output root has no valid parent"}
	}
	return nil
}

// seed copies forced Includes, then traces every user-declared execution so
// that execve-discovered executables enter the queue in execution order
// before the normal drain begins (spec.md §4.8 steps 2-3).
func (o *Orchestrator) seed(ctx context.Context, opts RunOpts) error {
	for _, inc := range opts.Includes {
		if err := o.ctx.Copier.Copy(ctx, inc, true); err != nil {
			o.ctx.Log.Warn(ctx, "seed_include_failed", "path", inc, "error", err)
		}
	}

	for _, cmd := range opts.Commands {
		o.ctx.Queue.Enqueue(cmd)
	}

	tracer := analyzer.StraceAnalyzer{}
	for _, vector := range opts.Executions {
		if err := tracer.RunVector(ctx, o.ctx, vector); err != nil {
			o.ctx.Log.Warn(ctx, "seed_trace_failed", "vector", vector, "error", err)
		}
	}

	return nil
}

// finalize flushes the loader config (if enabled) and emits the tarball
// (if requested) — spec.md §4.8 steps 5-6.
func (o *Orchestrator) finalize(ctx context.Context, opts RunOpts) error {
	if o.ctx.LoaderConf.Enabled() {
		refresh := func(ctx context.Context, root string) error {
			if !o.ctx.HasTool("ldconfig") {
				return nil
			}
			_, err := o.ctx.Runner.Run(ctx, o.ctx.ToolPath("ldconfig"), "-r", root)
			return err
		}
		if err := o.ctx.LoaderConf.Flush(ctx, opts.OutputRoot, refresh); err != nil {
			o.ctx.Log.Warn(ctx, "finalize_loaderconf_failed", "error", err)
		}
	}

	if opts.TarDest != "" {
		if err := o.archive(ctx, opts.OutputRoot, opts.TarDest); err != nil {
			return err
		}
	}

	return nil
}

// archive invokes the tar collaborator to produce a POSIX tarball rooted at
// OutputRoot's contents (spec.md §4.8 step 6, §6 "an archiver producing
// POSIX tarballs").
func (o *Orchestrator) archive(ctx context.Context, root, dest string) error {
	if !o.ctx.HasTool("tar") {
		return domain.ErrMissingTool{Tool: "tar", Reason: "tarball emission requested but tar is absent"}
	}

	args := []string{"-C", root, "-cf", dest, "."}
	if _, err := o.ctx.Runner.Run(ctx, o.ctx.ToolPath("tar"), args...); err != nil {
		return fmt.Errorf("archive %q: %w", root, err)
	}
	return nil
}
