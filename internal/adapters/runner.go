package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// OSRunner implements the domain.Runner port over os/exec. Every collaborator
// tool invocation in rootcut (ldd, file, ldconfig, strace, tar, rsync) goes
// through this adapter.
type OSRunner struct{}

// NewOSRunner creates an OS-backed process runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes name with args and returns combined stdout+stderr, erroring on
// non-zero exit.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s %v: %w: %s", name, args, err, out.String())
	}
	return out.String(), nil
}

// RunTimeout executes name with args in its own process group so the entire
// group can be killed with SIGKILL if timeout elapses (spec.md §4.7, §5).
// ok is false when the process was killed on timeout.
func (r *OSRunner) RunTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, bool, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		return "", false, fmt.Errorf("start %s %v: %w", name, args, err)
	}

	waitErr := cmd.Wait()
	if runCtx.Err() == context.DeadlineExceeded {
		if cmd.Process != nil {
			_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		}
		return out.String(), false, nil
	}
	if waitErr != nil {
		return out.String(), true, fmt.Errorf("%s %v: %w", name, args, waitErr)
	}
	return out.String(), true, nil
}

// LookPath resolves name on PATH, mirroring exec.LookPath.
func (r *OSRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
