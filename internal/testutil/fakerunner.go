// Package testutil provides a scriptable domain.Runner fake so analyzer and
// engine tests can inject canned ldd/file/strace output without shelling
// out to real collaborator tools, grounded on the teacher's in-memory fakes
// style (internal/adapters/memfs.go).
package testutil

import (
	"context"
	"fmt"
	"time"
)

// FakeRunner implements domain.Runner by returning pre-scripted output
// keyed by the name argument of Run/RunTimeout. Analyzers pass the resolved
// tool path there (e.g. "/usr/bin/ldd"), so those keys are paths.
type FakeRunner struct {
	// Outputs maps a Run/RunTimeout name argument to the combined output it
	// should return.
	Outputs map[string]string
	// Errors maps a Run/RunTimeout name argument to the error to return.
	Errors map[string]error
	// Paths maps a bare tool name to its resolved LookPath location; a
	// missing entry means LookPath fails (tool considered absent).
	Paths map[string]string
	// TimeoutTools names the RunTimeout name arguments whose call should
	// report a timeout (ok=false) rather than a normal exit.
	TimeoutTools map[string]bool

	// Calls records every invocation for assertions.
	Calls [][]string
}

// NewFakeRunner creates an empty FakeRunner; populate its maps before use.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs:      make(map[string]string),
		Errors:       make(map[string]error),
		Paths:        make(map[string]string),
		TimeoutTools: make(map[string]bool),
	}
}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if err, ok := f.Errors[name]; ok {
		return f.Outputs[name], err
	}
	return f.Outputs[name], nil
}

func (f *FakeRunner) RunTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, bool, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if f.TimeoutTools[name] {
		return f.Outputs[name], false, nil
	}
	if err, ok := f.Errors[name]; ok {
		return f.Outputs[name], true, err
	}
	return f.Outputs[name], true, nil
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	if path, ok := f.Paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%s: not found", name)
}
