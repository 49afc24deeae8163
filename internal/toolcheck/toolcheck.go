// Package toolcheck performs the external-tool presence probe spec.md §5
// requires once at startup: collaborator tools are looked up on PATH, and
// their absence either disables a dependent analyzer (optional tools) or
// fails startup (required tools).
package toolcheck

import (
	"github.com/rootcut/rootcut/internal/domain"
)

// optional tools disable their dependent analyzer when absent, rather than
// failing startup (spec.md §5, §7 rule 2).
var optional = map[string]bool{
	"strace": true,
	"file":   true,
	"rsync":  true,
}

// required tools fail startup when absent and the feature that needs them
// is in use (spec.md §7 rule 1).
var required = []string{"ldd", "ldconfig", "tar"}

// Probe resolves every collaborator tool on PATH via runner, returning a
// map from tool name to resolved path ("" when absent). needLdconfig and
// needTar gate whether those two required tools are actually needed this
// run (loader-config rewriting and tarball emission are both optional
// features), so a missing ldconfig/tar only fails startup when the
// corresponding feature is requested.
func Probe(runner domain.Runner, needLdconfig, needTar bool) (map[string]string, error) {
	paths := make(map[string]string)

	for _, tool := range []string{"strace", "file", "rsync", "ldd", "ldconfig", "tar"} {
		if resolved, err := runner.LookPath(tool); err == nil {
			paths[tool] = resolved
		}
	}

	if paths["ldd"] == "" {
		return paths, domain.ErrMissingTool{Tool: "ldd", Reason: "dynamic-library closure analysis requires ldd"}
	}
	if needLdconfig && paths["ldconfig"] == "" {
		return paths, domain.ErrMissingTool{Tool: "ldconfig", Reason: "loader-config rewriting was requested but ldconfig is absent"}
	}
	if needTar && paths["tar"] == "" {
		return paths, domain.ErrMissingTool{Tool: "tar", Reason: "tarball emission was requested but tar is absent"}
	}

	return paths, nil
}

// Active reports whether tool was resolved, used by analyzers to decide
// whether to run it at all.
func Active(paths map[string]string, tool string) bool {
	return paths[tool] != ""
}
