// Package rules bundles the three path-rule sets spec.md §3 defines
// (Excluded, Included, Protected) and the precedence the orchestrator
// applies across them.
package rules

import "github.com/rootcut/rootcut/internal/domain"

// Set bundles the Excluded and Included PathRuleSets for a run. Protected
// paths are not user-configurable and are checked via domain.IsProtected.
type Set struct {
	Excluded *domain.PathRuleSet
	Included *domain.PathRuleSet
}

// New builds a rule Set. If includeCommon is true, the default Excluded
// seed (/sys, /tmp, /dev, /proc) is included ahead of userExcludes, matching
// spec.md §6's --no-exclude-common default-enabled behavior.
func New(userExcludes, userIncludes []string, includeCommon bool) *Set {
	var excludePatterns []string
	if includeCommon {
		excludePatterns = append(excludePatterns, domain.DefaultExcluded...)
	}
	excludePatterns = append(excludePatterns, userExcludes...)

	return &Set{
		Excluded: domain.NewPathRuleSet(excludePatterns...),
		Included: domain.NewPathRuleSet(userIncludes...),
	}
}

// ShouldSkip reports whether path must be skipped during analyzer-time
// copying: always true for protected paths, true for Excluded paths.
// Per spec.md §9's resolved open question, Included is an eager
// startup-copy mechanism only — it does NOT suppress Excluded during
// analysis, so it plays no part in this check.
func (s *Set) ShouldSkip(path string) bool {
	if domain.IsProtected(path) {
		return true
	}
	return s.Excluded.Matches(path)
}
