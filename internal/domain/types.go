// Package domain holds the value types, ports, and error taxonomy shared
// across rootcut's closure-discovery engine.
package domain

import (
	"regexp"
	"strings"
)

// WorkItem names an executable or absolute path pending analysis (spec.md §3).
type WorkItem string

// Disposition is the verdict an Analyzer returns for a WorkItem: whether the
// plugin pipeline should continue to the next analyzer for this item, or
// stop because this analyzer already enqueued a replacement (spec.md §4.4).
type Disposition int

const (
	// Continue lets the next analyzer in the chain run.
	Continue Disposition = iota
	// Stop skips remaining analyzers for this queue item.
	Stop
)

func (d Disposition) String() string {
	if d == Stop {
		return "stop"
	}
	return "continue"
}

// Mode controls how aggressively the trace analyzer copies directory
// contents (spec.md §3, §4.7).
type Mode int

const (
	// ModeSkinny copies only plain files passed by the tracer; "default" is
	// a permanent alias for this mode (spec.md §9 open question).
	ModeSkinny Mode = iota
	// ModeSlim additionally bulk-copies open/mkdir directory candidates.
	ModeSlim
	// ModeRegular additionally copies the parent of any opened file that
	// lies outside the stock-path set.
	ModeRegular
	// ModeLoose additionally copies the parent directory of every path the
	// trace touched, not only opened files.
	ModeLoose
)

// ParseMode parses a mode name, defaulting unknown/empty input to skinny.
// "default" is a permanent alias for skinny (spec.md §9).
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slim":
		return ModeSlim
	case "regular":
		return ModeRegular
	case "loose":
		return ModeLoose
	case "skinny", "default", "":
		return ModeSkinny
	default:
		return ModeSkinny
	}
}

func (m Mode) String() string {
	switch m {
	case ModeSlim:
		return "slim"
	case ModeRegular:
		return "regular"
	case ModeLoose:
		return "loose"
	default:
		return "skinny"
	}
}

// StraceKind classifies a path literal extracted from tracer output
// (spec.md §3 StraceRecord).
type StraceKind int

const (
	// StraceGeneric is a plain file access (read/write/stat).
	StraceGeneric StraceKind = iota
	// StraceExec is a path named by an exec-family syscall.
	StraceExec
	// StraceDirCandidate is a path named by an open or mkdir syscall; it may
	// turn out to be a directory or a plain file.
	StraceDirCandidate
)

// StraceRecord is a single classified path literal from a trace run.
type StraceRecord struct {
	Path string
	Kind StraceKind
}

// PathRuleSet is an ordered list of regular-expression prefixes, matched
// against an absolute path by checking whether the path has any compiled
// pattern as a prefix match (spec.md §3 PathRule).
type PathRuleSet struct {
	patterns []*regexp.Regexp
	raw      []string
}

// NewPathRuleSet compiles an ordered list of regex prefixes. Patterns that
// fail to compile are skipped; callers that need to surface a compile error
// should use CompilePathRuleSet instead.
func NewPathRuleSet(patterns ...string) *PathRuleSet {
	rs, _ := CompilePathRuleSet(patterns...)
	return rs
}

// CompilePathRuleSet compiles an ordered list of regex prefixes, returning
// the first compile error encountered (if any) alongside a rule set built
// from the patterns that did compile.
func CompilePathRuleSet(patterns ...string) (*PathRuleSet, error) {
	rs := &PathRuleSet{}
	var firstErr error
	for _, p := range patterns {
		re, err := regexp.Compile("^" + p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rs.patterns = append(rs.patterns, re)
		rs.raw = append(rs.raw, p)
	}
	return rs, firstErr
}

// Append adds additional raw patterns to the set, ignoring any that fail to compile.
func (rs *PathRuleSet) Append(patterns ...string) {
	for _, p := range patterns {
		re, err := regexp.Compile("^" + p)
		if err != nil {
			continue
		}
		rs.patterns = append(rs.patterns, re)
		rs.raw = append(rs.raw, p)
	}
}

// Matches reports whether path matches any pattern in the set.
func (rs *PathRuleSet) Matches(path string) bool {
	if rs == nil {
		return false
	}
	for _, re := range rs.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Patterns returns the raw pattern strings, in order.
func (rs *PathRuleSet) Patterns() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.raw))
	copy(out, rs.raw)
	return out
}

// DefaultExcluded is the default Excluded seed, active unless
// --no-exclude-common disables it (spec.md §3, §6).
var DefaultExcluded = []string{"/sys", "/tmp", "/dev", "/proc"}

// ProtectedPaths are always skipped regardless of user rules (spec.md §3).
var ProtectedPaths = []string{"/", "/proc/", "/dev/", "/sys/"}

// IsProtected reports whether path is one of the always-skipped protected paths.
func IsProtected(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range ProtectedPaths[1:] {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// OrderedStringSet preserves first-occurrence order while de-duplicating,
// the shape spec.md requires of both the LoaderConfig lines (§3, §4.8) and
// the work queue's membership test (§3 WorkItem, §4.3).
type OrderedStringSet struct {
	order   []string
	present map[string]struct{}
}

// NewOrderedStringSet creates an empty ordered set.
func NewOrderedStringSet() *OrderedStringSet {
	return &OrderedStringSet{present: make(map[string]struct{})}
}

// Add appends s if not already present, returning true if it was newly added.
func (s *OrderedStringSet) Add(v string) bool {
	if _, ok := s.present[v]; ok {
		return false
	}
	s.present[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Has reports whether v is already present.
func (s *OrderedStringSet) Has(v string) bool {
	_, ok := s.present[v]
	return ok
}

// Items returns the values in first-occurrence order.
func (s *OrderedStringSet) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct values held.
func (s *OrderedStringSet) Len() int {
	return len(s.order)
}
