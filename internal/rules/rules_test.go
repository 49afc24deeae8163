package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rootcut/rootcut/internal/rules"
)

func TestShouldSkip_DefaultExcludedActive(t *testing.T) {
	s := rules.New(nil, nil, true)
	assert.True(t, s.ShouldSkip("/tmp/scratch"))
	assert.True(t, s.ShouldSkip("/sys/class"))
	assert.False(t, s.ShouldSkip("/usr/bin/bash"))
}

func TestShouldSkip_NoExcludeCommonDisablesDefaults(t *testing.T) {
	s := rules.New(nil, nil, false)
	assert.False(t, s.ShouldSkip("/tmp/scratch"))
}

func TestShouldSkip_UserExcludes(t *testing.T) {
	s := rules.New([]string{"/usr/share"}, nil, true)
	assert.True(t, s.ShouldSkip("/usr/share/doc/readme"))
	assert.False(t, s.ShouldSkip("/usr/bin/bash"))
}

func TestShouldSkip_ProtectedAlwaysWinsOverInclude(t *testing.T) {
	s := rules.New(nil, []string{"/proc"}, true)
	assert.True(t, s.ShouldSkip("/proc/1/status"))
}

func TestShouldSkip_IncludeDoesNotSuppressExcluded(t *testing.T) {
	// Per spec.md §9's resolved open question: Included is an eager
	// startup-copy mechanism only, it never overrides Excluded here.
	s := rules.New([]string{"/usr/share"}, []string{"/usr/share/doc"}, true)
	assert.True(t, s.ShouldSkip("/usr/share/doc/readme"))
}
