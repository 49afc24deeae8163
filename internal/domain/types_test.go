package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rootcut/rootcut/internal/domain"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, domain.ModeSkinny, domain.ParseMode(""))
	assert.Equal(t, domain.ModeSkinny, domain.ParseMode("default"))
	assert.Equal(t, domain.ModeSkinny, domain.ParseMode("bogus"))
	assert.Equal(t, domain.ModeSlim, domain.ParseMode("slim"))
	assert.Equal(t, domain.ModeRegular, domain.ParseMode("Regular"))
	assert.Equal(t, domain.ModeLoose, domain.ParseMode("loose"))
}

func TestModeOrdering(t *testing.T) {
	assert.Less(t, int(domain.ModeSkinny), int(domain.ModeSlim))
	assert.Less(t, int(domain.ModeSlim), int(domain.ModeRegular))
	assert.Less(t, int(domain.ModeRegular), int(domain.ModeLoose))
}

func TestPathRuleSet_Matches(t *testing.T) {
	rs := domain.NewPathRuleSet("/usr/share", "/var/log")
	assert.True(t, rs.Matches("/usr/share/doc/x"))
	assert.True(t, rs.Matches("/var/log/syslog"))
	assert.False(t, rs.Matches("/etc/passwd"))
}

func TestIsProtected(t *testing.T) {
	assert.True(t, domain.IsProtected("/"))
	assert.True(t, domain.IsProtected("/proc/1/status"))
	assert.True(t, domain.IsProtected("/dev/null"))
	assert.True(t, domain.IsProtected("/sys/class"))
	assert.False(t, domain.IsProtected("/usr/bin/bash"))
}

func TestOrderedStringSet_PreservesFirstOccurrence(t *testing.T) {
	s := domain.NewOrderedStringSet()
	assert.True(t, s.Add("/lib"))
	assert.True(t, s.Add("/usr/lib"))
	assert.False(t, s.Add("/lib")) // duplicate, first occurrence wins position
	assert.Equal(t, []string{"/lib", "/usr/lib"}, s.Items())
	assert.Equal(t, 2, s.Len())
}

func TestDisposition_String(t *testing.T) {
	assert.Equal(t, "continue", domain.Continue.String())
	assert.Equal(t, "stop", domain.Stop.String())
}
