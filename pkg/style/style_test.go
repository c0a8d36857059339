package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpersKeepText(t *testing.T) {
	assert.Contains(t, Bold("Hello World"), "Hello World")
	assert.Contains(t, Indent("Hello", 0), "Hello")
	assert.True(t, strings.HasPrefix(Indent("Hello", 2), "    "))
}

func TestStepStyle(t *testing.T) {
	assert.Equal(t, SymlinkStyle.Render("x"), StepStyle("link-alt-profile").Render("x"))
	assert.Equal(t, ArchiveStyle.Render("x"), StepStyle("build-archive").Render("x"))
	assert.Equal(t, CopyStyle.Render("x"), StepStyle("deploy-profile").Render("x"))
	assert.Equal(t, MutedStyle.Render("x"), StepStyle("unknown").Render("x"))
}

func TestBadge(t *testing.T) {
	for _, s := range []Status{StatusDone, StatusPlanned, StatusFailed, StatusSkipped} {
		assert.Contains(t, Badge(s), string(s))
	}
}
