package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const plainReport = "STATISTICS\n==========\nTests failed: 1\nFAILED: 0 succeeded, 1 failed, 0 skipped\n"

func TestHighlightDisabled(t *testing.T) {
	assert.Equal(t, plainReport, NewHighlighter(false).Highlight(plainReport))
}

func TestHighlightEnabled(t *testing.T) {
	out := NewHighlighter(true).Highlight(plainReport)

	assert.NotEqual(t, plainReport, out)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "STATISTICS")
	assert.Contains(t, out, "\nTests failed: 1\n", "plain lines are untouched")
}

func TestIsRule(t *testing.T) {
	assert.True(t, isRule("====="))
	assert.True(t, isRule("---"))
	assert.False(t, isRule(""))
	assert.False(t, isRule("=-="))
	assert.False(t, isRule("  |_ test_x"))
}
