package ui

import (
	"strings"

	"github.com/fatih/color"
)

// Highlighter colours the plain-text report for terminals
type Highlighter struct {
	header  *color.Color
	rule    *color.Color
	success *color.Color
	failure *color.Color
}

// NewHighlighter returns a Highlighter. With enabled false the report passes through unchanged.
func NewHighlighter(enabled bool) *Highlighter {
	h := &Highlighter{
		header:  color.New(color.FgCyan, color.Bold),
		rule:    color.New(color.FgCyan),
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{h.header, h.rule, h.success, h.failure} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

// Highlight colours section headers, import failures and the summary line
func (h *Highlighter) Highlight(report string) string {
	lines := strings.Split(report, "\n")
	for i, line := range lines {
		switch {
		case isRule(line):
			lines[i] = h.rule.Sprint(line)
		case i+1 < len(lines) && isRule(lines[i+1]):
			if strings.Contains(line, "FAILED") {
				lines[i] = h.failure.Sprint(line)
			} else {
				lines[i] = h.header.Sprint(line)
			}
		case strings.HasPrefix(line, "OK:"):
			lines[i] = h.success.Sprint(line)
		case strings.HasPrefix(line, "FAILED:"):
			lines[i] = h.failure.Sprint(line)
		case strings.HasPrefix(strings.TrimSpace(line), "IMPORT FAILED"):
			lines[i] = h.failure.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}

func isRule(line string) bool {
	if line == "" {
		return false
	}
	return strings.Trim(line, "=") == "" || strings.Trim(line, "-") == ""
}
