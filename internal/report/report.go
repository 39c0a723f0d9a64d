// Package report renders a run result as text and derives the exit status.
package report

import (
	"fmt"
	"strings"
	"time"

	"clinic/internal/domain"
	"clinic/internal/errors"
)

// Section headers. Downstream tooling matches on these strings.
const (
	HeaderDetails    = "TEST RUN DETAILS"
	HeaderStatistics = "STATISTICS"
	HeaderModules    = "MODULES"
	HeaderSucceeded  = "TESTS SUCCEEDED"
	HeaderFailed     = "TESTS FAILED"
)

// Flag letters used to label skip reasons
const (
	testFlagExclude   = "-e"
	testFlagInclude   = "-i"
	moduleFlagExclude = "-E"
	moduleFlagInclude = "-I"
)

// ExitStatus is 0 when no test failed. Import failures and skips do not count.
func ExitStatus(res *domain.Result) int {
	if len(res.TestsFailed) > 0 {
		return errors.ExitTestFailures
	}
	return errors.ExitSuccess
}

// Render formats res for the given verbosity. Level 0 is the summary line, 1 adds STATISTICS
// and 2 adds TEST RUN DETAILS. Tracebacks are printed when the records carry them.
func Render(res *domain.Result, verbosity int) string {
	var b strings.Builder
	if verbosity >= 2 {
		writeDetails(&b, res)
	}
	if verbosity >= 1 {
		writeStatistics(&b, res)
	}
	b.WriteString(Summary(res))
	b.WriteString("\n")
	return b.String()
}

// Summary returns the one-line pass/fail summary
func Summary(res *domain.Result) string {
	status := "OK"
	if ExitStatus(res) != errors.ExitSuccess {
		status = "FAILED"
	}
	line := fmt.Sprintf("%s: %d succeeded, %d failed, %d skipped",
		status, len(res.TestsSucceeded), len(res.TestsFailed), len(res.TestsSkipped))

	if n := len(res.ImportFailures()); n > 0 {
		line += fmt.Sprintf("; %d module(s) failed to import (not counted in exit status)", n)
	}
	if dryRun(res) {
		line += " [dry run]"
	}
	return line
}

// TestSkipLabel names a test skip reason after its command-line flag
func TestSkipLabel(reason domain.Reason) string {
	return skipLabel(reason, testFlagExclude, testFlagInclude)
}

// ModuleSkipLabel names a module skip reason after its command-line flag
func ModuleSkipLabel(reason domain.Reason) string {
	return skipLabel(reason, moduleFlagExclude, moduleFlagInclude)
}

func skipLabel(reason domain.Reason, excludeFlag, includeFlag string) string {
	switch reason {
	case domain.ReasonMatchedExclude:
		return "matched " + excludeFlag
	case domain.ReasonNotIncluded:
		return "failed to match " + includeFlag
	default:
		return string(reason)
	}
}

func writeStatistics(b *strings.Builder, res *domain.Result) {
	header(b, HeaderStatistics, "=")

	loaded := len(res.Modules) - len(res.ImportFailures())
	stats := []struct {
		label string
		count int
	}{
		{"Test modules found", len(res.Modules) + len(res.ModulesSkipped)},
		{"Test modules loaded", loaded},
		{"Test modules failed to import", len(res.ImportFailures())},
		{"Test modules skipped (" + ModuleSkipLabel(domain.ReasonMatchedExclude) + ")", len(res.SkippedModules(domain.ReasonMatchedExclude))},
		{"Test modules skipped (" + ModuleSkipLabel(domain.ReasonNotIncluded) + ")", len(res.SkippedModules(domain.ReasonNotIncluded))},
		{"Tests found", res.TestCount()},
		{"Tests succeeded", len(res.TestsSucceeded)},
		{"Tests failed", len(res.TestsFailed)},
		{"Tests skipped (" + TestSkipLabel(domain.ReasonMatchedExclude) + ")", len(res.SkippedTests(domain.ReasonMatchedExclude))},
		{"Tests skipped (" + TestSkipLabel(domain.ReasonNotIncluded) + ")", len(res.SkippedTests(domain.ReasonNotIncluded))},
	}
	for _, s := range stats {
		fmt.Fprintf(b, "%s: %d\n", s.label, s.count)
	}
	fmt.Fprintf(b, "Run time: %s\n\n", res.Duration.Round(time.Millisecond))
}

func writeDetails(b *strings.Builder, res *domain.Result) {
	header(b, HeaderDetails, "=")

	if len(res.Modules) > 0 {
		header(b, HeaderModules, "-")
		for _, m := range res.Modules {
			status := "loaded"
			if m.Status == domain.ModuleImportFailed {
				status = "IMPORT FAILED"
			}
			fmt.Fprintf(b, "  %-14s %s (%s)\n", status, m.Name, m.Path)
			if m.Status == domain.ModuleImportFailed {
				writeFailure(b, m.Error, m.Traceback)
			}
		}
		b.WriteString("\n")
	}

	for _, reason := range []domain.Reason{domain.ReasonMatchedExclude, domain.ReasonNotIncluded} {
		skipped := res.SkippedModules(reason)
		if len(skipped) == 0 {
			continue
		}
		header(b, "MODULES SKIPPED ("+ModuleSkipLabel(reason)+")", "-")
		for _, s := range skipped {
			fmt.Fprintf(b, "  %s (%s)\n", s.Module.Name, s.Module.Path)
		}
		b.WriteString("\n")
	}

	writeTests(b, HeaderSucceeded, res.TestsSucceeded)
	writeTests(b, HeaderFailed, res.TestsFailed)
	for _, reason := range []domain.Reason{domain.ReasonMatchedExclude, domain.ReasonNotIncluded} {
		writeTests(b, "TESTS SKIPPED ("+TestSkipLabel(reason)+")", res.SkippedTests(reason))
	}
}

// writeTests lists entries grouped under their module
func writeTests(b *strings.Builder, title string, entries []domain.TestEntry) {
	if len(entries) == 0 {
		return
	}
	header(b, title, "-")

	var current *domain.ModuleRecord
	for _, e := range entries {
		t := e.Test
		if t.Module != current {
			current = t.Module
			fmt.Fprintf(b, "  %s (%s)\n", current.Name, current.Path)
		}

		line := "    |_ " + t.Name
		if e.Reason == domain.ReasonDryRun {
			line += " [dry run]"
		}
		if t.Returned != "" {
			line += " -> " + t.Returned
		}
		b.WriteString(line + "\n")

		if t.Status == domain.TestFailed {
			writeFailure(b, t.Error, t.Traceback)
		}
		if t.Output != "" {
			b.WriteString("         output:\n")
			writeIndented(b, strings.TrimRight(t.Output, "\n"), "           ")
		}
	}
	b.WriteString("\n")
}

func writeFailure(b *strings.Builder, message, traceback string) {
	writeIndented(b, message, "         ")
	if traceback != "" {
		b.WriteString("         Traceback:\n")
		writeIndented(b, strings.TrimRight(traceback, "\n"), "           ")
	}
}

func writeIndented(b *strings.Builder, text, indent string) {
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(indent + line + "\n")
	}
}

func header(b *strings.Builder, title, underline string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat(underline, len(title)) + "\n")
}

func dryRun(res *domain.Result) bool {
	for _, e := range res.TestsSucceeded {
		if e.Reason == domain.ReasonDryRun {
			return true
		}
	}
	return false
}
