package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"clinic/internal/domain"
	"clinic/internal/report"
)

// PrintTestList renders the modules and tests of a dry run as a table
func PrintTestList(out io.Writer, res *domain.Result, showIgnored bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Module", "Test", "Status", "Path"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignLeft},
	})

	for _, m := range res.Modules {
		if m.Status == domain.ModuleImportFailed {
			t.AppendRow(table.Row{m.Name, "", "import failed", m.Path})
			continue
		}
		for _, section := range [][]domain.TestEntry{res.TestsSucceeded, res.TestsSkipped} {
			for _, e := range section {
				if e.Test.Module == m {
					t.AppendRow(table.Row{m.Name, e.Test.Name, testStatus(e), m.Path})
				}
			}
		}
	}

	for _, skip := range res.ModulesSkipped {
		t.AppendRow(table.Row{skip.Module.Name, "", "skipped (" + report.ModuleSkipLabel(skip.Reason) + ")", skip.Module.Path})
	}

	if showIgnored {
		for _, ig := range res.Ignored {
			t.AppendRow(table.Row{"", "", "ignored (" + string(ig.Reason) + ")", ig.Path})
		}
	}

	t.AppendFooter(table.Row{"", "Total", res.TestCount(), ""})
	t.Render()
}

func testStatus(e domain.TestEntry) string {
	switch e.Test.Status {
	case domain.TestSkippedExcluded, domain.TestSkippedNotIncluded:
		return "skipped (" + report.TestSkipLabel(e.Reason) + ")"
	default:
		return "selected"
	}
}
