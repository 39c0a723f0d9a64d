package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"clinic/internal/domain"
)

// maxStackLines is how many stack frames the details pane shows before truncating
const maxStackLines = 10

// ErrorViewer displays the failures of a run in an interactive TUI
type ErrorViewer struct {
	out io.Writer
}

// NewErrorViewer creates a new ErrorViewer. Messages that are not part of the TUI go to out.
func NewErrorViewer(out io.Writer) *ErrorViewer {
	return &ErrorViewer{out: out}
}

// View opens the browser over failures and blocks until the user quits
func (ev *ErrorViewer) View(failures []domain.TestFailure) error {
	if len(failures) == 0 {
		fmt.Fprintln(ev.out, color.GreenString("✓ No test failures found!"))
		return nil
	}

	// Reviewed marks live only as long as the viewer
	reviewed := make(map[int]bool)

	app := tview.NewApplication()

	// Failed tests and imports on the left
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, f := range failures {
		list.AddItem(listItemText(f, i, false), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Path of the selected failure above the details
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Message and stack on the right
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// List takes a third of the width, details the rest
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(len(failures), len(failures)-countTrue(reviewed)))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			statsView.SetText(formatFailureStats(failures[index], index+1))
			detailsView.SetText(formatFailureDetails(failures[index]))
			detailsView.ScrollToBeginning()
		}
	}

	// List keys
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r', 'R':
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					reviewed[index] = !reviewed[index]
					list.SetItemText(index, listItemText(failures[index], index, reviewed[index]), "")
					updateHeader()
				}
				return nil
			case 'q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	// Details keys
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	// Header, spacer, panes
	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func headerText(total, open int) string {
	return fmt.Sprintf(" Failures (%d total, %d not reviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, q to exit ", total, open)
}

func listItemText(f domain.TestFailure, index int, reviewed bool) string {
	name := failureName(f)
	if reviewed {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

func failureName(f domain.TestFailure) string {
	if f.Kind == domain.FailureImport {
		return f.ModuleName + " (import)"
	}
	return f.ModuleName + "." + f.TestName
}

// formatFailureDetails formats a failure for display using tview color tags
func formatFailureDetails(f domain.TestFailure) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if f.Kind == domain.FailureImport {
		fmt.Fprintf(w, "[red]✗ Import failed: %s[white]\n\n", tview.Escape(f.ModuleName))
	} else {
		fmt.Fprintf(w, "[red]✗ Test: %s[white]\n\n", tview.Escape(f.TestName))
	}

	fmt.Fprintf(w, "[cyan]File: %s[white]\n", tview.Escape(f.FilePath))
	if f.File != "" && f.Line > 0 {
		fmt.Fprintf(w, "[yellow]Location: %s:%d[white]\n", tview.Escape(f.File), f.Line)
	}
	fmt.Fprintf(w, "\n")

	if f.Message != "" {
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n\n", tview.Escape(f.Message))
	}

	if len(f.StackTrace) > 0 {
		fmt.Fprintf(w, "[yellow]Stack Trace:[white]\n")
		for i, frame := range f.StackTrace {
			if i < maxStackLines {
				fmt.Fprintf(w, "  %s\n", tview.Escape(frame))
			}
		}
		if len(f.StackTrace) > maxStackLines {
			fmt.Fprintf(w, "  [gray]... and %d more lines[white]\n", len(f.StackTrace)-maxStackLines)
		}
	}

	w.Flush()
	return builder.String()
}

// formatFailureStats formats the header line above the details pane
func formatFailureStats(f domain.TestFailure, number int) string {
	path := f.FilePath
	if path == "" {
		path = "Unknown path"
	}

	name := f.TestName
	if f.Kind == domain.FailureImport {
		name = "<import>"
	} else if name == "" {
		name = fmt.Sprintf("Test %d", number)
	}

	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n", tview.Escape(path), tview.Escape(name))
}

func countTrue(m map[int]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
