package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"clinic/internal/domain"
)

// ProgressBar shows an indeterminate spinner while a run is in progress.
// It satisfies engine.Observer.
type ProgressBar struct {
	bar     *progressbar.ProgressBar
	out     io.Writer
	success int
	failed  int
	modules int
}

// NewProgressBar creates a spinner writing to out
func NewProgressBar(out io.Writer) *ProgressBar {
	p := &ProgressBar{out: out}
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(p.description()),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

// ModuleDone counts a finished module
func (p *ProgressBar) ModuleDone(m *domain.ModuleRecord) {
	p.modules++
	p.bar.Describe(p.description())
}

// TestDone updates the counts with a finished test
func (p *ProgressBar) TestDone(t *domain.TestRecord) {
	switch t.Status {
	case domain.TestSucceeded:
		p.success++
	case domain.TestFailed:
		p.failed++
	}
	_ = p.bar.Add(1)
	p.bar.Describe(p.description())
}

// Finish completes the spinner and clears it
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
	_ = p.bar.Clear()
}

func (p *ProgressBar) description() string {
	return color.CyanString("Running tests ") +
		fmt.Sprintf("(%d modules) ", p.modules) +
		color.GreenString("[success: %d", p.success) +
		" | " +
		color.RedString("failed: %d]", p.failed)
}
