package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clinic/internal/cli"
	"clinic/internal/engine"
	"clinic/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	flags   *cli.Flags
	streams Streams
}

// NewListCommand creates a new ListCommand
func NewListCommand(flags *cli.Flags, streams Streams) *ListCommand {
	return &ListCommand{
		flags:   flags,
		streams: streams,
	}
}

// Execute runs the command as a dry run and prints the classification of every test
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(lc.flags, lc.streams)
	if err != nil {
		return err
	}
	cfg.DryRun = true

	_, _, res, err := engine.New(cfg, engine.WithLogger(logger)).Run(roots(args)...)
	if err != nil {
		return err
	}

	if len(res.Modules) == 0 && len(res.ModulesSkipped) == 0 {
		yellow := color.New(color.FgYellow)
		if !isTerminal(lc.streams.Out) {
			yellow.DisableColor()
		}
		yellow.Fprintln(lc.streams.Out, "No test modules found")
		return nil
	}

	ui.PrintTestList(lc.streams.Out, res, lc.flags.ShowIgnored)
	return nil
}
