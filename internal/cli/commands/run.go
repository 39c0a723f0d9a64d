package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"clinic/internal/cli"
	"clinic/internal/engine"
	"clinic/internal/errors"
	"clinic/internal/parser"
	"clinic/internal/storage"
	"clinic/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	flags      *cli.Flags
	streams    Streams
	parser     *parser.TracebackParser
	newStorage func(path string) storage.Storage
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(flags *cli.Flags, streams Streams) *RunCommand {
	rc := &RunCommand{
		flags:   flags,
		streams: streams,
		parser:  parser.NewTracebackParser(),
	}
	rc.newStorage = func(path string) storage.Storage {
		return storage.NewJSONStorage(path, rc.parser)
	}
	return rc
}

// Execute runs the command. A run with failing tests returns an ErrorWithExitCode without a message.
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(rc.flags, rc.streams)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	var progress *ui.ProgressBar
	if isTerminal(rc.streams.Err) {
		progress = ui.NewProgressBar(rc.streams.Err)
		opts = append(opts, engine.WithObserver(progress))
	}

	status, output, res, err := engine.New(cfg, opts...).Run(roots(args)...)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprint(rc.streams.Out, ui.NewHighlighter(isTerminal(rc.streams.Out)).Highlight(output))

	if path := cfg.Flags.JSONOutput; path != "" {
		if err := rc.newStorage(path).Save(res, status, cfg.DryRun); err != nil {
			return errors.Errorf("failed to save test results: %w", err)
		}
		logger.WithField("path", path).Info("results written")
	}

	if cfg.Flags.Browse && isTerminal(rc.streams.Out) {
		if err := ui.NewErrorViewer(rc.streams.Out).View(rc.parser.ParseFailures(res)); err != nil {
			return err
		}
	}

	if status != errors.ExitSuccess {
		return errors.ErrorWithExitCode{ExitCode: status}
	}
	return nil
}
