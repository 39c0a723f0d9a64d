package main

import (
	"fmt"
	"os"

	"clinic/internal/cli"
	"clinic/internal/cli/commands"
	"clinic/internal/errors"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic",
		Short:         "Lua test discovery and execution engine",
		Long:          `Discovers test modules under the given roots, runs every test function in them and reports what passed, failed and was skipped.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Config("invalid command line", err)
	})

	// Populated by command flags
	var flags cli.Flags

	cmds := commands.NewCommands(&flags, commands.DefaultStreams())
	cmds.Register(rootCmd, &flags)

	if err := rootCmd.Execute(); err != nil {
		var withCode errors.ErrorWithExitCode
		if !errors.As(err, &withCode) || withCode.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(errors.ExitCode(err))
	}
}
