package commands

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"clinic/internal/cli"
	"clinic/internal/config"
	"clinic/internal/logging"
)

// Commands holds all CLI commands
type Commands struct {
	Run  *RunCommand
	List *ListCommand
}

// Streams are the process outputs a command writes to
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// DefaultStreams returns stdout and stderr
func DefaultStreams() Streams {
	return Streams{Out: os.Stdout, Err: os.Stderr}
}

// NewCommands creates all commands
func NewCommands(flags *cli.Flags, streams Streams) *Commands {
	return &Commands{
		Run:  NewRunCommand(flags, streams),
		List: NewListCommand(flags, streams),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	runCmd := &cobra.Command{
		Use:   "run [flags] ROOT...",
		Short: "Run test modules",
		Long:  "Discover test modules under the given roots, run their tests and print a report",
		RunE:  c.Run.Execute,
	}
	addSelectionFlags(runCmd.Flags(), flags)
	runCmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "d", false, "Discover and classify tests without running them")
	runCmd.Flags().BoolVarP(&flags.Traceback, "traceback", "t", false, "Capture tracebacks for failures")
	runCmd.Flags().CountVarP(&flags.Verbosity, "verbose", "v", "Increase report detail (-v statistics, -vv full details)")
	runCmd.Flags().StringVar(&flags.JSONOutput, "json", "", "Write the results as JSON to this file")
	runCmd.Flags().BoolVar(&flags.Browse, "browse", false, "Open the failure browser when the run has failures")
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list [flags] ROOT...",
		Short: "List discovered tests",
		Long:  "Discover and filter test modules and tests without running them",
		RunE:  c.List.Execute,
	}
	addSelectionFlags(listCmd.Flags(), flags)
	listCmd.Flags().BoolVar(&flags.ShowIgnored, "ignored", false, "Also list files rejected by the module prefix")
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (default "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "Environment file (default "+config.DefaultEnvFile+")")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", logging.DefaultLevel, "Log level (trace, debug, info, warn, error)")
}

func addSelectionFlags(fs *pflag.FlagSet, flags *cli.Flags) {
	fs.StringArrayVarP(&flags.SearchPaths, "path", "p", nil, "Extra directory for resolving require() (repeatable)")
	fs.StringVarP(&flags.TestInclude, "include", "i", "", "Only run tests whose name matches this regular expression")
	fs.StringVarP(&flags.TestExclude, "exclude", "e", "", "Skip tests whose name matches this regular expression")
	fs.StringVarP(&flags.ModuleInclude, "module-include", "I", "", "Only load modules whose name matches this regular expression")
	fs.StringVarP(&flags.ModuleExclude, "module-exclude", "E", "", "Skip modules whose name matches this regular expression")
	fs.StringVarP(&flags.TestPrefix, "test-prefix", "x", "", "Name prefix of test functions (default "+config.DefaultTestPrefix+")")
	fs.StringVarP(&flags.ModulePrefix, "module-prefix", "X", "", "File name prefix of test modules (default "+config.DefaultModulePrefix+")")
	fs.BoolVarP(&flags.FollowSymlinks, "follow-symlinks", "f", false, "Descend into symlinked directories")
}

// setup loads the layered config and the logger shared by every command
func setup(flags *cli.Flags, streams Streams) (*config.Config, *logrus.Logger, error) {
	logger, err := logging.New(flags.LogLevel, streams.Err)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("config", cfg.Flags.ConfigFile).Debug("configuration loaded")
	return cfg, logger, nil
}

func roots(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
