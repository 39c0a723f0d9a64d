package config

import (
	"io/fs"
	"regexp"

	"clinic/internal/errors"
)

// Config holds every option that shapes a run
type Config struct {
	// Extra directories for resolving require() from test modules
	SearchPaths []string

	// Name prefixes
	TestPrefix   string
	ModulePrefix string

	// Regular expression filters, empty means unset
	TestInclude   string
	TestExclude   string
	ModuleInclude string
	ModuleExclude string

	// Behaviour
	DryRun         bool
	Traceback      bool
	FollowSymlinks bool
	Verbosity      int

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	SearchPaths    []string
	TestPrefix     string
	ModulePrefix   string
	TestInclude    string
	TestExclude    string
	ModuleInclude  string
	ModuleExclude  string
	DryRun         bool
	Traceback      bool
	FollowSymlinks bool
	Verbosity      int
	ConfigFile     string
	EnvFile        string
	JSONOutput     string
	Browse         bool
	LogLevel       string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		TestPrefix:   DefaultTestPrefix,
		ModulePrefix: DefaultModulePrefix,
	}
}

// Load builds a config from defaults, the config file, the environment and flags, in that order
func Load(flags Flags) (*Config, error) {
	cfg := New()

	path := flags.ConfigFile
	if path == "" {
		path = DefaultConfigFile
	}
	file, err := ReadFile(path)
	switch {
	case err == nil:
		file.Apply(cfg)
	case errors.Is(err, fs.ErrNotExist) && flags.ConfigFile == "":
		// optional default file
	default:
		return nil, err
	}

	if err := ApplyEnv(cfg, flags.EnvFile); err != nil {
		return nil, err
	}

	cfg.ApplyFlags(flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags overrides the config with every flag that was set
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags

	c.SearchPaths = append(c.SearchPaths, flags.SearchPaths...)
	if flags.TestPrefix != "" {
		c.TestPrefix = flags.TestPrefix
	}
	if flags.ModulePrefix != "" {
		c.ModulePrefix = flags.ModulePrefix
	}
	if flags.TestInclude != "" {
		c.TestInclude = flags.TestInclude
	}
	if flags.TestExclude != "" {
		c.TestExclude = flags.TestExclude
	}
	if flags.ModuleInclude != "" {
		c.ModuleInclude = flags.ModuleInclude
	}
	if flags.ModuleExclude != "" {
		c.ModuleExclude = flags.ModuleExclude
	}
	c.DryRun = c.DryRun || flags.DryRun
	c.Traceback = c.Traceback || flags.Traceback
	c.FollowSymlinks = c.FollowSymlinks || flags.FollowSymlinks
	if flags.Verbosity > c.Verbosity {
		c.Verbosity = flags.Verbosity
	}
}

// Validate checks prefixes, patterns and verbosity. Verbosity above MaxVerbosity is clamped.
func (c *Config) Validate() error {
	if c.TestPrefix == "" {
		return errors.Configf("test prefix must not be empty")
	}
	if c.ModulePrefix == "" {
		return errors.Configf("module prefix must not be empty")
	}
	if c.Verbosity < 0 {
		return errors.Configf("verbosity must not be negative, got %d", c.Verbosity)
	}
	if c.Verbosity > MaxVerbosity {
		c.Verbosity = MaxVerbosity
	}

	patterns := []struct {
		name, value string
	}{
		{"test include", c.TestInclude},
		{"test exclude", c.TestExclude},
		{"module include", c.ModuleInclude},
		{"module exclude", c.ModuleExclude},
	}
	for _, p := range patterns {
		if p.value == "" {
			continue
		}
		if _, err := regexp.Compile(p.value); err != nil {
			return errors.Config("invalid "+p.name+" pattern", err)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can hold it as an immutable value
func (c *Config) Clone() Config {
	out := *c
	out.SearchPaths = append([]string(nil), c.SearchPaths...)
	out.Flags.SearchPaths = append([]string(nil), c.Flags.SearchPaths...)
	return out
}
