package cli

import "clinic/internal/config"

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
	ShowIgnored    bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		SearchPaths:    f.SearchPaths,
		TestPrefix:     f.TestPrefix,
		ModulePrefix:   f.ModulePrefix,
		TestInclude:    f.TestInclude,
		TestExclude:    f.TestExclude,
		ModuleInclude:  f.ModuleInclude,
		ModuleExclude:  f.ModuleExclude,
		DryRun:         f.DryRun,
		Traceback:      f.Traceback,
		FollowSymlinks: f.FollowSymlinks,
		Verbosity:      f.Verbosity,
		ConfigFile:     f.ConfigFile,
		EnvFile:        f.EnvFile,
		JSONOutput:     f.JSONOutput,
		Browse:         f.Browse,
		LogLevel:       f.LogLevel,
	}
}
