package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"clinic/internal/errors"
)

// File is the on-disk YAML form of the configuration
type File struct {
	SearchPaths    []string `yaml:"search_paths"`
	TestPrefix     string   `yaml:"test_prefix"`
	ModulePrefix   string   `yaml:"module_prefix"`
	TestInclude    string   `yaml:"test_include"`
	TestExclude    string   `yaml:"test_exclude"`
	ModuleInclude  string   `yaml:"module_include"`
	ModuleExclude  string   `yaml:"module_exclude"`
	Traceback      bool     `yaml:"traceback"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	Verbosity      int      `yaml:"verbosity"`

	dir string
}

// ReadFile parses a YAML config file. Relative search paths are resolved against the file's directory.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read config file "+path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Config("parse config file "+path, err)
	}
	file.dir = filepath.Dir(path)
	return &file, nil
}

// Apply copies every set field of the file into cfg
func (f *File) Apply(cfg *Config) {
	for _, p := range f.SearchPaths {
		if !filepath.IsAbs(p) && f.dir != "" {
			p = filepath.Join(f.dir, p)
		}
		cfg.SearchPaths = append(cfg.SearchPaths, p)
	}
	if f.TestPrefix != "" {
		cfg.TestPrefix = f.TestPrefix
	}
	if f.ModulePrefix != "" {
		cfg.ModulePrefix = f.ModulePrefix
	}
	if f.TestInclude != "" {
		cfg.TestInclude = f.TestInclude
	}
	if f.TestExclude != "" {
		cfg.TestExclude = f.TestExclude
	}
	if f.ModuleInclude != "" {
		cfg.ModuleInclude = f.ModuleInclude
	}
	if f.ModuleExclude != "" {
		cfg.ModuleExclude = f.ModuleExclude
	}
	cfg.Traceback = cfg.Traceback || f.Traceback
	cfg.FollowSymlinks = cfg.FollowSymlinks || f.FollowSymlinks
	if f.Verbosity > cfg.Verbosity {
		cfg.Verbosity = f.Verbosity
	}
}

// ApplyEnv loads envFile (DefaultEnvFile when empty, missing default is fine) and applies CLINIC_* variables
func ApplyEnv(cfg *Config, envFile string) error {
	path := envFile
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return errors.Config("load env file "+path, err)
		}
	}

	if v := os.Getenv(EnvSearchPath); v != "" {
		for _, p := range filepath.SplitList(v) {
			if p = strings.TrimSpace(p); p != "" {
				cfg.SearchPaths = append(cfg.SearchPaths, p)
			}
		}
	}
	if v := os.Getenv(EnvTestPrefix); v != "" {
		cfg.TestPrefix = v
	}
	if v := os.Getenv(EnvModulePrefix); v != "" {
		cfg.ModulePrefix = v
	}

	bools := []struct {
		name   string
		target *bool
	}{
		{EnvTraceback, &cfg.Traceback},
		{EnvFollowSymlinks, &cfg.FollowSymlinks},
	}
	for _, b := range bools {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Config("invalid value for "+b.name, err)
		}
		*b.target = parsed
	}
	return nil
}
