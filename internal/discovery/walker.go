package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"clinic/internal/config"
	"clinic/internal/domain"
	"clinic/internal/errors"
	"clinic/internal/loader"
)

// CandidateKind says what the walker decided about a file
type CandidateKind int

const (
	// Selected files are test modules to load
	Selected CandidateKind = iota
	// Filtered files are test modules rejected by the module include/exclude patterns
	Filtered
	// Ignored files are module sources rejected by the module prefix
	Ignored
)

// Candidate is a file found by the walker
type Candidate struct {
	Kind   CandidateKind
	Name   string
	Path   string
	Reason domain.Reason // set for Filtered and Ignored
}

// Walker finds test module files under root paths
type Walker struct {
	prefix         string
	followSymlinks bool
	filter         *Filter
	log            logrus.FieldLogger
}

// NewWalker creates a Walker from the module prefix, symlink and module filter options of cfg
func NewWalker(cfg *config.Config, log logrus.FieldLogger) (*Walker, error) {
	filter, err := NewFilter(cfg.ModuleInclude, cfg.ModuleExclude)
	if err != nil {
		return nil, err
	}
	return &Walker{
		prefix:         cfg.ModulePrefix,
		followSymlinks: cfg.FollowSymlinks,
		filter:         filter,
		log:            log,
	}, nil
}

// Walk calls visit for every candidate under roots, one at a time and in a stable order.
// All roots are checked before anything is visited; a missing root is a configuration error.
// Walking stops at the first error returned by visit.
func (w *Walker) Walk(roots []string, visit func(Candidate) error) error {
	if len(roots) == 0 {
		return errors.Configf("no test roots given")
	}

	infos := make([]os.FileInfo, len(roots))
	for i, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return errors.Config("test path does not exist: "+root, err)
		}
		infos[i] = info
	}

	// Shared by every root so overlapping roots yield each module once
	seen := make(map[string]bool)
	visitOnce := func(c Candidate) error {
		key := fileKey(c.Path)
		if seen[key] {
			w.log.WithField("path", c.Path).Debug("skipping module already found")
			return nil
		}
		seen[key] = true
		return visit(c)
	}

	for i, root := range roots {
		root = filepath.Clean(root)
		if !infos[i].IsDir() {
			// Explicitly named files bypass the prefix rule
			if err := visitOnce(w.classify(root, true)); err != nil {
				return err
			}
			continue
		}

		visited := make(map[string]bool)
		if err := w.walkDir(root, visited, visitOnce); err != nil {
			return err
		}
	}
	return nil
}

// fileKey identifies a file independently of the path used to reach it
func fileKey(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (w *Walker) walkDir(dir string, visited map[string]bool, visit func(Candidate) error) error {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if visited[real] {
			w.log.WithField("dir", dir).Debug("skipping already visited directory")
			return nil
		}
		visited[real] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.log.WithField("dir", dir).WithError(err).Warn("cannot read directory")
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				w.log.WithField("path", path).Debug("skipping dangling symlink")
				continue
			}
			if info.IsDir() && !w.followSymlinks {
				w.log.WithField("path", path).Debug("not following symlinked directory")
				continue
			}
			isDir = info.IsDir()
		}

		if isDir {
			if err := w.walkDir(path, visited, visit); err != nil {
				return err
			}
			continue
		}

		if filepath.Ext(entry.Name()) != config.ModuleExt {
			continue
		}
		if err := visit(w.classify(path, false)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) classify(path string, explicit bool) Candidate {
	c := Candidate{Kind: Selected, Name: loader.NameOf(path), Path: path}

	if !explicit && !strings.HasPrefix(c.Name, w.prefix) {
		c.Kind = Ignored
		c.Reason = domain.ReasonModulePrefix
		return c
	}
	if reason, ok := w.filter.Check(c.Name); !ok {
		c.Kind = Filtered
		c.Reason = reason
	}
	return c
}
