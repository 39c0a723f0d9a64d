// Package engine wires discovery, loading, execution, aggregation and reporting into a single run.
package engine

import (
	"github.com/sirupsen/logrus"

	"clinic/internal/config"
	"clinic/internal/discovery"
	"clinic/internal/domain"
	"clinic/internal/execution"
	"clinic/internal/loader"
	"clinic/internal/logging"
	"clinic/internal/report"
	"clinic/internal/results"
)

// Observer is notified as records are finalized
type Observer interface {
	ModuleDone(m *domain.ModuleRecord)
	TestDone(t *domain.TestRecord)
}

// Engine runs test modules found under root paths
type Engine struct {
	cfg      config.Config
	log      logrus.FieldLogger
	observer Observer
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger, the default discards everything
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithObserver registers an observer for progress reporting
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New creates an Engine holding a private copy of cfg
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg.Clone(),
		log: logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is a shorthand for New(cfg).Run(roots...)
func Run(cfg *config.Config, roots ...string) (int, string, *domain.Result, error) {
	return New(cfg).Run(roots...)
}

// Run discovers, filters and executes every test under roots and renders the report.
// Only configuration problems, such as a missing root or an invalid pattern, return an error;
// module and test failures are recorded in the result.
func (e *Engine) Run(roots ...string) (int, string, *domain.Result, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return 0, "", nil, err
	}

	walker, err := discovery.NewWalker(&cfg, e.log)
	if err != nil {
		return 0, "", nil, err
	}
	runner, err := execution.NewRunner(&cfg, e.log)
	if err != nil {
		return 0, "", nil, err
	}
	discoverer := discovery.NewDiscoverer(cfg.TestPrefix)
	ld := loader.New(cfg.SearchPaths, cfg.Traceback)
	agg := results.NewAggregator()

	err = walker.Walk(roots, func(c discovery.Candidate) error {
		log := e.log.WithField("path", c.Path)
		switch c.Kind {
		case discovery.Ignored:
			log.WithField("reason", c.Reason).Debug("ignoring file")
			agg.Ignore(c.Path, c.Reason)
			return nil
		case discovery.Filtered:
			log.WithField("reason", c.Reason).Debug("module skipped")
			agg.SkipModule(&domain.ModuleRecord{Name: c.Name, Path: c.Path}, c.Reason)
			return nil
		}

		e.runModule(c, ld, discoverer, runner, agg)
		return nil
	})
	if err != nil {
		return 0, "", nil, err
	}

	res := agg.Result()
	return report.ExitStatus(res), report.Render(res, cfg.Verbosity), res, nil
}

// runModule loads one module and runs its tests. Nothing here fails the run.
func (e *Engine) runModule(c discovery.Candidate, ld *loader.Loader, discoverer *discovery.Discoverer, runner *execution.Runner, agg *results.Aggregator) {
	log := e.log.WithField("module", c.Name)
	record := &domain.ModuleRecord{Name: c.Name, Path: c.Path}

	mod, err := ld.Load(c.Path)
	if err != nil {
		record.Status = domain.ModuleImportFailed
		record.Error = err.Error()
		if scriptErr, ok := err.(*loader.ScriptError); ok && e.cfg.Traceback {
			record.Traceback = scriptErr.Traceback
		}
		log.WithField("error", record.Error).Debug("module failed to import")
		agg.AddModule(record)
		e.moduleDone(record)
		return
	}
	defer mod.Close()

	record.Status = domain.ModuleLoaded
	agg.AddModule(record)
	e.moduleDone(record)

	tests := discoverer.Discover(mod.Bindings(), record)
	log.WithField("tests", len(tests)).Debug("module loaded")
	for _, t := range tests {
		reason := runner.Run(mod, t)
		agg.AddTest(t, reason)
		if e.observer != nil {
			e.observer.TestDone(t)
		}
	}
}

func (e *Engine) moduleDone(m *domain.ModuleRecord) {
	if e.observer != nil {
		e.observer.ModuleDone(m)
	}
}
