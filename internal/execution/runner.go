package execution

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"clinic/internal/config"
	"clinic/internal/discovery"
	"clinic/internal/domain"
	"clinic/internal/errors"
	"clinic/internal/loader"
)

// Invoker calls a module function by name
type Invoker interface {
	Invoke(name string) loader.Invocation
}

// Runner classifies and executes discovered tests one at a time
type Runner struct {
	filter    *discovery.Filter
	dryRun    bool
	traceback bool
	log       logrus.FieldLogger
}

// NewRunner creates a Runner from the test filter, dry-run and traceback options of cfg
func NewRunner(cfg *config.Config, log logrus.FieldLogger) (*Runner, error) {
	filter, err := discovery.NewFilter(cfg.TestInclude, cfg.TestExclude)
	if err != nil {
		return nil, err
	}
	return &Runner{
		filter:    filter,
		dryRun:    cfg.DryRun,
		traceback: cfg.Traceback,
		log:       log,
	}, nil
}

// Run finalizes the status of test and returns the reason tag of its category.
// Filtered tests and dry runs never invoke the callable. Failures never propagate.
func (r *Runner) Run(module Invoker, test *domain.TestRecord) domain.Reason {
	log := r.log.WithField("test", test.FullName())

	if reason, ok := r.filter.Check(test.Name); !ok {
		if reason == domain.ReasonMatchedExclude {
			test.Status = domain.TestSkippedExcluded
		} else {
			test.Status = domain.TestSkippedNotIncluded
		}
		log.WithField("reason", reason).Debug("test skipped")
		return reason
	}

	if r.dryRun {
		test.Status = domain.TestSucceeded
		log.Debug("dry run, not invoking")
		return domain.ReasonDryRun
	}

	inv := r.invoke(module, test.Name)
	test.Duration = inv.Duration
	test.Output = inv.Output
	test.Returned = inv.Returned

	if inv.Err != nil {
		test.Status = domain.TestFailed
		test.Error = inv.Err.Message
		if r.traceback {
			test.Traceback = inv.Err.Traceback
		}
		log.WithField("error", inv.Err.Message).Debug("test failed")
		return domain.ReasonFailed
	}

	test.Status = domain.TestSucceeded
	log.Debug("test passed")
	return domain.ReasonPassed
}

// invoke isolates the call so a panicking invoker is recorded as a failure
func (r *Runner) invoke(module Invoker, name string) (inv loader.Invocation) {
	defer errors.Recover(func(cause error) {
		inv = loader.Invocation{Err: &loader.ScriptError{
			Message:   fmt.Sprintf("panic: %v", cause),
			Traceback: errors.ErrorWithStackTrace(cause),
		}}
	})
	return module.Invoke(name)
}
