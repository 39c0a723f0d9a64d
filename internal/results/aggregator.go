// Package results accumulates module and test records for a single run.
package results

import (
	"fmt"
	"time"

	"clinic/internal/domain"
)

// Aggregator collects every module and test record of one run exactly once.
// It is not safe for concurrent use; runs are sequential.
type Aggregator struct {
	result  domain.Result
	seen    map[string]bool
	started time.Time
	sealed  bool
}

// NewAggregator starts an empty result
func NewAggregator() *Aggregator {
	return &Aggregator{
		seen:    make(map[string]bool),
		started: time.Now(),
	}
}

// AddModule records an attempted module (loaded or import_failed)
func (a *Aggregator) AddModule(m *domain.ModuleRecord) {
	a.claimModule(m)
	a.result.Modules = append(a.result.Modules, m)
}

// SkipModule records a module rejected by the module filters
func (a *Aggregator) SkipModule(m *domain.ModuleRecord, reason domain.Reason) {
	a.claimModule(m)
	m.Status = domain.ModuleSkippedByFilter
	a.result.ModulesSkipped = append(a.result.ModulesSkipped, domain.ModuleSkip{Module: m, Reason: reason})
}

// Ignore records a path rejected by naming rules
func (a *Aggregator) Ignore(path string, reason domain.Reason) {
	a.mustBeOpen()
	a.result.Ignored = append(a.result.Ignored, domain.IgnoredPath{Path: path, Reason: reason})
}

// AddTest files a finalized test under the category matching its status
func (a *Aggregator) AddTest(t *domain.TestRecord, reason domain.Reason) {
	a.mustBeOpen()
	key := "test:" + t.Module.Path + "\x00" + t.Name
	if a.seen[key] {
		panic(fmt.Sprintf("results: test %s recorded twice", t.FullName()))
	}
	a.seen[key] = true

	entry := domain.TestEntry{Reason: reason, Test: t}
	switch t.Status {
	case domain.TestSucceeded:
		a.result.TestsSucceeded = append(a.result.TestsSucceeded, entry)
	case domain.TestFailed:
		a.result.TestsFailed = append(a.result.TestsFailed, entry)
	case domain.TestSkippedExcluded, domain.TestSkippedNotIncluded:
		a.result.TestsSkipped = append(a.result.TestsSkipped, entry)
	default:
		panic(fmt.Sprintf("results: test %s has no final status", t.FullName()))
	}
}

// Result seals the aggregator and returns the collected result. Further writes panic.
func (a *Aggregator) Result() *domain.Result {
	if !a.sealed {
		a.sealed = true
		a.result.Duration = time.Since(a.started)
	}
	return &a.result
}

func (a *Aggregator) claimModule(m *domain.ModuleRecord) {
	a.mustBeOpen()
	key := "module:" + m.Path
	if a.seen[key] {
		panic(fmt.Sprintf("results: module %s recorded twice", m.Path))
	}
	a.seen[key] = true
}

func (a *Aggregator) mustBeOpen() {
	if a.sealed {
		panic("results: write after Result")
	}
}
