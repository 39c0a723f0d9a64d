package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic/internal/domain"
)

func module(name string) *domain.ModuleRecord {
	return &domain.ModuleRecord{Name: name, Path: "/tests/" + name + ".lua", Status: domain.ModuleLoaded}
}

func test(m *domain.ModuleRecord, name string, status domain.TestStatus) *domain.TestRecord {
	return &domain.TestRecord{Name: name, Module: m, Status: status}
}

func TestAggregator_Categories(t *testing.T) {
	agg := NewAggregator()

	main := module("test_main")
	agg.AddModule(main)
	broken := module("test_broken")
	broken.Status = domain.ModuleImportFailed
	agg.AddModule(broken)
	agg.SkipModule(module("test_import"), domain.ReasonMatchedExclude)
	agg.Ignore("/tests/helper.lua", domain.ReasonModulePrefix)

	agg.AddTest(test(main, "test_success", domain.TestSucceeded), domain.ReasonPassed)
	agg.AddTest(test(main, "test_failure", domain.TestFailed), domain.ReasonFailed)
	agg.AddTest(test(main, "test_math", domain.TestSkippedExcluded), domain.ReasonMatchedExclude)
	agg.AddTest(test(main, "test_other", domain.TestSkippedNotIncluded), domain.ReasonNotIncluded)

	res := agg.Result()

	require.Len(t, res.Modules, 2)
	assert.Equal(t, "test_main", res.Modules[0].Name)
	assert.Equal(t, []*domain.ModuleRecord{broken}, res.ImportFailures())

	require.Len(t, res.ModulesSkipped, 1)
	assert.Equal(t, domain.ModuleSkippedByFilter, res.ModulesSkipped[0].Module.Status)
	assert.Equal(t, domain.ReasonMatchedExclude, res.ModulesSkipped[0].Reason)
	assert.Len(t, res.SkippedModules(domain.ReasonMatchedExclude), 1)
	assert.Empty(t, res.SkippedModules(domain.ReasonNotIncluded))

	assert.Equal(t, []domain.IgnoredPath{{Path: "/tests/helper.lua", Reason: domain.ReasonModulePrefix}}, res.Ignored)

	assert.Len(t, res.TestsSucceeded, 1)
	assert.Len(t, res.TestsFailed, 1)
	assert.Len(t, res.TestsSkipped, 2)
	assert.Len(t, res.SkippedTests(domain.ReasonMatchedExclude), 1)
	assert.Len(t, res.SkippedTests(domain.ReasonNotIncluded), 1)
	assert.Equal(t, 4, res.TestCount())
}

func TestAggregator_RecordsOnce(t *testing.T) {
	agg := NewAggregator()
	m := module("test_main")
	agg.AddModule(m)

	assert.Panics(t, func() { agg.SkipModule(m, domain.ReasonNotIncluded) })

	tr := test(m, "test_success", domain.TestSucceeded)
	agg.AddTest(tr, domain.ReasonPassed)
	assert.Panics(t, func() { agg.AddTest(tr, domain.ReasonPassed) })
}

func TestAggregator_RejectsPendingTests(t *testing.T) {
	agg := NewAggregator()
	m := module("test_main")
	assert.Panics(t, func() { agg.AddTest(test(m, "test_x", domain.TestPending), domain.ReasonPassed) })
}

func TestAggregator_SealedAfterResult(t *testing.T) {
	agg := NewAggregator()
	first := agg.Result()
	second := agg.Result()

	assert.Same(t, first, second)
	assert.Panics(t, func() { agg.AddModule(module("test_late")) })
}
