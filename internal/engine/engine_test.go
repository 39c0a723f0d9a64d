package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic/internal/config"
	"clinic/internal/domain"
	"clinic/internal/errors"
	"clinic/internal/logging"
)

var mockDir = filepath.Join("testdata", "mock_tests")

func mockPath(parts ...string) string {
	return filepath.Join(append([]string{mockDir}, parts...)...)
}

type run struct {
	status int
	output string
	result *domain.Result
}

func runEngine(t *testing.T, mutate func(c *config.Config), roots ...string) run {
	t.Helper()
	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}
	if len(roots) == 0 {
		roots = []string{mockPath("main")}
	}
	status, output, result, err := Run(cfg, roots...)
	require.NoError(t, err)
	require.NotNil(t, result)
	return run{status: status, output: output, result: result}
}

func isIn(name string, section []domain.TestEntry) bool {
	count := 0
	for _, e := range section {
		if e.Test.Name == name {
			count++
		}
	}
	return count == 1
}

func inAny(name string, res *domain.Result) bool {
	return isIn(name, res.TestsSucceeded) || isIn(name, res.TestsFailed) || isIn(name, res.TestsSkipped)
}

func TestExitStatus(t *testing.T) {
	failing := runEngine(t, func(c *config.Config) { c.TestInclude = ".*failure"; c.Verbosity = 2 })
	assert.NotZero(t, failing.status, "failures must produce a nonzero exit status")

	passing := runEngine(t, func(c *config.Config) { c.TestInclude = ".*success"; c.Verbosity = 2 })
	assert.Zero(t, passing.status, "successes must produce a zero exit status")
}

func TestEndToEnd(t *testing.T) {
	r := runEngine(t, func(c *config.Config) { c.ModuleInclude = "main"; c.TestExclude = "print" })

	assert.NotZero(t, r.status)
	require.Len(t, r.result.TestsFailed, 2)
	require.Len(t, r.result.TestsSucceeded, 2)
	assert.True(t, isIn("test_failure", r.result.TestsFailed))
	assert.True(t, isIn("test_math_failure", r.result.TestsFailed))
	assert.True(t, isIn("test_success", r.result.TestsSucceeded))
	assert.True(t, isIn("test_return_success", r.result.TestsSucceeded))

	for _, e := range r.result.TestsFailed {
		assert.Equal(t, domain.ReasonFailed, e.Reason)
		assert.NotEmpty(t, e.Test.Error)
	}
	assert.Contains(t, r.result.TestsFailed[0].Test.Error, "foo")
	assert.Contains(t, r.result.TestsFailed[1].Test.Error, "What strange math we have.")
	assert.NotEmpty(t, r.result.TestsSucceeded[1].Test.Returned, "returned value is kept as metadata")
}

func TestDeclarationOrder(t *testing.T) {
	r := runEngine(t, func(c *config.Config) { c.ModuleInclude = "main" })

	var order []string
	for _, e := range r.result.TestsFailed {
		order = append(order, e.Test.Name)
	}
	for _, e := range r.result.TestsSucceeded {
		order = append(order, e.Test.Name)
	}
	assert.Equal(t, []string{"test_failure", "test_math_failure", "test_success", "test_return_success", "test_print_success"}, order)
}

func TestPartition(t *testing.T) {
	scenarios := map[string]func(c *config.Config){
		"default":      nil,
		"include":      func(c *config.Config) { c.TestInclude = "success" },
		"exclude":      func(c *config.Config) { c.TestExclude = "math" },
		"both":         func(c *config.Config) { c.TestInclude = "failure"; c.TestExclude = "math" },
		"dry run":      func(c *config.Config) { c.DryRun = true; c.TestExclude = "import" },
		"module skips": func(c *config.Config) { c.ModuleExclude = "import" },
	}

	for name, mutate := range scenarios {
		t.Run(name, func(t *testing.T) {
			r := runEngine(t, mutate)
			res := r.result

			seen := make(map[*domain.TestRecord]int)
			for _, section := range [][]domain.TestEntry{res.TestsSucceeded, res.TestsFailed, res.TestsSkipped} {
				for _, e := range section {
					seen[e.Test]++
				}
			}
			for tr, n := range seen {
				assert.Equal(t, 1, n, "%s recorded %d times", tr.FullName(), n)
			}

			assert.Equal(t, len(res.TestsFailed) == 0, r.status == 0)
		})
	}
}

func TestDryRun(t *testing.T) {
	r := runEngine(t, func(c *config.Config) { c.DryRun = true })

	assert.Empty(t, r.result.TestsFailed, "dry run didn't succeed all tests")
	assert.Zero(t, r.status)
	for _, e := range r.result.TestsSucceeded {
		assert.Equal(t, domain.ReasonDryRun, e.Reason)
		assert.Empty(t, e.Test.Output, "dry run must not execute test bodies")
	}

	filtered := runEngine(t, func(c *config.Config) { c.DryRun = true; c.TestExclude = "math" })
	assert.True(t, isIn("test_math_failure", filtered.result.TestsSkipped))
}

func TestVerbosity(t *testing.T) {
	quiet := runEngine(t, nil)
	assert.NotContains(t, quiet.output, "TEST RUN DETAILS", "zero verbosity has details")
	assert.NotContains(t, quiet.output, "STATISTICS", "zero verbosity has statistics")

	one := runEngine(t, func(c *config.Config) { c.Verbosity = 1 })
	assert.NotContains(t, one.output, "TEST RUN DETAILS", "one verbosity has details")
	assert.Contains(t, one.output, "STATISTICS", "one verbosity lacks statistics")

	two := runEngine(t, func(c *config.Config) { c.Verbosity = 2 })
	assert.Contains(t, two.output, "TEST RUN DETAILS", "two verbosity lacks details")
	assert.Contains(t, two.output, "STATISTICS", "two verbosity lacks statistics")
}

func TestSearchPaths(t *testing.T) {
	none := runEngine(t, nil)
	assert.True(t, isIn("test_try_import_one", none.result.TestsFailed), "import_one not failed for no paths")
	assert.True(t, isIn("test_try_import_two", none.result.TestsFailed), "import_two not failed for no paths")

	one := runEngine(t, func(c *config.Config) {
		c.SearchPaths = []string{mockPath("import_dir1")}
	})
	assert.True(t, isIn("test_try_import_one", one.result.TestsSucceeded), "import_one not succeeded for one path")
	assert.True(t, isIn("test_try_import_two", one.result.TestsFailed), "import_two not failed for one path")

	two := runEngine(t, func(c *config.Config) {
		c.SearchPaths = []string{mockPath("import_dir1"), mockPath("import_dir2")}
	})
	assert.True(t, isIn("test_try_import_one", two.result.TestsSucceeded), "import_one not succeeded for two paths")
	assert.True(t, isIn("test_try_import_two", two.result.TestsSucceeded), "import_two not succeeded for two paths")
}

func TestSearchPathsAreNotWalked(t *testing.T) {
	r := runEngine(t, func(c *config.Config) {
		c.SearchPaths = []string{mockPath("broken")}
		c.ModuleInclude = "main"
	})
	for _, m := range r.result.Modules {
		assert.Equal(t, "test_main", m.Name)
	}
}

func TestTraceback(t *testing.T) {
	without := runEngine(t, func(c *config.Config) { c.Verbosity = 2 })
	assert.NotContains(t, without.output, "Traceback", "traceback exists without capture")
	for _, e := range without.result.TestsFailed {
		assert.Empty(t, e.Test.Traceback)
	}

	with := runEngine(t, func(c *config.Config) { c.Verbosity = 2; c.Traceback = true })
	assert.Contains(t, with.output, "Traceback", "traceback doesn't exist with capture")
	for _, e := range with.result.TestsFailed {
		assert.NotEmpty(t, e.Test.Traceback, e.Test.FullName())
	}
}

func TestSymlinks(t *testing.T) {
	target, err := filepath.Abs(mockPath("linked_target"))
	require.NoError(t, err)

	root := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "subdir_link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	direct := runEngine(t, nil, root)
	assert.Empty(t, direct.result.Modules, "modules not empty for no follow")

	followed := runEngine(t, func(c *config.Config) { c.FollowSymlinks = true; c.Verbosity = 2 }, root)
	require.Len(t, followed.result.Modules, 1, "modules unexpected size for follow")
	assert.True(t, isIn("test_reached_through_link", followed.result.TestsSucceeded))
}

func TestTestPrefix(t *testing.T) {
	r := runEngine(t, nil)
	assert.False(t, inAny("assay_other_name", r.result), "assay test found with default prefix")

	assay := runEngine(t, func(c *config.Config) { c.TestPrefix = "assay_" })
	assert.True(t, isIn("assay_other_name", assay.result.TestsSucceeded), "assay test not found with assay_ prefix")
}

func TestModulePrefix(t *testing.T) {
	r := runEngine(t, nil)
	assert.False(t, inAny("test_in_assay_module", r.result), "in_assay_module found with default prefix")

	assay := runEngine(t, func(c *config.Config) { c.ModulePrefix = "assay_" })
	assert.True(t, isIn("test_in_assay_module", assay.result.TestsSucceeded), "in_assay_module not found with assay_ prefix")
}

func TestExplicitFileRoot(t *testing.T) {
	r := runEngine(t, nil, mockPath("main", "assay_module.lua"))
	assert.True(t, isIn("test_in_assay_module", r.result.TestsSucceeded))
}

func TestTestExclude(t *testing.T) {
	r := runEngine(t, nil)
	assert.True(t, isIn("test_math_failure", r.result.TestsFailed), "math_failure not failed without exclude")
	assert.False(t, isIn("test_math_failure", r.result.TestsSkipped), "math_failure skipped without exclude")

	ex := runEngine(t, func(c *config.Config) { c.Verbosity = 2; c.TestExclude = "math" })
	assert.False(t, isIn("test_math_failure", ex.result.TestsFailed))
	assert.True(t, isIn("test_math_failure", ex.result.TestsSkipped))
	assert.Contains(t, ex.output, "TESTS SKIPPED (matched -e)", "no test run description")
	assert.Contains(t, ex.output, "Tests skipped (matched -e)", "no stats listing")
}

func TestTestInclude(t *testing.T) {
	in := runEngine(t, func(c *config.Config) { c.Verbosity = 2; c.TestInclude = ".*success" })
	assert.False(t, isIn("test_math_failure", in.result.TestsFailed))
	assert.True(t, isIn("test_math_failure", in.result.TestsSkipped))
	assert.Contains(t, in.output, "TESTS SKIPPED (failed to match -i)", "no test run description")
	assert.Contains(t, in.output, "Tests skipped (failed to match -i)", "no stats listing")
}

func TestExcludePrecedence(t *testing.T) {
	r := runEngine(t, func(c *config.Config) { c.TestInclude = "math"; c.TestExclude = "math" })

	require.True(t, isIn("test_math_failure", r.result.TestsSkipped))
	for _, e := range r.result.TestsSkipped {
		if e.Test.Name == "test_math_failure" {
			assert.Equal(t, domain.ReasonMatchedExclude, e.Reason)
			assert.Equal(t, domain.TestSkippedExcluded, e.Test.Status)
		}
	}
}

func TestModuleExclude(t *testing.T) {
	r := runEngine(t, func(c *config.Config) { c.Verbosity = 2 })
	assert.Empty(t, r.result.ModulesSkipped, "module excluded with default args")
	assert.Len(t, moduleNamed(r.result, "test_import"), 1, "test_import not in module list")

	ex := runEngine(t, func(c *config.Config) { c.Verbosity = 2; c.ModuleExclude = "import" })
	require.Len(t, ex.result.ModulesSkipped, 1, "module not excluded")
	assert.Contains(t, ex.output, "MODULES SKIPPED (matched -E)", "skip not in details")
	assert.Contains(t, ex.output, "Test modules skipped (matched -E)", "skip not in stats")
	assert.Equal(t, "test_import", ex.result.ModulesSkipped[0].Module.Name)
	assert.Empty(t, moduleNamed(ex.result, "test_import"), "skipped module is not attempted")
}

func TestModuleInclude(t *testing.T) {
	in := runEngine(t, func(c *config.Config) { c.Verbosity = 2; c.ModuleInclude = "import" })
	require.Len(t, in.result.ModulesSkipped, 1, "module not excluded with include")
	assert.Contains(t, in.output, "MODULES SKIPPED (failed to match -I)", "skip not in details")
	assert.Contains(t, in.output, "Test modules skipped (failed to match -I)", "skip not in stats")
	assert.Equal(t, "test_main", in.result.ModulesSkipped[0].Module.Name)
	assert.Equal(t, domain.ReasonNotIncluded, in.result.ModulesSkipped[0].Reason)
}

func TestImportFailuresAreIsolated(t *testing.T) {
	r := runEngine(t, func(c *config.Config) { c.Verbosity = 2; c.Traceback = true }, mockPath("broken"))
	res := r.result

	require.Len(t, res.Modules, 3)
	failed := res.ImportFailures()
	require.Len(t, failed, 2)
	assert.Equal(t, "test_raises", failed[0].Name)
	assert.Contains(t, failed[0].Error, "import time failure")
	assert.NotEmpty(t, failed[0].Traceback)
	assert.Equal(t, "test_syntax", failed[1].Name)

	assert.True(t, isIn("test_fine", res.TestsSucceeded), "later modules still run")
	assert.Zero(t, r.status, "import failures do not change the exit status")
	assert.Contains(t, r.output, "IMPORT FAILED")
	assert.Contains(t, r.output, "2 module(s) failed to import")
}

func TestMultipleRoots(t *testing.T) {
	r := runEngine(t, nil, mockPath("main"), mockPath("broken"))

	var names []string
	for _, m := range r.result.Modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"test_import", "test_main", "test_fine", "test_raises", "test_syntax"}, names)
}

func TestOverlappingRoots(t *testing.T) {
	tests := map[string][]string{
		"duplicate root":   {mockPath("main"), mockPath("main")},
		"file within root": {mockPath("main"), mockPath("main", "test_main.lua")},
		"parent and child": {mockDir, mockPath("main")},
	}

	for name, roots := range tests {
		t.Run(name, func(t *testing.T) {
			r := runEngine(t, func(c *config.Config) { c.ModuleInclude = "main" }, roots...)

			assert.Len(t, moduleNamed(r.result, "test_main"), 1)
			assert.Len(t, r.result.TestsFailed, 2)
			assert.Len(t, r.result.TestsSucceeded, 3)
		})
	}
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		roots  []string
	}{
		{name: "missing root", roots: []string{mockPath("does_not_exist")}},
		{name: "no roots"},
		{name: "bad test pattern", mutate: func(c *config.Config) { c.TestInclude = "(" }, roots: []string{mockPath("main")}},
		{name: "bad module pattern", mutate: func(c *config.Config) { c.ModuleExclude = "[" }, roots: []string{mockPath("main")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			_, _, res, err := Run(cfg, tt.roots...)
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
			assert.Nil(t, res)
		})
	}
}

func TestConfigIsCopied(t *testing.T) {
	cfg := config.New()
	e := New(cfg)
	cfg.TestPrefix = "assay_"

	_, _, res, err := e.Run(mockPath("main"))
	require.NoError(t, err)
	assert.False(t, inAny("assay_other_name", res))
}

type recordingObserver struct {
	modules []string
	tests   []string
}

func (o *recordingObserver) ModuleDone(m *domain.ModuleRecord) { o.modules = append(o.modules, m.Name) }
func (o *recordingObserver) TestDone(t *domain.TestRecord)     { o.tests = append(o.tests, t.Name) }

func TestObserverAndLogger(t *testing.T) {
	var logs bytes.Buffer
	logger, err := logging.New("debug", &logs)
	require.NoError(t, err)

	obs := &recordingObserver{}
	_, _, res, err := New(config.New(), WithLogger(logger), WithObserver(obs)).Run(mockPath("main"))
	require.NoError(t, err)

	assert.Equal(t, []string{"test_import", "test_main"}, obs.modules)
	assert.Len(t, obs.tests, res.TestCount())
	assert.Contains(t, logs.String(), "ignoring file")
	assert.Contains(t, logs.String(), "module loaded")
	require.Len(t, res.Ignored, 1)
	assert.Equal(t, domain.ReasonModulePrefix, res.Ignored[0].Reason)
}

func moduleNamed(res *domain.Result, name string) []*domain.ModuleRecord {
	var out []*domain.ModuleRecord
	for _, m := range res.Modules {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}
