package domain

import "time"

// Reason tags why a module or test ended up in a result category
type Reason string

const (
	ReasonPassed         Reason = "passed"
	ReasonDryRun         Reason = "dry run"
	ReasonFailed         Reason = "failed"
	ReasonMatchedExclude Reason = "matched exclude"
	ReasonNotIncluded    Reason = "failed to match include"
	ReasonModulePrefix   Reason = "does not match module prefix"
)

// ModuleSkip pairs a filtered module with the reason it was skipped
type ModuleSkip struct {
	Module *ModuleRecord
	Reason Reason
}

// TestEntry pairs a test with the reason tag of its category
type TestEntry struct {
	Reason Reason
	Test   *TestRecord
}

// IgnoredPath is a file rejected purely by naming rules
type IgnoredPath struct {
	Path   string
	Reason Reason
}

// Result is the complete outcome of one engine run.
// It is built once per run and must not be mutated after it is returned.
type Result struct {
	Modules        []*ModuleRecord // Attempted modules in discovery order
	ModulesSkipped []ModuleSkip
	Ignored        []IgnoredPath

	TestsSucceeded []TestEntry
	TestsFailed    []TestEntry
	TestsSkipped   []TestEntry

	Duration time.Duration
}

// ImportFailures returns the attempted modules that failed to load
func (r *Result) ImportFailures() []*ModuleRecord {
	var failed []*ModuleRecord
	for _, m := range r.Modules {
		if m.Status == ModuleImportFailed {
			failed = append(failed, m)
		}
	}
	return failed
}

// SkippedModules returns the skipped modules carrying the given reason
func (r *Result) SkippedModules(reason Reason) []ModuleSkip {
	var out []ModuleSkip
	for _, s := range r.ModulesSkipped {
		if s.Reason == reason {
			out = append(out, s)
		}
	}
	return out
}

// SkippedTests returns the skipped tests carrying the given reason
func (r *Result) SkippedTests(reason Reason) []TestEntry {
	var out []TestEntry
	for _, e := range r.TestsSkipped {
		if e.Reason == reason {
			out = append(out, e)
		}
	}
	return out
}

// TestCount returns the number of discovered tests
func (r *Result) TestCount() int {
	return len(r.TestsSucceeded) + len(r.TestsFailed) + len(r.TestsSkipped)
}
