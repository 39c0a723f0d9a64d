package domain

import "time"

// TestStatus is the final classification of a discovered test
type TestStatus int

const (
	TestPending TestStatus = iota
	TestSucceeded
	TestFailed
	TestSkippedExcluded
	TestSkippedNotIncluded
)

func (s TestStatus) String() string {
	switch s {
	case TestSucceeded:
		return "succeeded"
	case TestFailed:
		return "failed"
	case TestSkippedExcluded:
		return "skipped_excluded"
	case TestSkippedNotIncluded:
		return "skipped_not_included"
	default:
		return "pending"
	}
}

// TestRecord represents a single test callable discovered inside a module
type TestRecord struct {
	Name   string        // Callable name
	Module *ModuleRecord // Owning module (back-reference only)
	Status TestStatus

	Error     string // Message of the raised error, if any
	Traceback string // Stack trace, only when traceback capture is enabled

	Returned string // String form of a non-nil return value (informational)
	Output   string // Captured print output
	Duration time.Duration
}

// FullName returns module.test
func (t *TestRecord) FullName() string {
	if t.Module == nil {
		return t.Name
	}
	return t.Module.Name + "." + t.Name
}
