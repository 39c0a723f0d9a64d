package domain

// TestFailure is the exported view of a failed test or a failed module import
type TestFailure struct {
	TestName   string   `json:"test_name,omitempty"`
	ModuleName string   `json:"module_name"`
	FilePath   string   `json:"file_path"`
	Kind       string   `json:"kind"` // "test" or "import"
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace,omitempty"`
	File       string   `json:"file,omitempty"`
	Line       int      `json:"line,omitempty"`
}

// Failure kinds
const (
	FailureTest   = "test"
	FailureImport = "import"
)

// ResultsMeta contains summary data about a run
type ResultsMeta struct {
	RunID           string  `json:"run_id"`
	Timestamp       string  `json:"timestamp"`
	DryRun          bool    `json:"dry_run"`
	ModulesLoaded   int     `json:"modules_loaded"`
	ModulesFailed   int     `json:"modules_failed"`
	ModulesSkipped  int     `json:"modules_skipped"`
	TestsSucceeded  int     `json:"tests_succeeded"`
	TestsFailed     int     `json:"tests_failed"`
	TestsSkipped    int     `json:"tests_skipped"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	ExitStatus      int     `json:"exit_status"`
}

// ModuleSummary is the exported view of a module record
type ModuleSummary struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// TestSummary is the exported view of a test record
type TestSummary struct {
	Module   string  `json:"module"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Reason   string  `json:"reason"`
	Returned string  `json:"returned,omitempty"`
	Seconds  float64 `json:"seconds"`
}

// ResultsOutput is the complete machine-readable document for one run
type ResultsOutput struct {
	Meta    ResultsMeta     `json:"meta"`
	Modules []ModuleSummary `json:"modules"`
	Tests   []TestSummary   `json:"tests"`
	Details []TestFailure   `json:"details"`
}
