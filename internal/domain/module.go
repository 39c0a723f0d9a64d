package domain

// ModuleStatus is the load state of a discovered module
type ModuleStatus int

const (
	ModulePending ModuleStatus = iota
	ModuleLoaded
	ModuleImportFailed
	ModuleSkippedByFilter
)

func (s ModuleStatus) String() string {
	switch s {
	case ModuleLoaded:
		return "loaded"
	case ModuleImportFailed:
		return "import_failed"
	case ModuleSkippedByFilter:
		return "skipped_by_filter"
	default:
		return "pending"
	}
}

// ModuleRecord represents a test module file found by the walker
type ModuleRecord struct {
	Name      string // File name without extension
	Path      string // Path to the module file
	Status    ModuleStatus
	Error     string // Load error message for import_failed
	Traceback string // Load stack trace, only when traceback capture is enabled
}
