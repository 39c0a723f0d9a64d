package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"clinic/internal/domain"
	"clinic/internal/errors"
)

// Save writes the run summary, every module and test, and the parsed failures to the output file.
func (s *JSONStorage) Save(res *domain.Result, exitStatus int, dryRun bool) error {
	output := s.Build(res, exitStatus, dryRun)

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "marshal results")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WithStackTraceAndPrefix(err, "create output dir %s", dir)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.WithStackTraceAndPrefix(err, "write results to %s", s.path)
	}
	return nil
}

// Build assembles the exported document for a run
func (s *JSONStorage) Build(res *domain.Result, exitStatus int, dryRun bool) *domain.ResultsOutput {
	output := &domain.ResultsOutput{
		Meta: domain.ResultsMeta{
			RunID:           uuid.NewString(),
			Timestamp:       time.Now().Format(time.RFC3339),
			DryRun:          dryRun,
			ModulesFailed:   len(res.ImportFailures()),
			ModulesSkipped:  len(res.ModulesSkipped),
			TestsSucceeded:  len(res.TestsSucceeded),
			TestsFailed:     len(res.TestsFailed),
			TestsSkipped:    len(res.TestsSkipped),
			Duration:        res.Duration.String(),
			DurationSeconds: res.Duration.Seconds(),
			ExitStatus:      exitStatus,
		},
		Modules: []domain.ModuleSummary{},
		Tests:   []domain.TestSummary{},
		Details: []domain.TestFailure{},
	}
	output.Meta.ModulesLoaded = len(res.Modules) - output.Meta.ModulesFailed

	for _, m := range res.Modules {
		output.Modules = append(output.Modules, domain.ModuleSummary{
			Name:   m.Name,
			Path:   m.Path,
			Status: m.Status.String(),
		})
	}
	for _, skip := range res.ModulesSkipped {
		output.Modules = append(output.Modules, domain.ModuleSummary{
			Name:   skip.Module.Name,
			Path:   skip.Module.Path,
			Status: skip.Module.Status.String(),
			Reason: string(skip.Reason),
		})
	}

	for _, section := range [][]domain.TestEntry{res.TestsSucceeded, res.TestsFailed, res.TestsSkipped} {
		for _, e := range section {
			summary := domain.TestSummary{
				Name:     e.Test.Name,
				Status:   e.Test.Status.String(),
				Reason:   string(e.Reason),
				Returned: e.Test.Returned,
				Seconds:  e.Test.Duration.Seconds(),
			}
			if e.Test.Module != nil {
				summary.Module = e.Test.Module.Name
			}
			output.Tests = append(output.Tests, summary)
		}
	}

	if failures := s.parser.ParseFailures(res); len(failures) > 0 {
		output.Details = failures
	}

	return output
}
