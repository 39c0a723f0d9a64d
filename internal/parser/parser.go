package parser

import "clinic/internal/domain"

// Parser extracts exportable failures from a finished run
type Parser interface {
	ParseFailures(res *domain.Result) []domain.TestFailure
}
