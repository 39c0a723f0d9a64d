package storage

import (
	"clinic/internal/domain"
	"clinic/internal/parser"
)

// Storage writes a finished run in a machine-readable form
type Storage interface {
	Save(res *domain.Result, exitStatus int, dryRun bool) error
}

// JSONStorage stores a run as a JSON document at a fixed path
type JSONStorage struct {
	path   string
	parser parser.Parser
}

// NewJSONStorage returns a Storage that writes to path
func NewJSONStorage(path string, p parser.Parser) *JSONStorage {
	return &JSONStorage{path: path, parser: p}
}
