package discovery

import (
	"strings"

	"clinic/internal/domain"
	"clinic/internal/loader"
)

// Discoverer selects test callables from loaded modules
type Discoverer struct {
	prefix string
}

// NewDiscoverer creates a Discoverer for the given test name prefix
func NewDiscoverer(prefix string) *Discoverer {
	return &Discoverer{prefix: prefix}
}

// Discover returns one unclassified test record per zero-argument callable whose name starts
// with the prefix, in the order of bindings
func (d *Discoverer) Discover(bindings []loader.Binding, module *domain.ModuleRecord) []*domain.TestRecord {
	var tests []*domain.TestRecord
	for _, b := range bindings {
		if !strings.HasPrefix(b.Name, d.prefix) || !b.Callable() {
			continue
		}
		tests = append(tests, &domain.TestRecord{
			Name:   b.Name,
			Module: module,
		})
	}
	return tests
}
