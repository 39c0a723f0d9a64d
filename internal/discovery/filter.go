package discovery

import (
	"regexp"

	"clinic/internal/domain"
	"clinic/internal/errors"
)

// Filter selects names with optional include and exclude regular expressions.
// Patterns match anywhere in the name.
type Filter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewFilter compiles the include and exclude patterns. An empty pattern is unset.
func NewFilter(include, exclude string) (*Filter, error) {
	f := &Filter{}
	var err error
	if include != "" {
		if f.include, err = regexp.Compile(include); err != nil {
			return nil, errors.Config("invalid include pattern", err)
		}
	}
	if exclude != "" {
		if f.exclude, err = regexp.Compile(exclude); err != nil {
			return nil, errors.Config("invalid exclude pattern", err)
		}
	}
	return f, nil
}

// Check returns the skip reason for name. Exclude wins over include; ok is true when the name is selected.
func (f *Filter) Check(name string) (reason domain.Reason, ok bool) {
	if f == nil {
		return "", true
	}
	if f.exclude != nil && f.exclude.MatchString(name) {
		return domain.ReasonMatchedExclude, false
	}
	if f.include != nil && !f.include.MatchString(name) {
		return domain.ReasonNotIncluded, false
	}
	return "", true
}
