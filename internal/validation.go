package internal

import (
	"maps"
	"slices"
	"strings"
)

// Validator is implemented by request payloads that check themselves after binding.
type Validator interface {
	Validate() error
}

// ValidationErrors maps field names to a human readable problem.
// It implements error so Validate can return it directly; the JSON error
// handler renders it as 422 with a "fields" object.
type ValidationErrors map[string]string

// Add records a problem for field. The first message per field wins.
func (v ValidationErrors) Add(field, message string) {
	if _, ok := v[field]; !ok {
		v[field] = message
	}
}

// Has reports whether field has a recorded problem.
func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Err returns v as an error, or nil when no problem was recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	fields := slices.Sorted(maps.Keys(v))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
