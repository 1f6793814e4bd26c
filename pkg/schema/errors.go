package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single property validation failure.
type ValidationError struct {
	Key    string // Property name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("property %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("property %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidationErrors returns the individual failures when err is an AggregateError.
func ValidationErrors(err error) []*ValidationError {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*ValidationError, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}
