package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates no file matched the requested name in any search
// location. It carries the list of valid alternatives so the operator can
// self-correct without re-reading source.
type NotFoundError struct {
	Kind      string // "workflow" or "template"
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s %q not found (no %ss available)", e.Kind, e.Name, e.Kind)
	}

	return fmt.Sprintf("%s %q not found, available: %s", e.Kind, e.Name, strings.Join(e.Available, ", "))
}

// Issue is a single schema violation, addressed by field path.
type Issue struct {
	Path   string
	Reason string
}

// ValidationError reports every schema violation found in a parsed workflow
// document. A workflow that fails validation never reaches the engine.
type ValidationError struct {
	Name   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "invalid workflow %q:", e.Name)

	for _, issue := range e.Issues {
		fmt.Fprintf(&b, "\n  - %s: %s", issue.Path, issue.Reason)
	}

	return b.String()
}

// IsNotFound checks if an error indicates a missing workflow or template.
func IsNotFound(err error) bool {
	var target *NotFoundError

	return errors.As(err, &target)
}

// IsValidation checks if an error indicates a malformed workflow definition.
func IsValidation(err error) bool {
	var target *ValidationError

	return errors.As(err, &target)
}
