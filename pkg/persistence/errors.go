package persistence

import "errors"

// Standard persistence error types that all implementations use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrRuleSetNotFound indicates a rule set was not found by the given identifier.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrReportNotFound indicates no execution report exists for the given execution.
	ErrReportNotFound = errors.New("execution report not found")
)

// IsNotFound reports whether the error is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrRuleSetNotFound) ||
		errors.Is(err, ErrReportNotFound)
}
