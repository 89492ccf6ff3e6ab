package engine

import "errors"

// Error codes recorded on ExecutionError entries and surfaced in reports.
const (
	CodeStructural    = "structural_error"
	CodeNodeExecution = "node_execution_error"
	CodeExpression    = "expression_error"
	CodeTimeout       = "timeout"
	CodeMaxIterations = "max_iterations_exceeded"
)

var (
	ErrExecutionNotFound  = errors.New("execution not found")
	ErrExecutionNotActive = errors.New("execution is not active")
	ErrOperationNotFound  = errors.New("operation not found")
	ErrOperationFinished  = errors.New("operation already finished")
)
