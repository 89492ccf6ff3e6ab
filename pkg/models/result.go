package models

import (
	"time"
)

// ResultMetadata records where and when a node execution result was produced.
type ResultMetadata struct {
	NodeID        string        `json:"node_id"`
	Timestamp     time.Time     `json:"timestamp"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// NodeExecutionResult is produced fresh by each executor invocation and never
// reused. NextConnector is the label matched against outgoing connections to
// pick the next edge.
type NodeExecutionResult struct {
	Success       bool           `json:"success"`
	Output        map[string]any `json:"output,omitempty"`
	NextConnector string         `json:"next_connector,omitempty"`
	Error         string         `json:"error,omitempty"`
	Metadata      ResultMetadata `json:"metadata"`
}

// NewSuccessResult builds a successful result with the standard metadata
// shape.
func NewSuccessResult(nodeID, connector string, output map[string]any, started time.Time) *NodeExecutionResult {
	return &NodeExecutionResult{
		Success:       true,
		Output:        output,
		NextConnector: connector,
		Metadata: ResultMetadata{
			NodeID:        nodeID,
			Timestamp:     time.Now().UTC(),
			ExecutionTime: time.Since(started),
		},
	}
}

// NewErrorResult builds a failed result with the standard metadata shape.
func NewErrorResult(nodeID, message string, started time.Time) *NodeExecutionResult {
	return &NodeExecutionResult{
		Success:       false,
		Error:         message,
		NextConnector: ConnectorError,
		Metadata: ResultMetadata{
			NodeID:        nodeID,
			Timestamp:     time.Now().UTC(),
			ExecutionTime: time.Since(started),
		},
	}
}

// ValidationResult is the outcome of an executor's structural validation of
// its node. Validation is pure: calling it twice yields identical results.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ExecutionStatus is the terminal (or paused) state of a whole run.
type ExecutionStatus string

const (
	ExecutionStatusRunning               ExecutionStatus = "running"
	ExecutionStatusCompleted             ExecutionStatus = "completed"
	ExecutionStatusFailed                ExecutionStatus = "failed"
	ExecutionStatusTimedOut              ExecutionStatus = "timed_out"
	ExecutionStatusMaxIterationsExceeded ExecutionStatus = "max_iterations_exceeded"
	ExecutionStatusPaused                ExecutionStatus = "paused"
)

// ExecutionReport is the final report of one run. A failed execution still
// carries the path taken, partial output and every accumulated error, which
// supports the audit requirements of a compliance-sensitive domain.
type ExecutionReport struct {
	ExecutionID string          `json:"execution_id"`
	WorkflowID  string          `json:"workflow_id"`
	Success     bool            `json:"success"`
	Status      ExecutionStatus `json:"status"`

	// Output is every successful node output merged in visit order,
	// last-write-wins. Variables is the final state of the execution's
	// variable bag, including the initial input and resume merges.
	Output    map[string]any `json:"output,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`

	Decision      map[string]any   `json:"decision,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	Duration      time.Duration    `json:"duration"`
	ExecutionPath []string         `json:"execution_path"`
	Errors        []ExecutionError `json:"errors,omitempty"`
}
