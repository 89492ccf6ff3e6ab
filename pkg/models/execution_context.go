package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExecutionMetadata carries timing and positional bookkeeping for one run.
type ExecutionMetadata struct {
	StartTime     time.Time `json:"start_time"`
	CurrentNodeID string    `json:"current_node_id,omitempty"`
	ExecutionPath []string  `json:"execution_path"`
	UserID        string    `json:"user_id,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
}

// ExecutionError is one error accumulated during a run. The full list
// survives even a fatal run so diagnostic context is never lost.
type ExecutionError struct {
	NodeID    string    `json:"node_id,omitempty"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionContext is the single mutable object threaded through a run. It is
// created once at engine entry, mutated in place by each executor and by the
// engine's connector resolver, and owned exclusively by the engine loop. No
// executor may retain a reference beyond its own Execute call.
type ExecutionContext struct {
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	Variables   map[string]any `json:"variables"`
	InputData   map[string]any `json:"input_data"`
	Metadata    ExecutionMetadata
	Errors      []ExecutionError `json:"errors,omitempty"`
}

// NewExecutionContext builds a fresh context for one run. InputData is a
// read-only copy of the initial input; Variables starts seeded with the same
// fields so expressions can address raw input directly.
func NewExecutionContext(workflowID string, input map[string]any) *ExecutionContext {
	variables := make(map[string]any, len(input))
	inputCopy := make(map[string]any, len(input))

	for k, v := range input {
		variables[k] = v
		inputCopy[k] = v
	}

	return &ExecutionContext{
		ExecutionID: GenerateExecutionID(),
		WorkflowID:  workflowID,
		Variables:   variables,
		InputData:   inputCopy,
		Metadata: ExecutionMetadata{
			StartTime:     time.Now().UTC(),
			ExecutionPath: make([]string, 0, 8),
		},
	}
}

// GenerateExecutionID generates a unique execution id.
func GenerateExecutionID() string {
	return "exec-" + uuid.New().String()
}

// SetVariable writes one variable.
func (c *ExecutionContext) SetVariable(key string, value any) {
	c.Variables[key] = value
}

// MergeVariables merges key/value pairs into the variable bag,
// last-write-wins.
func (c *ExecutionContext) MergeVariables(values map[string]any) {
	for k, v := range values {
		c.Variables[k] = v
	}
}

// MergeNodeOutput merges a node's output into the variable bag under
// node-id-prefixed keys, keeping per-node outputs addressable after later
// nodes run.
func (c *ExecutionContext) MergeNodeOutput(nodeID string, output map[string]any) {
	for k, v := range output {
		c.Variables[fmt.Sprintf("%s_%s", nodeID, k)] = v
	}
}

// RecordVisit appends a node to the execution path and marks it current.
// Duplicates are allowed; cycles are bounded by the engine's iteration cap.
func (c *ExecutionContext) RecordVisit(nodeID string) {
	c.Metadata.CurrentNodeID = nodeID
	c.Metadata.ExecutionPath = append(c.Metadata.ExecutionPath, nodeID)
}

// RecordError appends a structured error to the run's error list.
func (c *ExecutionContext) RecordError(nodeID, code, message string) {
	c.Errors = append(c.Errors, ExecutionError{
		NodeID:    nodeID,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Elapsed returns wall-clock time since the run started.
func (c *ExecutionContext) Elapsed() time.Duration {
	return time.Since(c.Metadata.StartTime)
}
