// Package web provides the REST API for workflow management and execution.
package web

// ExecuteWorkflowRequest is the request body for starting an execution.
type ExecuteWorkflowRequest struct {
	Input     map[string]any `json:"input"`
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`

	// TimeoutMs bounds the run; zero means no timeout.
	TimeoutMs int `json:"timeout_ms,omitempty" validate:"gte=0"`

	// MaxIterations overrides the engine's node-visit cap; zero keeps the
	// default.
	MaxIterations int `json:"max_iterations,omitempty" validate:"gte=0"`

	// Async starts the execution in the background and returns the
	// execution id immediately.
	Async bool `json:"async,omitempty"`
}

// ExecutionStartedResponse is returned for async executions.
type ExecutionStartedResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
}

// ResumeExecutionRequest is the request body for resuming a paused
// execution.
type ResumeExecutionRequest struct {
	Variables map[string]any `json:"variables"`
}

// PauseExecutionRequest is the request body for pausing a running execution.
type PauseExecutionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CompleteOperationRequest is the request body for finishing an async
// operation.
type CompleteOperationRequest struct {
	Result map[string]any `json:"result"`
	Error  string         `json:"error,omitempty"`
}

// NodeTypeResponse describes one registered node executor type.
type NodeTypeResponse struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
}
