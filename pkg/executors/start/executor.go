// Package start provides the entry-node executor that seeds the execution
// context for a run.
package start

import (
	"context"
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// Executor seeds the execution variables with the initial input, the start
// time and the execution id. It always succeeds.
type Executor struct {
	node *models.Node
}

// NewExecutor creates a start executor bound to the given node.
func NewExecutor(node *models.Node) *Executor {
	return &Executor{node: node}
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute seeds the context and reports the success connector.
func (e *Executor) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	execCtx.MergeVariables(execCtx.InputData)
	execCtx.SetVariable("startTime", execCtx.Metadata.StartTime.Format(time.RFC3339))
	execCtx.SetVariable("executionId", execCtx.ExecutionID)

	output := map[string]any{
		"started_at":   execCtx.Metadata.StartTime,
		"execution_id": execCtx.ExecutionID,
		"input_fields": len(execCtx.InputData),
	}

	return models.NewSuccessResult(e.node.ID, models.ConnectorSuccess, output, started), nil
}

// Validate checks the shared structural requirements; start nodes carry no
// configuration of their own.
func (e *Executor) Validate() models.ValidationResult {
	result := models.ValidationResult{IsValid: true}

	if e.node.ID == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "node id is required")
	}

	if e.node.Name == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "node label is required")
	}

	if len(e.node.Config) > 0 {
		result.Warnings = append(result.Warnings, "start nodes ignore configuration")
	}

	return result
}
