// Package end provides the terminal-node executor. Reaching an end node is
// the normal termination signal of a graph walk, never an error.
package end

import (
	"context"
	"fmt"
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// Executor snapshots the final variables, computes the run duration and
// optionally attaches a configured decision payload.
type Executor struct {
	node   *models.Node
	config models.EndConfig
}

// NewExecutor creates an end executor bound to the given node.
func NewExecutor(node *models.Node) (*Executor, error) {
	var config models.EndConfig
	if err := node.DecodeConfig(&config); err != nil {
		return nil, fmt.Errorf("node %s: invalid end config: %w", node.ID, err)
	}

	return &Executor{node: node, config: config}, nil
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute always succeeds; the engine treats reaching this node as the
// success terminal state.
func (e *Executor) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	finalVariables := make(map[string]any, len(execCtx.Variables))
	for k, v := range execCtx.Variables {
		finalVariables[k] = v
	}

	output := map[string]any{
		"completed_at":    time.Now().UTC().Format(time.RFC3339),
		"duration_ms":     execCtx.Elapsed().Milliseconds(),
		"final_variables": finalVariables,
	}

	if e.config.Decision != nil {
		output["decision"] = e.config.Decision
	}

	return models.NewSuccessResult(e.node.ID, "", output, started), nil
}

// Validate checks the shared structural requirements.
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

	return result
}
