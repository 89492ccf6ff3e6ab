// Package condition provides the conditional branching executor. It evaluates
// a single boolean expression and routes execution to the true or false edge.
package condition

import (
	"context"
	"fmt"
	"time"

	"github.com/decisionflow/decisionflow/pkg/expression"
	"github.com/decisionflow/decisionflow/pkg/models"
)

// Executor evaluates the configured condition expression against the
// execution variables and input data. A malformed expression is a hard error,
// not a false result.
type Executor struct {
	node   *models.Node
	config models.ConditionConfig
}

// NewExecutor creates a condition executor bound to the given node.
func NewExecutor(node *models.Node) (*Executor, error) {
	var config models.ConditionConfig
	if err := node.DecodeConfig(&config); err != nil {
		return nil, fmt.Errorf("node %s: invalid condition config: %w", node.ID, err)
	}

	if config.Condition == "" {
		return nil, fmt.Errorf("node %s: missing required field 'condition'", node.ID)
	}

	return &Executor{node: node, config: config}, nil
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute evaluates the condition and reports the "true" or "false"
// connector.
func (e *Executor) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	env := expression.ContextEnv(execCtx)

	matched, err := expression.EvaluateBool(e.config.Condition, env)
	if err != nil {
		return models.NewErrorResult(e.node.ID,
			fmt.Sprintf("condition evaluation failed: %v", err), started), nil
	}

	connector := models.ConnectorFalse
	if matched {
		connector = models.ConnectorTrue
	}

	output := map[string]any{
		"condition_result": matched,
		"condition":        e.config.Condition,
	}

	execCtx.MergeNodeOutput(e.node.ID, map[string]any{"result": matched})

	return models.NewSuccessResult(e.node.ID, connector, output, started), nil
}

// Validate checks structural requirements plus the condition expression.
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

	if e.config.Condition == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "missing required field 'condition'")
	} else if _, err := expression.Compile(e.config.Condition); err != nil {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("condition does not compile: %v", err))
	}

	return result
}
