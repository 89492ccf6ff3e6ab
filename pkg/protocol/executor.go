// Package protocol defines the interfaces and contracts for pluggable node
// executors and data-source connectors.
package protocol

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// NodeExecutor executes one node of a workflow graph. An executor instance is
// bound to a single node at creation time; it consumes the shared execution
// context and produces a result carrying the next connector label. Executors
// never mutate the node, only the context, and must return an error result
// rather than let a failure escape to the engine.
type NodeExecutor interface {
	// Execute runs the node's business logic against the execution context.
	Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error)

	// Validate performs structural checks of the bound node's configuration.
	// It is pure: repeated calls yield identical results.
	Validate() models.ValidationResult

	// Node returns the node this executor is bound to.
	Node() *models.Node
}

// ExecutorFactory creates node executor instances and provides metadata about
// the node type.
type ExecutorFactory interface {
	// Create creates an executor bound to the given node.
	Create(ctx context.Context, node *models.Node) (NodeExecutor, error)

	// Type returns the node type this factory serves.
	Type() models.NodeType

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node type does.
	Description() string

	// Schema returns the JSON schema for configuring this node type.
	Schema() map[string]any
}
