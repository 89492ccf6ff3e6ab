package start

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Factory creates start executors.
type Factory struct{}

// NewFactory creates the start node factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a start executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node), nil
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeStart
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Start"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Entry point of a workflow. Seeds the execution context with the initial input."
}

// Schema returns the JSON schema for start node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": true,
	}
}
