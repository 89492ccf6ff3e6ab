package end

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Factory creates end executors.
type Factory struct{}

// NewFactory creates the end node factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates an end executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node)
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeEnd
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "End"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Terminal node. Snapshots the final state and optionally attaches a decision payload."
}

// Schema returns the JSON schema for end node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"decision": map[string]any{"type": "object"},
		},
	}
}
