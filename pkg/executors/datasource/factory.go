package datasource

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Factory creates data-source executors sharing one connector lookup.
type Factory struct {
	lookup Lookup
}

// NewFactory creates the data_source node factory.
func NewFactory(lookup Lookup) *Factory {
	return &Factory{lookup: lookup}
}

// Create creates a data-source executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node, f.lookup)
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeDataSource
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Data Source"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Fetches external data through a registered connector and merges the response into the execution context."
}

// Schema returns the JSON schema for data_source node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"source_id"},
		"properties": map[string]any{
			"source_id":   map[string]any{"type": "string"},
			"fields":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"context_key": map[string]any{"type": "string"},
			"params":      map[string]any{"type": "object"},
		},
	}
}
