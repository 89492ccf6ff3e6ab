package decision

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Factory creates decision executors.
type Factory struct{}

// NewFactory creates the decision node factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a decision executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node)
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeDecision
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Decision"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Routes execution through one of five decision strategies: simple, complex, multiple, score_based or threshold."
}

// Schema returns the JSON schema for decision node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"decision_type"},
		"properties": map[string]any{
			"decision_type": map[string]any{
				"type": "string",
				"enum": []string{"simple", "complex", "multiple", "score_based", "threshold"},
			},
			"condition":        map[string]any{"type": "string"},
			"conditions":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"logical_operator": map[string]any{"type": "string", "enum": []string{"AND", "OR", "CUSTOM"}},
			"custom_logic":     map[string]any{"type": "string"},
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"condition": map[string]any{"type": "string"},
						"outcome":   map[string]any{"type": "string"},
					},
				},
			},
			"default_outcome": map[string]any{"type": "string"},
			"variable":        map[string]any{"type": "string"},
			"thresholds": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"excellent": map[string]any{"type": "number"},
					"good":      map[string]any{"type": "number"},
					"fair":      map[string]any{"type": "number"},
				},
			},
			"threshold":     map[string]any{"type": "number"},
			"operator":      map[string]any{"type": "string"},
			"connector_map": map[string]any{"type": "object"},
		},
	}
}
