package condition

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Factory creates condition executors.
type Factory struct{}

// NewFactory creates the condition node factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a condition executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node)
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeCondition
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Condition"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Evaluates a boolean expression and routes execution to the true or false path."
}

// Schema returns the JSON schema for condition node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"condition"},
		"properties": map[string]any{
			"condition": map[string]any{
				"type":        "string",
				"description": "Boolean expression over execution variables, e.g. creditScore >= 650.",
				"examples": []string{
					"creditScore >= 650",
					`state == "CA" && income > 50000`,
					"isNotEmpty(employerName)",
				},
			},
		},
	}
}
