package action

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Factory creates action executors.
type Factory struct{}

// NewFactory creates the action node factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates an action executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node)
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeAction
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Action"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Runs a side-effecting operation such as a credit check, income verification or notification."
}

// Schema returns the JSON schema for action node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"action_type"},
		"properties": map[string]any{
			"action_type": map[string]any{
				"type": "string",
				"enum": []string{
					ActionCreditCheck, ActionIncomeVerification,
					ActionDebtCalculation, ActionRiskAssessment,
					ActionDocumentRequest, ActionNotification, ActionDataUpdate,
				},
			},
			"params": map[string]any{"type": "object"},
		},
	}
}
