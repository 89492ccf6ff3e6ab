package ruleset

import (
	"context"
	"log/slog"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
	"github.com/decisionflow/decisionflow/pkg/rules"
)

// Factory creates rule-set executors sharing one rule engine and rule-set
// source.
type Factory struct {
	engine *rules.Engine
	source protocol.RuleSetSource
}

// NewFactory creates the rule_set node factory. The source may be nil when
// every rule set is declared inline.
func NewFactory(logger *slog.Logger, source protocol.RuleSetSource) *Factory {
	return &Factory{
		engine: rules.NewEngine(logger),
		source: source,
	}
}

// Create creates a rule-set executor bound to the node.
func (f *Factory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return NewExecutor(node, f.engine, f.source)
}

// Type returns the node type this factory serves.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeRuleSet
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Rule Set"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Evaluates prioritized business rules and routes on the aggregated approve/decline/review decision."
}

// Schema returns the JSON schema for rule_set node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rule_set_id": map[string]any{"type": "string"},
			"rule_set":    map[string]any{"type": "object"},
			"rules":       map[string]any{"type": "array"},
		},
	}
}
