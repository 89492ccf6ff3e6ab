// Package ruleset provides the rule-set executor: it builds a rule-evaluation
// context from the shared execution state, runs the configured rules through
// the rule engine and routes on the aggregated decision.
package ruleset

import (
	"context"
	"fmt"
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
	"github.com/decisionflow/decisionflow/pkg/rules"
)

// externalDataKeys are the sub-objects lifted from the execution variables
// into the rule context's external data, when present.
var externalDataKeys = []string{"credit", "income", "fraud", "kyc", "debt"}

// Executor evaluates a rule set (resolved by id, inline, or as a flat rule
// list) and reports the aggregated decision outcome as its connector.
type Executor struct {
	node   *models.Node
	config models.RuleSetConfig
	engine *rules.Engine
	source protocol.RuleSetSource
}

// NewExecutor creates a rule-set executor bound to the given node.
func NewExecutor(node *models.Node, engine *rules.Engine, source protocol.RuleSetSource) (*Executor, error) {
	var config models.RuleSetConfig
	if err := node.DecodeConfig(&config); err != nil {
		return nil, fmt.Errorf("node %s: invalid rule_set config: %w", node.ID, err)
	}

	if config.RuleSetID == "" && config.RuleSet == nil && len(config.Rules) == 0 {
		return nil, fmt.Errorf("node %s: rule_set nodes require one of rule_set_id, rule_set or rules", node.ID)
	}

	return &Executor{node: node, config: config, engine: engine, source: source}, nil
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute builds the rule context, runs the rules and reports the decision
// outcome connector (approved, declined or review).
func (e *Executor) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	ruleCtx := buildRuleContext(execCtx)

	results, decision, err := e.evaluate(ctx, ruleCtx)
	if err != nil {
		return models.NewErrorResult(e.node.ID, err.Error(), started), nil
	}

	output := map[string]any{
		"decision":           string(decision.Outcome),
		"matched_rules":      decision.MatchedRules,
		"flags":              decision.Flags,
		"required_documents": decision.RequiredDocuments,
		"messages":           decision.Messages,
		"rules_evaluated":    len(results),
	}
	if decision.Score != nil {
		output["score"] = *decision.Score
	}

	execCtx.MergeNodeOutput(e.node.ID, map[string]any{"decision": string(decision.Outcome)})

	connector := string(decision.Outcome)
	if connector == "" {
		connector = models.ConnectorDefault
	}

	return models.NewSuccessResult(e.node.ID, connector, output, started), nil
}

func (e *Executor) evaluate(ctx context.Context, ruleCtx rules.Context) ([]models.RuleExecutionResult, models.RuleDecision, error) {
	switch {
	case e.config.RuleSet != nil:
		results, decision := e.engine.ExecuteRuleSet(*e.config.RuleSet, ruleCtx)
		return results, decision, nil

	case e.config.RuleSetID != "":
		if e.source == nil {
			return nil, models.RuleDecision{}, fmt.Errorf("node %s references rule set %q but no rule-set source is configured", e.node.ID, e.config.RuleSetID)
		}

		ruleSet, err := e.source.RuleSetByID(ctx, e.config.RuleSetID)
		if err != nil {
			return nil, models.RuleDecision{}, fmt.Errorf("failed to resolve rule set %q: %w", e.config.RuleSetID, err)
		}

		results, decision := e.engine.ExecuteRuleSet(*ruleSet, ruleCtx)

		return results, decision, nil

	default:
		// A flat rule list shares the same aggregation policy as a full
		// rule set, evaluated in declaration order.
		results := e.engine.ExecuteRules(e.config.Rules, ruleCtx)
		return results, rules.AggregateDecision(results), nil
	}
}

// buildRuleContext extracts application data (the raw input plus every
// accumulated variable) and external data (the well-known provider
// sub-objects, only when present) from the shared execution state.
func buildRuleContext(execCtx *models.ExecutionContext) rules.Context {
	app := make(map[string]any, len(execCtx.InputData)+len(execCtx.Variables))

	for k, v := range execCtx.InputData {
		app[k] = v
	}

	for k, v := range execCtx.Variables {
		app[k] = v
	}

	external := make(map[string]any)

	for _, key := range externalDataKeys {
		if sub, ok := execCtx.Variables[key]; ok {
			external[key] = sub
		}
	}

	return rules.Context{ApplicationData: app, ExternalData: external}
}

// Validate checks structural requirements plus the rule-source configuration.
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

	if e.config.RuleSetID == "" && e.config.RuleSet == nil && len(e.config.Rules) == 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, "rule_set nodes require one of rule_set_id, rule_set or rules")
	}

	if e.config.RuleSetID != "" && e.source == nil {
		result.Warnings = append(result.Warnings, "rule_set_id configured without a rule-set source")
	}

	return result
}
