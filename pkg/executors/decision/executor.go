// Package decision provides the multi-strategy decision executor: simple and
// complex boolean decisions, ordered multi-option matching, score bucketing
// and threshold comparison.
package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/decisionflow/decisionflow/pkg/expression"
	"github.com/decisionflow/decisionflow/pkg/models"
)

// Outcome labels produced by the non-boolean strategies.
const (
	OutcomeExcellent = "excellent"
	OutcomeGood      = "good"
	OutcomeFair      = "fair"
	OutcomePoor      = "poor"
	OutcomeAbove     = "above"
	OutcomeBelow     = "below"
)

// Executor runs one of five decision strategies selected by the node's
// decision type and maps the outcome to a connector label.
type Executor struct {
	node   *models.Node
	config models.DecisionConfig
}

// NewExecutor creates a decision executor bound to the given node.
func NewExecutor(node *models.Node) (*Executor, error) {
	var config models.DecisionConfig
	if err := node.DecodeConfig(&config); err != nil {
		return nil, fmt.Errorf("node %s: invalid decision config: %w", node.ID, err)
	}

	if !config.DecisionType.IsValid() {
		return nil, fmt.Errorf("node %s: unknown decision type %q", node.ID, config.DecisionType)
	}

	return &Executor{node: node, config: config}, nil
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute evaluates the configured strategy and reports the mapped connector.
func (e *Executor) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	env := expression.ContextEnv(execCtx)

	outcome, detail, err := e.decide(env)
	if err != nil {
		return models.NewErrorResult(e.node.ID,
			fmt.Sprintf("decision evaluation failed: %v", err), started), nil
	}

	connector := e.resolveConnector(outcome)

	output := map[string]any{
		"decision_outcome": outcome,
		"decision_type":    string(e.config.DecisionType),
	}
	for k, v := range detail {
		output[k] = v
	}

	execCtx.MergeNodeOutput(e.node.ID, map[string]any{"outcome": outcome})

	return models.NewSuccessResult(e.node.ID, connector, output, started), nil
}

func (e *Executor) decide(env map[string]any) (string, map[string]any, error) {
	switch e.config.DecisionType {
	case models.DecisionTypeSimple:
		return e.decideSimple(env)
	case models.DecisionTypeComplex:
		return e.decideComplex(env)
	case models.DecisionTypeMultiple:
		return e.decideMultiple(env)
	case models.DecisionTypeScoreBased:
		return e.decideScoreBased(env)
	case models.DecisionTypeThreshold:
		return e.decideThreshold(env)
	default:
		return "", nil, fmt.Errorf("unknown decision type %q", e.config.DecisionType)
	}
}

// decideSimple evaluates one condition into a true/false outcome.
func (e *Executor) decideSimple(env map[string]any) (string, map[string]any, error) {
	matched, err := expression.EvaluateBool(e.config.Condition, env)
	if err != nil {
		return "", nil, err
	}

	return boolOutcome(matched), nil, nil
}

// decideComplex evaluates every condition and combines them with AND, OR or
// a custom boolean expression over C0..Cn placeholders.
func (e *Executor) decideComplex(env map[string]any) (string, map[string]any, error) {
	results := make([]bool, len(e.config.Conditions))

	for i, cond := range e.config.Conditions {
		matched, err := expression.EvaluateBool(cond, env)
		if err != nil {
			return "", nil, fmt.Errorf("condition %d: %w", i, err)
		}

		results[i] = matched
	}

	detail := map[string]any{"condition_results": results}

	switch e.config.LogicalOperator {
	case "OR":
		for _, r := range results {
			if r {
				return boolOutcome(true), detail, nil
			}
		}

		return boolOutcome(false), detail, nil
	case "CUSTOM":
		logicEnv := make(map[string]any, len(results))
		for i, r := range results {
			logicEnv[fmt.Sprintf("C%d", i)] = r
		}

		matched, err := expression.EvaluateBool(e.config.CustomLogic, logicEnv)
		if err != nil {
			return "", nil, fmt.Errorf("custom logic: %w", err)
		}

		return boolOutcome(matched), detail, nil
	default: // AND
		for _, r := range results {
			if !r {
				return boolOutcome(false), detail, nil
			}
		}

		return boolOutcome(true), detail, nil
	}
}

// decideMultiple returns the first matching option's outcome, falling back to
// the configured default.
func (e *Executor) decideMultiple(env map[string]any) (string, map[string]any, error) {
	for i, option := range e.config.Options {
		matched, err := expression.EvaluateBool(option.Condition, env)
		if err != nil {
			return "", nil, fmt.Errorf("option %d: %w", i, err)
		}

		if matched {
			return option.Outcome, map[string]any{"matched_option": i}, nil
		}
	}

	outcome := e.config.DefaultOutcome
	if outcome == "" {
		outcome = models.ConnectorDefault
	}

	return outcome, map[string]any{"matched_option": -1}, nil
}

// decideScoreBased buckets a numeric variable against the configured
// thresholds (defaults 800/700/600).
func (e *Executor) decideScoreBased(env map[string]any) (string, map[string]any, error) {
	value, err := e.numericVariable(env)
	if err != nil {
		return "", nil, err
	}

	thresholds := models.DefaultScoreThresholds()
	if e.config.Thresholds != nil {
		thresholds = *e.config.Thresholds
	}

	detail := map[string]any{"score_value": value}

	switch {
	case value >= thresholds.Excellent:
		return OutcomeExcellent, detail, nil
	case value >= thresholds.Good:
		return OutcomeGood, detail, nil
	case value >= thresholds.Fair:
		return OutcomeFair, detail, nil
	default:
		return OutcomePoor, detail, nil
	}
}

// decideThreshold compares a numeric variable against the configured
// threshold; the outcome is above or below.
func (e *Executor) decideThreshold(env map[string]any) (string, map[string]any, error) {
	value, err := e.numericVariable(env)
	if err != nil {
		return "", nil, err
	}

	op := e.config.Operator
	if op == "" {
		op = ">="
	}

	var above bool

	switch op {
	case ">":
		above = value > e.config.Threshold
	case ">=":
		above = value >= e.config.Threshold
	case "<":
		above = value < e.config.Threshold
	case "<=":
		above = value <= e.config.Threshold
	case "==":
		above = value == e.config.Threshold
	case "!=":
		above = value != e.config.Threshold
	default:
		return "", nil, fmt.Errorf("unknown threshold operator %q", op)
	}

	detail := map[string]any{"threshold_value": value, "threshold": e.config.Threshold}

	if above {
		return OutcomeAbove, detail, nil
	}

	return OutcomeBelow, detail, nil
}

func (e *Executor) numericVariable(env map[string]any) (float64, error) {
	raw, ok := env[e.config.Variable]
	if !ok {
		return 0, fmt.Errorf("variable %q not found in execution context", e.config.Variable)
	}

	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("variable %q is not numeric (got %T)", e.config.Variable, raw)
	}
}

// resolveConnector maps a decision outcome to a connector label. An explicit
// connector map takes priority; otherwise a fixed fallback table covers the
// common outcomes and unknown outcomes pass through as the connector name.
func (e *Executor) resolveConnector(outcome string) string {
	if connector, ok := e.config.ConnectorMap[outcome]; ok {
		return connector
	}

	switch outcome {
	case models.ConnectorTrue, OutcomeAbove, OutcomeExcellent, OutcomeGood:
		return models.ConnectorTrue
	case models.ConnectorFalse, OutcomeBelow, OutcomePoor:
		return models.ConnectorFalse
	case OutcomeFair, models.ConnectorReview:
		return models.ConnectorReview
	default:
		return outcome
	}
}

func boolOutcome(matched bool) string {
	if matched {
		return models.ConnectorTrue
	}

	return models.ConnectorFalse
}

// Validate checks structural requirements plus the per-strategy required
// configuration.
func (e *Executor) Validate() models.ValidationResult {
	result := models.ValidationResult{IsValid: true}

	fail := func(msg string) {
		result.IsValid = false
		result.Errors = append(result.Errors, msg)
	}

	if e.node.ID == "" {
		fail("node id is required")
	}

	if e.node.Name == "" {
		fail("node label is required")
	}

	switch e.config.DecisionType {
	case models.DecisionTypeSimple:
		if e.config.Condition == "" {
			fail("simple decisions require 'condition'")
		}
	case models.DecisionTypeComplex:
		if len(e.config.Conditions) == 0 {
			fail("complex decisions require at least one condition")
		}

		if e.config.LogicalOperator == "CUSTOM" && e.config.CustomLogic == "" {
			fail("custom logic operator requires 'custom_logic'")
		}
	case models.DecisionTypeMultiple:
		if len(e.config.Options) == 0 {
			fail("multiple decisions require at least one option")
		}

		if e.config.DefaultOutcome == "" {
			result.Warnings = append(result.Warnings, "no default outcome configured; unmatched decisions report 'default'")
		}
	case models.DecisionTypeScoreBased, models.DecisionTypeThreshold:
		if e.config.Variable == "" {
			fail("score and threshold decisions require 'variable'")
		}

		if e.config.DecisionType == models.DecisionTypeScoreBased && e.config.Thresholds == nil {
			result.Warnings = append(result.Warnings, "no thresholds configured; using defaults 800/700/600")
		}
	default:
		fail(fmt.Sprintf("unknown decision type %q", e.config.DecisionType))
	}

	return result
}
