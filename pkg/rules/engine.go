package rules

import (
	"log/slog"
	"sort"
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// Engine evaluates prioritized rule sets against an application/external-data
// context and aggregates the matched rules' actions into one decision.
type Engine struct {
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewEngine creates a rule engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		evaluator: NewEvaluator(logger),
		logger:    logger,
	}
}

// ExecuteRule evaluates every condition of one rule and combines the results
// with the rule's logical operator. Actions are populated only when the rule
// matched.
func (e *Engine) ExecuteRule(rule models.Rule, ctx Context) models.RuleExecutionResult {
	started := time.Now()

	trace := make([]models.ConditionTrace, 0, len(rule.Conditions))

	for _, cond := range rule.Conditions {
		trace = append(trace, e.evaluator.Evaluate(cond, ctx))
	}

	matched := combine(trace, rule.LogicalOperator)

	result := models.RuleExecutionResult{
		RuleID:        rule.ID,
		Matched:       matched,
		ExecutionTime: time.Since(started),
		Trace:         trace,
	}

	if matched {
		result.Actions = rule.Actions
	}

	return result
}

// ExecuteRuleSet orders the set's rules by its execution-order policy, skips
// disabled rules, evaluates each and aggregates the outcome.
func (e *Engine) ExecuteRuleSet(ruleSet models.RuleSet, ctx Context) ([]models.RuleExecutionResult, models.RuleDecision) {
	ordered := orderRules(ruleSet.Rules, ruleSet.ExecutionOrder)

	results := e.ExecuteRules(ordered, ctx)

	return results, AggregateDecision(results)
}

// ExecuteRules evaluates a flat list of rules in the given order, skipping
// disabled ones.
func (e *Engine) ExecuteRules(ordered []models.Rule, ctx Context) []models.RuleExecutionResult {
	results := make([]models.RuleExecutionResult, 0, len(ordered))

	for _, rule := range ordered {
		if !rule.Enabled {
			continue
		}

		result := e.ExecuteRule(rule, ctx)
		results = append(results, result)

		if e.logger != nil {
			e.logger.Debug("Evaluated rule",
				"rule_id", rule.ID,
				"matched", result.Matched,
				"priority", rule.Priority)
		}
	}

	return results
}

// orderRules returns rules sorted by descending priority when the policy is
// "priority" (stable: ties preserve declaration order). Every other policy
// preserves declaration order; "parallel" sets declare intent only, the
// evaluation itself stays sequential.
func orderRules(rules []models.Rule, order models.RuleExecutionOrder) []models.Rule {
	ordered := make([]models.Rule, len(rules))
	copy(ordered, rules)

	if order == models.ExecutionOrderPriority {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Priority > ordered[j].Priority
		})
	}

	return ordered
}

// combine folds per-condition outcomes with the rule's logical operator.
// AND is the default; a rule with no conditions matches.
func combine(trace []models.ConditionTrace, op models.LogicalOperator) bool {
	if len(trace) == 0 {
		return true
	}

	if op == models.LogicalOr {
		for _, t := range trace {
			if t.Matched {
				return true
			}
		}

		return false
	}

	for _, t := range trace {
		if !t.Matched {
			return false
		}
	}

	return true
}

// AggregateDecision walks matched rules' actions in rule order and produces
// one decision. The outcome precedence is fixed business policy: any decline
// wins outright; approval requires at least one approve and zero reviews;
// everything else lands in review, the conservative default.
func AggregateDecision(results []models.RuleExecutionResult) models.RuleDecision {
	decision := models.RuleDecision{}

	flags := make(map[string]bool)
	documents := make(map[string]bool)

	for _, result := range results {
		if !result.Matched {
			continue
		}

		decision.MatchedRules = append(decision.MatchedRules, result.RuleID)

		for _, action := range result.Actions {
			if action.Message != "" {
				decision.Messages = append(decision.Messages, action.Message)
			}

			switch action.Type {
			case models.RuleActionApprove:
				decision.Approvals++
			case models.RuleActionDecline:
				decision.Declines++
			case models.RuleActionReview:
				decision.Reviews++
			case models.RuleActionSetScore:
				if score, ok := toNumber(action.Value); ok {
					if decision.Score == nil || score > *decision.Score {
						s := score
						decision.Score = &s
					}
				}
			case models.RuleActionAddFlag:
				if flag, ok := action.Value.(string); ok && !flags[flag] {
					flags[flag] = true

					decision.Flags = append(decision.Flags, flag)
				}
			case models.RuleActionRequireDocument:
				if doc, ok := action.Value.(string); ok && !documents[doc] {
					documents[doc] = true

					decision.RequiredDocuments = append(decision.RequiredDocuments, doc)
				}
			}
		}
	}

	switch {
	case decision.Declines > 0:
		decision.Outcome = models.OutcomeDeclined
	case decision.Approvals > 0 && decision.Reviews == 0:
		decision.Outcome = models.OutcomeApproved
	default:
		decision.Outcome = models.OutcomeReview
	}

	return decision
}
