package models

import (
	"time"
)

// Operator is the closed set of comparison operators a rule condition may
// use. Every operator is a total function over possibly-missing operands.
type Operator string

const (
	OperatorEquals             Operator = "equals"
	OperatorNotEquals          Operator = "not_equals"
	OperatorGreaterThan        Operator = "greater_than"
	OperatorGreaterThanOrEqual Operator = "greater_than_or_equal"
	OperatorLessThan           Operator = "less_than"
	OperatorLessThanOrEqual    Operator = "less_than_or_equal"
	OperatorContains           Operator = "contains"
	OperatorNotContains        Operator = "not_contains"
	OperatorStartsWith         Operator = "starts_with"
	OperatorEndsWith           Operator = "ends_with"
	OperatorIn                 Operator = "in"
	OperatorNotIn              Operator = "not_in"
	OperatorBetween            Operator = "between"
	OperatorIsNull             Operator = "is_null"
	OperatorIsNotNull          Operator = "is_not_null"
)

// ConditionDataType hints at how the expected value should be interpreted.
type ConditionDataType string

const (
	DataTypeString  ConditionDataType = "string"
	DataTypeNumber  ConditionDataType = "number"
	DataTypeBoolean ConditionDataType = "boolean"
	DataTypeArray   ConditionDataType = "array"
	DataTypeDate    ConditionDataType = "date"
)

// RuleCondition is one typed condition evaluated against a dot-path
// addressable data context.
type RuleCondition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator Operator          `json:"operator" validate:"required"`
	Value    any               `json:"value"`
	DataType ConditionDataType `json:"data_type,omitempty"`
}

// LogicalOperator combines a rule's conditions. Exactly two are supported.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// RuleActionType is the closed set of actions a matched rule can demand.
type RuleActionType string

const (
	RuleActionApprove         RuleActionType = "approve"
	RuleActionDecline         RuleActionType = "decline"
	RuleActionReview          RuleActionType = "review"
	RuleActionSetScore        RuleActionType = "set_score"
	RuleActionAddFlag         RuleActionType = "add_flag"
	RuleActionRequireDocument RuleActionType = "require_document"
)

// RuleAction is one declarative action carried by a rule. Rules are
// configuration data, not code: actions are aggregated, never executed as
// arbitrary logic.
type RuleAction struct {
	Type    RuleActionType `json:"type"    validate:"required"`
	Value   any            `json:"value,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Rule is an ordered set of conditions plus the actions demanded when the
// conditions match.
type Rule struct {
	ID              string          `json:"id"       validate:"required"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Conditions      []RuleCondition `json:"conditions"`
	LogicalOperator LogicalOperator `json:"logical_operator"`
	Actions         []RuleAction    `json:"actions"`
	Priority        int             `json:"priority"`
	Enabled         bool            `json:"enabled"`
}

// RuleExecutionOrder is the rule ordering policy of a rule set.
type RuleExecutionOrder string

const (
	ExecutionOrderPriority   RuleExecutionOrder = "priority"
	ExecutionOrderSequential RuleExecutionOrder = "sequential"
	ExecutionOrderParallel   RuleExecutionOrder = "parallel"
)

// RuleSet is an ordered collection of rules plus an execution-order policy.
type RuleSet struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Rules          []Rule             `json:"rules"`
	ExecutionOrder RuleExecutionOrder `json:"execution_order,omitempty"`
}

// ConditionTrace records one condition evaluation inside a rule, for the
// audit trail.
type ConditionTrace struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Expected any      `json:"expected"`
	Actual   any      `json:"actual"`
	Matched  bool     `json:"matched"`
}

// RuleExecutionResult is the outcome of evaluating one rule. Actions are only
// populated when the rule matched.
type RuleExecutionResult struct {
	RuleID        string           `json:"rule_id"`
	Matched       bool             `json:"matched"`
	Actions       []RuleAction     `json:"actions,omitempty"`
	ExecutionTime time.Duration    `json:"execution_time"`
	Trace         []ConditionTrace `json:"trace,omitempty"`
}

// DecisionOutcome is the aggregated outcome of a rule set evaluation.
type DecisionOutcome string

const (
	OutcomeApproved DecisionOutcome = "approved"
	OutcomeDeclined DecisionOutcome = "declined"
	OutcomeReview   DecisionOutcome = "review"
)

// RuleDecision is the aggregation of every matched rule's actions. The
// outcome precedence is decline > approve > review-as-default: when rules
// conflict, or nothing matched, the system never auto-approves.
type RuleDecision struct {
	Outcome           DecisionOutcome `json:"outcome"`
	Score             *float64        `json:"score,omitempty"`
	Flags             []string        `json:"flags,omitempty"`
	RequiredDocuments []string        `json:"required_documents,omitempty"`
	Messages          []string        `json:"messages,omitempty"`
	Approvals         int             `json:"approvals"`
	Declines          int             `json:"declines"`
	Reviews           int             `json:"reviews"`
	MatchedRules      []string        `json:"matched_rules,omitempty"`
}
