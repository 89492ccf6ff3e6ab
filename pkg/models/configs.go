package models

// Typed per-node-type configuration structs. Executors decode a node's raw
// config map into one of these at construction time, so a malformed config is
// caught before the graph walk starts rather than mid-execution.

// StartConfig configures a start node. Start nodes take no configuration
// beyond the shared node fields.
type StartConfig struct{}

// ConditionConfig configures a condition node.
type ConditionConfig struct {
	// Condition is a boolean expression evaluated against the execution
	// variables and input data.
	Condition string `json:"condition"`
}

// DecisionType selects the decision strategy of a decision node.
type DecisionType string

const (
	DecisionTypeSimple     DecisionType = "simple"
	DecisionTypeComplex    DecisionType = "complex"
	DecisionTypeMultiple   DecisionType = "multiple"
	DecisionTypeScoreBased DecisionType = "score_based"
	DecisionTypeThreshold  DecisionType = "threshold"
)

// IsValid reports whether the decision type is one of the supported
// strategies.
func (t DecisionType) IsValid() bool {
	switch t {
	case DecisionTypeSimple, DecisionTypeComplex, DecisionTypeMultiple,
		DecisionTypeScoreBased, DecisionTypeThreshold:
		return true
	}

	return false
}

// DecisionOption is one candidate outcome of a "multiple" decision; the first
// option whose condition evaluates true wins.
type DecisionOption struct {
	Condition string `json:"condition"`
	Outcome   string `json:"outcome"`
}

// ScoreThresholds bucket a numeric variable into credit-quality grades.
type ScoreThresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
}

// DefaultScoreThresholds returns the standard credit score bucket boundaries.
func DefaultScoreThresholds() ScoreThresholds {
	return ScoreThresholds{Excellent: 800, Good: 700, Fair: 600}
}

// DecisionConfig configures a decision node. Which fields are consulted
// depends on DecisionType.
type DecisionConfig struct {
	DecisionType DecisionType `json:"decision_type"`

	// simple
	Condition string `json:"condition,omitempty"`

	// complex
	Conditions      []string `json:"conditions,omitempty"`
	LogicalOperator string   `json:"logical_operator,omitempty"` // AND, OR or CUSTOM
	CustomLogic     string   `json:"custom_logic,omitempty"`     // boolean expression over C0, C1, ...

	// multiple
	Options        []DecisionOption `json:"options,omitempty"`
	DefaultOutcome string           `json:"default_outcome,omitempty"`

	// score_based and threshold
	Variable   string           `json:"variable,omitempty"`
	Thresholds *ScoreThresholds `json:"thresholds,omitempty"`
	Threshold  float64          `json:"threshold,omitempty"`
	Operator   string           `json:"operator,omitempty"` // threshold comparison, default ">="

	// ConnectorMap maps a decision outcome to the connector label to report.
	// Outcomes absent from the map fall back to a fixed outcome table.
	ConnectorMap map[string]string `json:"connector_map,omitempty"`
}

// ActionConfig configures an action node.
type ActionConfig struct {
	ActionType string         `json:"action_type"`
	Params     map[string]any `json:"params,omitempty"`
}

// RuleSetConfig configures a rule_set node. Exactly one of RuleSetID (resolved
// through a rule-set source), RuleSet (inline) or Rules (inline flat list)
// must be provided.
type RuleSetConfig struct {
	RuleSetID string   `json:"rule_set_id,omitempty"`
	RuleSet   *RuleSet `json:"rule_set,omitempty"`
	Rules     []Rule   `json:"rules,omitempty"`
}

// DataSourceConfig configures a data_source node.
type DataSourceConfig struct {
	SourceID string `json:"source_id"`
	// Fields optionally restricts which response fields are merged into the
	// execution variables. Empty means all.
	Fields []string `json:"fields,omitempty"`
	// ContextKey optionally stores the whole response as one variable (e.g.
	// "credit"), making it addressable as a sub-object by rule conditions.
	ContextKey string `json:"context_key,omitempty"`
	// Params are passed to the connector alongside the execution input.
	Params map[string]any `json:"params,omitempty"`
}

// EndConfig configures an end node.
type EndConfig struct {
	// Decision optionally attaches a terminal decision payload to the final
	// execution report.
	Decision map[string]any `json:"decision,omitempty"`
}
