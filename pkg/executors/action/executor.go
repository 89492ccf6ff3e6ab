// Package action provides the side-effecting action executor. The built-in
// operations are deterministic-shape simulations of external calls: a real
// deployment replaces the operation body but keeps the output contract.
package action

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// Built-in action types.
const (
	ActionCreditCheck        = "credit_check"
	ActionIncomeVerification = "income_verification"
	ActionDebtCalculation    = "debt_calculation"
	ActionRiskAssessment     = "risk_assessment"
	ActionDocumentRequest    = "document_request"
	ActionNotification       = "notification"
	ActionDataUpdate         = "data_update"
)

// Executor dispatches on the configured action type to one of the built-in
// operations. On success it always reports the default connector.
type Executor struct {
	node   *models.Node
	config models.ActionConfig
}

// NewExecutor creates an action executor bound to the given node.
func NewExecutor(node *models.Node) (*Executor, error) {
	var config models.ActionConfig
	if err := node.DecodeConfig(&config); err != nil {
		return nil, fmt.Errorf("node %s: invalid action config: %w", node.ID, err)
	}

	if config.ActionType == "" {
		return nil, fmt.Errorf("node %s: missing required field 'action_type'", node.ID)
	}

	return &Executor{node: node, config: config}, nil
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute runs the configured operation and merges its output into the
// execution variables.
func (e *Executor) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	output, err := e.run(execCtx)
	if err != nil {
		return models.NewErrorResult(e.node.ID, err.Error(), started), nil
	}

	execCtx.MergeNodeOutput(e.node.ID, output)

	return models.NewSuccessResult(e.node.ID, models.ConnectorDefault, output, started), nil
}

func (e *Executor) run(execCtx *models.ExecutionContext) (map[string]any, error) {
	switch e.config.ActionType {
	case ActionCreditCheck:
		score := 550 + rand.Intn(300)

		return map[string]any{
			"credit_score":           score,
			"credit_bureau":          "simulated",
			"inquiries_12mo":         rand.Intn(6),
			"oldest_tradeline_years": 1 + rand.Intn(20),
			"checked_at":             time.Now().UTC().Format(time.RFC3339),
		}, nil

	case ActionIncomeVerification:
		return map[string]any{
			"income_verified":     true,
			"verified_income":     30000 + rand.Intn(120000),
			"employment_type":     "full_time",
			"verification_source": "simulated",
		}, nil

	case ActionDebtCalculation:
		monthlyDebt := float64(500 + rand.Intn(2500))

		income, _ := toFloat(execCtx.Variables["income"])
		dti := 0.0
		if income > 0 {
			dti = monthlyDebt / (income / 12)
		}

		return map[string]any{
			"monthly_debt": monthlyDebt,
			"dti_ratio":    dti,
		}, nil

	case ActionRiskAssessment:
		return map[string]any{
			"risk_score": rand.Intn(100),
			"risk_tier":  []string{"low", "medium", "high"}[rand.Intn(3)],
		}, nil

	case ActionDocumentRequest:
		documents, _ := e.config.Params["documents"].([]any)

		return map[string]any{
			"documents_requested": documents,
			"request_sent":        true,
		}, nil

	case ActionNotification:
		return map[string]any{
			"notification_sent": true,
			"channel":           stringParam(e.config.Params, "channel", "email"),
			"recipient":         stringParam(e.config.Params, "recipient", ""),
			"message":           stringParam(e.config.Params, "message", ""),
		}, nil

	case ActionDataUpdate:
		updates := make(map[string]any, len(e.config.Params))
		for k, v := range e.config.Params {
			updates[k] = v
		}

		execCtx.MergeVariables(updates)

		return map[string]any{"updated_fields": len(updates)}, nil

	default:
		return nil, fmt.Errorf("unknown action type %q", e.config.ActionType)
	}
}

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}

	return fallback
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Validate checks structural requirements plus the action type.
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

	switch e.config.ActionType {
	case ActionCreditCheck, ActionIncomeVerification, ActionDebtCalculation,
		ActionRiskAssessment, ActionDocumentRequest, ActionNotification,
		ActionDataUpdate:
	case "":
		result.IsValid = false
		result.Errors = append(result.Errors, "missing required field 'action_type'")
	default:
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("unknown action type %q", e.config.ActionType))
	}

	return result
}
