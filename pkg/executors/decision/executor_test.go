package decision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionflow/decisionflow/pkg/models"
)

func decisionNode(config map[string]any) *models.Node {
	return &models.Node{
		ID:     "decide",
		Type:   models.NodeTypeDecision,
		Name:   "Decide",
		Config: config,
	}
}

func execContext(variables map[string]any) *models.ExecutionContext {
	return models.NewExecutionContext("wf-1", variables)
}

func TestSimpleDecision(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(decisionNode(map[string]any{
		"decision_type": "simple",
		"condition":     "income > 50000",
	}))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), execContext(map[string]any{"income": 60000}))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.ConnectorTrue, result.NextConnector)
	assert.Equal(t, "true", result.Output["decision_outcome"])

	result, err = executor.Execute(context.Background(), execContext(map[string]any{"income": 30000}))
	require.NoError(t, err)

	assert.Equal(t, models.ConnectorFalse, result.NextConnector)
}

func TestComplexDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		config    map[string]any
		variables map[string]any
		connector string
	}{
		{
			name: "and all true",
			config: map[string]any{
				"decision_type": "complex",
				"conditions":    []any{"creditScore >= 650", "income > 40000"},
			},
			variables: map[string]any{"creditScore": 700, "income": 50000},
			connector: models.ConnectorTrue,
		},
		{
			name: "and one false",
			config: map[string]any{
				"decision_type": "complex",
				"conditions":    []any{"creditScore >= 650", "income > 40000"},
			},
			variables: map[string]any{"creditScore": 700, "income": 30000},
			connector: models.ConnectorFalse,
		},
		{
			name: "or one true",
			config: map[string]any{
				"decision_type":    "complex",
				"logical_operator": "OR",
				"conditions":       []any{"creditScore >= 800", "income > 40000"},
			},
			variables: map[string]any{"creditScore": 600, "income": 50000},
			connector: models.ConnectorTrue,
		},
		{
			name: "custom logic over placeholders",
			config: map[string]any{
				"decision_type":    "complex",
				"logical_operator": "CUSTOM",
				"conditions":       []any{"creditScore >= 800", "income > 40000", "hasCollateral"},
				"custom_logic":     "C0 || (C1 && C2)",
			},
			variables: map[string]any{"creditScore": 600, "income": 50000, "hasCollateral": true},
			connector: models.ConnectorTrue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			executor, err := NewExecutor(decisionNode(tt.config))
			require.NoError(t, err)

			result, err := executor.Execute(context.Background(), execContext(tt.variables))
			require.NoError(t, err)

			assert.True(t, result.Success)
			assert.Equal(t, tt.connector, result.NextConnector)
		})
	}
}

func TestMultipleDecisionFirstMatchWins(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(decisionNode(map[string]any{
		"decision_type": "multiple",
		"options": []any{
			map[string]any{"condition": "amount > 100000", "outcome": "jumbo"},
			map[string]any{"condition": "amount > 10000", "outcome": "standard"},
		},
		"default_outcome": "micro",
	}))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), execContext(map[string]any{"amount": 50000}))
	require.NoError(t, err)
	assert.Equal(t, "standard", result.NextConnector)
	assert.Equal(t, 1, result.Output["matched_option"])

	result, err = executor.Execute(context.Background(), execContext(map[string]any{"amount": 500}))
	require.NoError(t, err)
	assert.Equal(t, "micro", result.NextConnector)
	assert.Equal(t, -1, result.Output["matched_option"])
}

func TestScoreBasedDecisionBuckets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score     int
		connector string
		outcome   string
	}{
		{score: 820, connector: models.ConnectorTrue, outcome: OutcomeExcellent},
		{score: 750, connector: models.ConnectorTrue, outcome: OutcomeGood},
		{score: 640, connector: models.ConnectorReview, outcome: OutcomeFair},
		{score: 500, connector: models.ConnectorFalse, outcome: OutcomePoor},
	}

	for _, tt := range tests {
		executor, err := NewExecutor(decisionNode(map[string]any{
			"decision_type": "score_based",
			"variable":      "creditScore",
		}))
		require.NoError(t, err)

		result, err := executor.Execute(context.Background(), execContext(map[string]any{"creditScore": tt.score}))
		require.NoError(t, err)

		assert.Equal(t, tt.outcome, result.Output["decision_outcome"], "score %d", tt.score)
		assert.Equal(t, tt.connector, result.NextConnector, "score %d", tt.score)
	}
}

func TestThresholdDecision(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(decisionNode(map[string]any{
		"decision_type": "threshold",
		"variable":      "dti",
		"threshold":     0.43,
		"operator":      "<=",
	}))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), execContext(map[string]any{"dti": 0.35}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbove, result.Output["decision_outcome"])
	assert.Equal(t, models.ConnectorTrue, result.NextConnector)

	result, err = executor.Execute(context.Background(), execContext(map[string]any{"dti": 0.51}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeBelow, result.Output["decision_outcome"])
	assert.Equal(t, models.ConnectorFalse, result.NextConnector)
}

func TestThresholdDecisionMissingVariable(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(decisionNode(map[string]any{
		"decision_type": "threshold",
		"variable":      "dti",
		"threshold":     0.43,
	}))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), execContext(nil))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, models.ConnectorError, result.NextConnector)
	assert.Contains(t, result.Error, "dti")
}

func TestConnectorMapOverridesOutcomeTable(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(decisionNode(map[string]any{
		"decision_type": "score_based",
		"variable":      "creditScore",
		"connector_map": map[string]any{"excellent": "fast_track"},
	}))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), execContext(map[string]any{"creditScore": 810}))
	require.NoError(t, err)

	assert.Equal(t, "fast_track", result.NextConnector)
}

func TestNewExecutorRejectsUnknownDecisionType(t *testing.T) {
	t.Parallel()

	_, err := NewExecutor(decisionNode(map[string]any{"decision_type": "fuzzy"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fuzzy")
}

func TestValidateIsPure(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(decisionNode(map[string]any{
		"decision_type": "simple",
	}))
	require.NoError(t, err)

	first := executor.Validate()
	second := executor.Validate()

	assert.False(t, first.IsValid)
	assert.Equal(t, first, second)
}
