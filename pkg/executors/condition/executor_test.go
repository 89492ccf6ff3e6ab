package condition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionflow/decisionflow/pkg/models"
)

func conditionNode(condition string) *models.Node {
	return &models.Node{
		ID:     "check",
		Type:   models.NodeTypeCondition,
		Name:   "Check",
		Config: map[string]any{"condition": condition},
	}
}

func TestExecuteRoutesTrueAndFalse(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(conditionNode("creditScore >= 650"))
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", map[string]any{"creditScore": 700})

	result, err := executor.Execute(context.Background(), execCtx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.ConnectorTrue, result.NextConnector)
	assert.Equal(t, true, result.Output["condition_result"])
	assert.Equal(t, true, execCtx.Variables["check_result"])

	execCtx = models.NewExecutionContext("wf-1", map[string]any{"creditScore": 500})

	result, err = executor.Execute(context.Background(), execCtx)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectorFalse, result.NextConnector)
}

func TestExecuteVariablesShadowInput(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(conditionNode("creditScore >= 650"))
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", map[string]any{"creditScore": 500})
	execCtx.SetVariable("creditScore", 720)

	result, err := executor.Execute(context.Background(), execCtx)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectorTrue, result.NextConnector)
}

func TestExecuteMalformedExpressionIsHardError(t *testing.T) {
	t.Parallel()

	executor, err := NewExecutor(conditionNode("creditScore >="))
	require.NoError(t, err)

	result, err := executor.Execute(context.Background(), models.NewExecutionContext("wf-1", nil))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, models.ConnectorError, result.NextConnector)
	assert.Contains(t, result.Error, "condition evaluation failed")
}

func TestNewExecutorRequiresCondition(t *testing.T) {
	t.Parallel()

	_, err := NewExecutor(&models.Node{ID: "check", Type: models.NodeTypeCondition, Name: "Check"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition")
}

func TestValidateCompilesExpression(t *testing.T) {
	t.Parallel()

	valid, err := NewExecutor(conditionNode("income > 1000"))
	require.NoError(t, err)
	assert.True(t, valid.Validate().IsValid)

	broken, err := NewExecutor(conditionNode("income > )"))
	require.NoError(t, err)

	result := broken.Validate()
	assert.False(t, result.IsValid)
	assert.Equal(t, result, broken.Validate())
}
