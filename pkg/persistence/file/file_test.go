package file

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/persistence"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	p, err := NewPersistence(t.TempDir())
	require.NoError(t, err)

	return p
}

func TestWorkflowRoundTrip(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	workflow := &models.Workflow{
		ID:     "loan-check",
		Name:   "Loan Check",
		Status: models.WorkflowStatusPublished,
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
		},
	}

	require.NoError(t, p.SaveWorkflow(ctx, workflow))

	loaded, err := p.WorkflowByID(ctx, "loan-check")
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Equal(t, models.WorkflowStatusPublished, loaded.Status)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, models.NodeTypeStart, loaded.Nodes[0].Type)

	all, err := p.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, p.DeleteWorkflow(ctx, "loan-check"))

	_, err = p.WorkflowByID(ctx, "loan-check")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	assert.True(t, persistence.IsNotFound(err))
}

func TestRuleSetRoundTrip(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	ruleSet := &models.RuleSet{
		ID:   "credit-policy",
		Name: "Credit Policy",
		Rules: []models.Rule{
			{
				ID:      "floor",
				Enabled: true,
				Conditions: []models.RuleCondition{
					{Field: "creditScore", Operator: models.OperatorLessThan, Value: 580},
				},
				Actions: []models.RuleAction{{Type: models.RuleActionDecline}},
			},
		},
	}

	require.NoError(t, p.SaveRuleSet(ctx, ruleSet))

	loaded, err := p.RuleSetByID(ctx, "credit-policy")
	require.NoError(t, err)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, models.OperatorLessThan, loaded.Rules[0].Conditions[0].Operator)

	require.NoError(t, p.DeleteRuleSet(ctx, "credit-policy"))

	_, err = p.RuleSetByID(ctx, "credit-policy")
	assert.ErrorIs(t, err, persistence.ErrRuleSetNotFound)
}

func TestReportRoundTrip(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	report := &models.ExecutionReport{
		ExecutionID:   "exec-1",
		WorkflowID:    "loan-check",
		Success:       true,
		Status:        models.ExecutionStatusCompleted,
		ExecutionPath: []string{"start", "end"},
	}

	require.NoError(t, p.SaveReport(ctx, report))

	loaded, err := p.ReportByExecutionID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, report.ExecutionPath, loaded.ExecutionPath)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)

	_, err = p.ReportByExecutionID(ctx, "exec-2")
	assert.ErrorIs(t, err, persistence.ErrReportNotFound)
}

func TestSaveRequiresID(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	assert.Error(t, p.SaveWorkflow(ctx, &models.Workflow{}))
	assert.Error(t, p.SaveRuleSet(ctx, &models.RuleSet{}))
	assert.Error(t, p.SaveReport(ctx, &models.ExecutionReport{}))
	assert.NoError(t, p.HealthCheck(ctx))
	assert.NoError(t, p.Close(ctx))
}
