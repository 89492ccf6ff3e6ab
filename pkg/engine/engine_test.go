package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionflow/decisionflow/pkg/eventbus"
	"github.com/decisionflow/decisionflow/pkg/events"
	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
	"github.com/decisionflow/decisionflow/pkg/registry"
)

type stubWorkflows struct {
	workflows map[string]*models.Workflow
}

func (s *stubWorkflows) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	workflow, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s not found", id)
	}

	return workflow, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	collected := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		collected = append(collected, event.GetType())
	}

	return collected
}

func newTestEngine(t *testing.T, workflows ...*models.Workflow) (*Engine, *capturePublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	source := &stubWorkflows{workflows: make(map[string]*models.Workflow)}
	for _, workflow := range workflows {
		source.workflows[workflow.ID] = workflow
	}

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaults(logger, nil, nil)

	publisher := &capturePublisher{}

	return NewEngine(source, reg, publisher, logger, nil), publisher
}

func loanWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:     "loan-check",
		Name:   "Loan Check",
		Status: models.WorkflowStatusPublished,
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "credit-gate", Type: models.NodeTypeCondition, Name: "Credit Gate", Config: map[string]any{
				"condition": "creditScore >= 650",
			}},
			{ID: "credit-rules", Type: models.NodeTypeRuleSet, Name: "Credit Rules", Config: map[string]any{
				"rules": []any{
					map[string]any{
						"id":      "min-credit",
						"name":    "Minimum credit score",
						"enabled": true,
						"conditions": []any{
							map[string]any{"field": "creditScore", "operator": "greater_than_or_equal", "value": 650},
						},
						"actions": []any{
							map[string]any{"type": "approve"},
						},
					},
				},
			}},
			{ID: "end-approved", Type: models.NodeTypeEnd, Name: "Approved", Config: map[string]any{
				"decision": map[string]any{"outcome": "approved"},
			}},
			{ID: "end-declined", Type: models.NodeTypeEnd, Name: "Declined", Config: map[string]any{
				"decision": map[string]any{"outcome": "declined"},
			}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "credit-gate"},
			{ID: "c2", Source: "credit-gate", Target: "credit-rules", ConnectorType: models.ConnectorTrue},
			{ID: "c3", Source: "credit-gate", Target: "end-declined", ConnectorType: models.ConnectorFalse},
			{ID: "c4", Source: "credit-rules", Target: "end-approved", ConnectorType: models.ConnectorApproved},
			{ID: "c5", Source: "credit-rules", Target: "end-declined", ConnectorType: models.ConnectorDeclined},
			{ID: "c6", Source: "credit-rules", Target: "end-declined", ConnectorType: models.ConnectorReview},
		},
	}
}

func TestExecuteWorkflowApprovalPath(t *testing.T) {
	t.Parallel()

	engine, publisher := newTestEngine(t, loanWorkflow())

	report, err := engine.ExecuteWorkflow(context.Background(), "loan-check", map[string]any{
		"creditScore": 720,
		"income":      85000,
	}, Options{})

	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, report.Status)
	assert.Equal(t, []string{"start", "credit-gate", "credit-rules", "end-approved"}, report.ExecutionPath)
	assert.Equal(t, map[string]any{"outcome": "approved"}, report.Decision)
	assert.Empty(t, report.Errors)

	types := publisher.types()
	assert.Equal(t, events.ExecutionStartedEvent, types[0])
	assert.Equal(t, events.ExecutionCompletedEvent, types[len(types)-1])
	assert.Contains(t, types, events.NodeExecutedEvent)
}

func TestExecuteWorkflowDeclinePath(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, loanWorkflow())

	report, err := engine.ExecuteWorkflow(context.Background(), "loan-check", map[string]any{
		"creditScore": 500,
	}, Options{})

	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, []string{"start", "credit-gate", "end-declined"}, report.ExecutionPath)
	assert.Equal(t, map[string]any{"outcome": "declined"}, report.Decision)
}

func TestExecuteWorkflowUnknownWorkflow(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)

	report, err := engine.ExecuteWorkflow(context.Background(), "missing", nil, Options{})

	require.Error(t, err)
	require.NotNil(t, report)

	assert.False(t, report.Success)
	assert.Equal(t, models.ExecutionStatusFailed, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, CodeStructural, report.Errors[0].Code)
}

func TestExecuteWorkflowCyclicGraphHitsIterationCap(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "spin",
		Name: "Spin",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "loop", Type: models.NodeTypeCondition, Name: "Loop", Config: map[string]any{
				"condition": "1 == 1",
			}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "loop"},
			{ID: "c2", Source: "loop", Target: "loop", ConnectorType: models.ConnectorTrue},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "spin", nil, Options{MaxIterations: 25})

	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, models.ExecutionStatusMaxIterationsExceeded, report.Status)
	assert.Len(t, report.ExecutionPath, 25)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, CodeMaxIterations, report.Errors[0].Code)
}

func TestExecuteWorkflowTimeout(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "slow-spin",
		Name: "Slow Spin",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "loop", Type: models.NodeTypeCondition, Name: "Loop", Config: map[string]any{
				"condition": "1 == 1",
			}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "loop"},
			{ID: "c2", Source: "loop", Target: "loop", ConnectorType: models.ConnectorTrue},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "slow-spin", nil, Options{
		Timeout:       20 * time.Millisecond,
		MaxIterations: 100_000_000,
	})

	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, models.ExecutionStatusTimedOut, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, CodeTimeout, report.Errors[0].Code)
}

func TestExecuteWorkflowErrorHandlerEdge(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "guarded",
		Name: "Guarded",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "broken", Type: models.NodeTypeCondition, Name: "Broken", Config: map[string]any{
				"condition": "creditScore >=",
			}},
			{ID: "manual-review", Type: models.NodeTypeEnd, Name: "Manual Review", Config: map[string]any{
				"decision": map[string]any{"outcome": "review"},
			}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "broken"},
			{ID: "c2", Source: "broken", Target: "manual-review", IsErrorHandler: true},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "guarded", map[string]any{"creditScore": 700}, Options{})

	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, report.Status)
	assert.Equal(t, []string{"start", "broken", "manual-review"}, report.ExecutionPath)
	assert.Equal(t, map[string]any{"outcome": "review"}, report.Decision)

	require.NotEmpty(t, report.Errors)
	assert.Equal(t, CodeNodeExecution, report.Errors[0].Code)
	assert.Equal(t, "broken", report.Errors[0].NodeID)
}

func TestExecuteWorkflowNodeFailureWithoutHandler(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "unguarded",
		Name: "Unguarded",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "broken", Type: models.NodeTypeCondition, Name: "Broken", Config: map[string]any{
				"condition": "creditScore >=",
			}},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "broken"},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "unguarded", nil, Options{})

	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, models.ExecutionStatusFailed, report.Status)
	assert.Equal(t, []string{"start", "broken"}, report.ExecutionPath)
}

func TestExecuteWorkflowNoMatchingConnectorEndsGracefully(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "dangling",
		Name: "Dangling",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "never", Type: models.NodeTypeEnd, Name: "Never"},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "never", ConnectorType: "nonexistent"},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "dangling", nil, Options{})

	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, report.Status)
	assert.Equal(t, []string{"start"}, report.ExecutionPath)
}

func TestExecuteWorkflowDefaultFallbackIgnoresConditions(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "fallback",
		Name: "Fallback",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "finish", Type: models.NodeTypeEnd, Name: "Finish"},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "finish", ConnectorType: models.ConnectorDefault, Condition: "1 == 2"},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "fallback", nil, Options{})

	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, []string{"start", "finish"}, report.ExecutionPath)
}

func TestExecuteWorkflowConnectionPriorityOrder(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "priorities",
		Name: "Priorities",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "low", Type: models.NodeTypeEnd, Name: "Low"},
			{ID: "high", Type: models.NodeTypeEnd, Name: "High"},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "low", ConnectorType: models.ConnectorSuccess, Priority: 1},
			{ID: "c2", Source: "start", Target: "high", ConnectorType: models.ConnectorSuccess, Priority: 10},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "priorities", nil, Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"start", "high"}, report.ExecutionPath)
}

func TestExecuteWorkflowVariableOverrides(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, loanWorkflow())

	report, err := engine.ExecuteWorkflow(context.Background(), "loan-check", map[string]any{
		"creditScore": 400,
	}, Options{
		VariableOverrides: map[string]any{"creditScore": 710},
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"outcome": "approved"}, report.Decision)
}

func TestExecuteWorkflowReportCarriesNodeOutputs(t *testing.T) {
	t.Parallel()

	workflow := &models.Workflow{
		ID:   "credit-screen",
		Name: "Credit Screen",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "screen", Type: models.NodeTypeRuleSet, Name: "Screen", Config: map[string]any{
				"rules": []any{
					map[string]any{
						"id":      "low-credit",
						"name":    "Low credit score",
						"enabled": true,
						"conditions": []any{
							map[string]any{"field": "creditScore", "operator": "less_than", "value": 580},
						},
						"actions": []any{
							map[string]any{"type": "decline", "message": "credit score below minimum"},
							map[string]any{"type": "add_flag", "value": "low_credit_score"},
							map[string]any{"type": "set_score", "value": 30},
						},
					},
				},
			}},
			{ID: "end-approved", Type: models.NodeTypeEnd, Name: "Approved"},
			{ID: "end-declined", Type: models.NodeTypeEnd, Name: "Declined"},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "screen"},
			{ID: "c2", Source: "screen", Target: "end-approved", ConnectorType: models.ConnectorApproved},
			{ID: "c3", Source: "screen", Target: "end-declined", ConnectorType: models.ConnectorDeclined},
			{ID: "c4", Source: "screen", Target: "end-declined", ConnectorType: models.ConnectorReview},
		},
	}

	engine, _ := newTestEngine(t, workflow)

	report, err := engine.ExecuteWorkflow(context.Background(), "credit-screen", map[string]any{
		"creditScore": 300,
	}, Options{})
	require.NoError(t, err)

	// The report output carries what the rule set produced, not just the
	// terminal decision.
	assert.Equal(t, "declined", report.Output["decision"])
	assert.Contains(t, report.Output, "score")
	assert.Equal(t, []string{"low_credit_score"}, report.Output["flags"])
	assert.Equal(t, []string{"credit score below minimum"}, report.Output["messages"])
	assert.Equal(t, []string{"low-credit"}, report.Output["matched_rules"])

	assert.Equal(t, 300, report.Variables["creditScore"])
}

// gateFactory builds executors that signal entry and block until released,
// so tests can interleave pause requests with a live run.
type gateFactory struct {
	entered chan string
	release chan struct{}
}

func (f *gateFactory) Create(_ context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	return &gateExecutor{node: node, entered: f.entered, release: f.release}, nil
}

func (f *gateFactory) Type() models.NodeType { return models.NodeTypeAction }
func (f *gateFactory) Name() string          { return "gate" }
func (f *gateFactory) Description() string   { return "test gate" }
func (f *gateFactory) Schema() map[string]any {
	return nil
}

type gateExecutor struct {
	node    *models.Node
	entered chan string
	release chan struct{}
}

func (e *gateExecutor) Node() *models.Node { return e.node }

func (e *gateExecutor) Validate() models.ValidationResult {
	return models.ValidationResult{IsValid: true}
}

func (e *gateExecutor) Execute(_ context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	e.entered <- execCtx.ExecutionID
	<-e.release

	return models.NewSuccessResult(e.node.ID, models.ConnectorDefault, nil, time.Now()), nil
}

func pausableWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:   "pausable",
		Name: "Pausable",
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart, Name: "Start"},
			{ID: "gate", Type: models.NodeTypeAction, Name: "Gate", Config: map[string]any{
				"action_type": "notification",
			}},
			{ID: "finish", Type: models.NodeTypeEnd, Name: "Finish"},
		},
		Connections: []*models.Connection{
			{ID: "c1", Source: "start", Target: "gate"},
			{ID: "c2", Source: "gate", Target: "finish"},
		},
	}
}

func TestPauseAndResumeExecution(t *testing.T) {
	t.Parallel()

	engine, publisher := newTestEngine(t, pausableWorkflow())

	gate := &gateFactory{entered: make(chan string, 1), release: make(chan struct{})}
	engine.registry.RegisterExecutor(gate)

	type outcome struct {
		report *models.ExecutionReport
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		report, err := engine.ExecuteWorkflow(context.Background(), "pausable", nil, Options{})
		done <- outcome{report: report, err: err}
	}()

	executionID := <-gate.entered

	op, err := engine.PauseExecution(executionID, "manual review")
	require.NoError(t, err)
	assert.Equal(t, OperationPending, op.Status)
	assert.Equal(t, executionID, op.ExecutionID)
	assert.Equal(t, "gate", op.NodeID)

	close(gate.release)

	require.Eventually(t, func() bool {
		snapshot, snapErr := engine.GetExecution(executionID)

		return snapErr == nil && snapshot.Status == models.ExecutionStatusPaused
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, engine.ResumeExecution(executionID, map[string]any{"reviewed": true}))

	result := <-done
	require.NoError(t, result.err)

	assert.True(t, result.report.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, result.report.Status)
	assert.Equal(t, []string{"start", "gate", "finish"}, result.report.ExecutionPath)
	assert.Equal(t, true, result.report.Variables["reviewed"])

	finished, err := engine.Operations().Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, OperationCompleted, finished.Status)

	types := publisher.types()
	assert.Contains(t, types, events.ExecutionPausedEvent)
	assert.Contains(t, types, events.ExecutionResumedEvent)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	for _, event := range publisher.events {
		if paused, ok := event.(events.ExecutionPaused); ok {
			assert.Equal(t, "manual review", paused.Reason)
			assert.Equal(t, op.ID, paused.OperationID)
		}
	}
}

func TestCompleteOperationResumesExecution(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, pausableWorkflow())

	gate := &gateFactory{entered: make(chan string, 1), release: make(chan struct{})}
	engine.registry.RegisterExecutor(gate)

	type outcome struct {
		report *models.ExecutionReport
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		report, err := engine.ExecuteWorkflow(context.Background(), "pausable", nil, Options{})
		done <- outcome{report: report, err: err}
	}()

	executionID := <-gate.entered

	op, err := engine.PauseExecution(executionID, "document check")
	require.NoError(t, err)

	close(gate.release)

	require.Eventually(t, func() bool {
		snapshot, snapErr := engine.GetExecution(executionID)

		return snapErr == nil && snapshot.Status == models.ExecutionStatusPaused
	}, time.Second, 5*time.Millisecond)

	// Completing the operation directly, the way the operations API does,
	// must release the paused walk with the result merged in.
	require.NoError(t, engine.Operations().Complete(op.ID, map[string]any{"verified": true}))

	result := <-done
	require.NoError(t, result.err)

	assert.True(t, result.report.Success)
	assert.Equal(t, models.ExecutionStatusCompleted, result.report.Status)
	assert.Equal(t, true, result.report.Variables["verified"])
}

func TestFailOperationFailsExecution(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, pausableWorkflow())

	gate := &gateFactory{entered: make(chan string, 1), release: make(chan struct{})}
	engine.registry.RegisterExecutor(gate)

	type outcome struct {
		report *models.ExecutionReport
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		report, err := engine.ExecuteWorkflow(context.Background(), "pausable", nil, Options{})
		done <- outcome{report: report, err: err}
	}()

	executionID := <-gate.entered

	op, err := engine.PauseExecution(executionID, "document check")
	require.NoError(t, err)

	close(gate.release)

	require.Eventually(t, func() bool {
		snapshot, snapErr := engine.GetExecution(executionID)

		return snapErr == nil && snapshot.Status == models.ExecutionStatusPaused
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, engine.Operations().Fail(op.ID, errors.New("review rejected")))

	result := <-done
	require.NoError(t, result.err)

	assert.False(t, result.report.Success)
	assert.Equal(t, models.ExecutionStatusFailed, result.report.Status)
	require.NotEmpty(t, result.report.Errors)
	assert.Contains(t, result.report.Errors[len(result.report.Errors)-1].Message, "review rejected")

	failed, err := engine.Operations().Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, OperationFailed, failed.Status)
}

func TestResumeExecutionNotPaused(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)

	err := engine.ResumeExecution("exec-unknown", nil)
	assert.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestGetExecutionAfterCompletion(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, loanWorkflow())

	report, err := engine.ExecuteWorkflow(context.Background(), "loan-check", map[string]any{"creditScore": 700}, Options{})
	require.NoError(t, err)

	stored, err := engine.GetExecution(report.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, report, stored)

	_, err = engine.GetExecution("exec-nope")
	assert.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestOperationRegistryCompleteAndWait(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := NewOperationRegistry(logger)

	op := reg.Register("exec-1", "node-1")
	assert.Equal(t, OperationPending, op.Status)

	go func() {
		time.Sleep(10 * time.Millisecond)

		_ = reg.Complete(op.ID, map[string]any{"documents": "received"})
	}()

	result, err := reg.Wait(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, "received", result["documents"])

	err = reg.Complete(op.ID, nil)
	assert.ErrorIs(t, err, ErrOperationFinished)
}

func TestOperationRegistryFail(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := NewOperationRegistry(logger)

	op := reg.Register("exec-1", "node-1")
	require.NoError(t, reg.Fail(op.ID, errors.New("verification rejected")))

	_, err := reg.Wait(context.Background(), op.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification rejected")

	_, err = reg.Get("op-unknown")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestOperationRegistryCleanup(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := NewOperationRegistry(logger)

	finished := reg.Register("exec-1", "node-1")
	require.NoError(t, reg.Complete(finished.ID, nil))

	pending := reg.Register("exec-1", "node-2")

	removed := reg.Cleanup(0)
	assert.Equal(t, 1, removed)

	_, err := reg.Get(finished.ID)
	assert.ErrorIs(t, err, ErrOperationNotFound)

	still, err := reg.Get(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, OperationPending, still.Status)
}
