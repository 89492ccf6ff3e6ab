// Package engine walks decisioning workflow graphs. It owns the execution
// context for the whole run, routes between nodes through connector
// resolution, and keeps every run bounded by an iteration cap and an
// optional timeout.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/decisionflow/decisionflow/pkg/eventbus"
	"github.com/decisionflow/decisionflow/pkg/events"
	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/otelhelper"
	"github.com/decisionflow/decisionflow/pkg/protocol"
	"github.com/decisionflow/decisionflow/pkg/registry"
)

// Engine executes workflow definitions node by node. It is safe for
// concurrent use; each call to ExecuteWorkflow owns its execution context
// exclusively.
type Engine struct {
	workflows  protocol.WorkflowSource
	registry   *registry.Registry
	publisher  eventbus.EventPublisher
	operations *OperationRegistry
	logger     *slog.Logger
	tracer     trace.Tracer

	mu      sync.RWMutex
	active  map[string]*execState
	reports map[string]*models.ExecutionReport
}

type execState struct {
	execCtx     *models.ExecutionContext
	status      models.ExecutionStatus
	operationID string
	pauseReason string
}

// NewEngine builds an engine. The publisher and tracer may be nil, in which
// case lifecycle events and spans are skipped.
func NewEngine(workflows protocol.WorkflowSource, reg *registry.Registry, publisher eventbus.EventPublisher, logger *slog.Logger, tracer trace.Tracer) *Engine {
	return &Engine{
		workflows:  workflows,
		registry:   reg,
		publisher:  publisher,
		operations: NewOperationRegistry(logger),
		logger:     logger.With("module", "engine"),
		tracer:     tracer,
		active:     make(map[string]*execState),
		reports:    make(map[string]*models.ExecutionReport),
	}
}

// Operations exposes the async operation registry so outer surfaces can
// complete or fail pending operations.
func (e *Engine) Operations() *OperationRegistry {
	return e.operations
}

// ExecuteWorkflow runs one workflow to a terminal state and returns the full
// report. The report is always non-nil. A non-nil error is only returned for
// structural problems (unknown workflow, invalid definition); runtime
// failures such as node errors, timeouts and iteration-cap breaches are
// conveyed through the report status.
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowID string, input map[string]any, opts Options) (*models.ExecutionReport, error) {
	execCtx := models.NewExecutionContext(workflowID, input)
	if opts.ExecutionID != "" {
		execCtx.ExecutionID = opts.ExecutionID
	}

	execCtx.MergeVariables(opts.VariableOverrides)
	execCtx.Metadata.UserID = opts.UserID
	execCtx.Metadata.SessionID = opts.SessionID

	logger := e.logger.With("workflow_id", workflowID, "execution_id", execCtx.ExecutionID)

	workflow, err := e.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		execCtx.RecordError("", CodeStructural, err.Error())

		return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, nil),
			fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if err := workflow.Validate(); err != nil {
		execCtx.RecordError("", CodeStructural, err.Error())

		return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, nil),
			fmt.Errorf("invalid workflow %s: %w", workflowID, err)
	}

	start, err := workflow.StartNode()
	if err != nil {
		execCtx.RecordError("", CodeStructural, err.Error())

		return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, nil),
			fmt.Errorf("invalid workflow %s: %w", workflowID, err)
	}

	runCtx := ctx

	if opts.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if e.tracer != nil {
		var span trace.Span

		runCtx, span = otelhelper.StartSpan(runCtx, e.tracer, "engine.execute_workflow",
			attribute.String(otelhelper.WorkflowIDKey, workflowID),
			attribute.String(otelhelper.ExecutionIDKey, execCtx.ExecutionID),
		)
		defer span.End()
	}

	state := &execState{execCtx: execCtx, status: models.ExecutionStatusRunning}

	e.mu.Lock()
	e.active[execCtx.ExecutionID] = state
	e.mu.Unlock()

	e.publish(runCtx, execCtx, events.ExecutionStarted{
		BaseEvent:   e.baseEvent(events.ExecutionStartedEvent, execCtx),
		InputFields: len(input),
		UserID:      opts.UserID,
		SessionID:   opts.SessionID,
	})

	logger.Info("Starting workflow execution", "start_node", start.ID)

	report := e.walk(runCtx, workflow, start, execCtx, opts, logger)

	return report, nil
}

// walk is the main interpreter loop.
func (e *Engine) walk(ctx context.Context, workflow *models.Workflow, start *models.Node, execCtx *models.ExecutionContext, opts Options, logger *slog.Logger) *models.ExecutionReport {
	var decision map[string]any

	output := make(map[string]any)
	current := start
	limit := opts.maxIterations()
	iterations := 0

	for current != nil {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				execCtx.RecordError(current.ID, CodeTimeout, "execution timed out")

				return e.finish(ctx, execCtx, models.ExecutionStatusTimedOut, nil, output)
			}

			execCtx.RecordError(current.ID, CodeNodeExecution, err.Error())

			return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, output)
		}

		if report := e.pausePoint(ctx, execCtx, output); report != nil {
			return report
		}

		iterations++
		if iterations > limit {
			execCtx.RecordError(current.ID, CodeMaxIterations,
				fmt.Sprintf("execution exceeded %d iterations", limit))

			return e.finish(ctx, execCtx, models.ExecutionStatusMaxIterationsExceeded, nil, output)
		}

		execCtx.RecordVisit(current.ID)

		result, err := e.executeNode(ctx, current, execCtx)
		connections := workflow.OutgoingConnections(current.ID)

		if err != nil || !result.Success {
			message := resultError(result, err)
			execCtx.RecordError(current.ID, CodeNodeExecution, message)

			e.publishNodeExecuted(ctx, execCtx, current, result, message)
			logger.Error("Node execution failed", "node_id", current.ID, "error", message)

			handler := resolveErrorHandler(connections)
			if handler == nil {
				return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, output)
			}

			logger.Info("Routing to error handler", "node_id", current.ID, "target", handler.Target)

			current = workflow.NodeByID(handler.Target)
			if current == nil {
				execCtx.RecordError(handler.Target, CodeStructural, "error handler target not found")

				return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, output)
			}

			continue
		}

		// Successful node outputs accumulate into the report output,
		// last-write-wins across revisits.
		for k, v := range result.Output {
			output[k] = v
		}

		e.publishNodeExecuted(ctx, execCtx, current, result, "")
		logger.Debug("Node executed", "node_id", current.ID, "connector", result.NextConnector)

		if current.IsTerminal() {
			if d, ok := result.Output["decision"].(map[string]any); ok {
				decision = d
			}

			return e.finish(ctx, execCtx, models.ExecutionStatusCompleted, decision, output)
		}

		next := resolveNext(execCtx, connections, result.NextConnector, logger)
		if next == nil {
			logger.Info("No outgoing connection matched, ending execution",
				"node_id", current.ID, "connector", result.NextConnector)

			return e.finish(ctx, execCtx, models.ExecutionStatusCompleted, decision, output)
		}

		current = workflow.NodeByID(next.Target)
		if current == nil {
			execCtx.RecordError(next.Target, CodeStructural, "connection target not found")

			return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, output)
		}
	}

	return e.finish(ctx, execCtx, models.ExecutionStatusCompleted, decision, output)
}

// executeNode creates the executor for one node and runs it, converting
// panics into errors so a misbehaving executor cannot take the engine down.
func (e *Engine) executeNode(ctx context.Context, node *models.Node, execCtx *models.ExecutionContext) (result *models.NodeExecutionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("node %s panicked: %v", node.ID, r)
		}
	}()

	executor, err := e.registry.CreateExecutor(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor for node %s: %w", node.ID, err)
	}

	return executor.Execute(ctx, execCtx)
}

// PauseExecution requests that a running execution suspend at its next
// iteration boundary. It registers an async operation representing the
// pause and returns it; finishing the operation, whether through
// ResumeExecution or directly through the operation registry, lets the run
// continue or fail.
func (e *Engine) PauseExecution(executionID, reason string) (*Operation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.active[executionID]
	if !ok {
		return nil, fmt.Errorf("pause execution %s: %w", executionID, ErrExecutionNotFound)
	}

	if state.operationID == "" {
		op := e.operations.Register(executionID, state.execCtx.Metadata.CurrentNodeID)
		state.operationID = op.ID
		state.pauseReason = reason
	}

	return e.operations.Get(state.operationID)
}

// ResumeExecution wakes a paused execution, merging the given variables into
// its variable bag before the walk continues. It is a thin wrapper over
// completing the pending pause operation.
func (e *Engine) ResumeExecution(executionID string, variables map[string]any) error {
	e.mu.Lock()
	state, ok := e.active[executionID]

	if !ok {
		e.mu.Unlock()

		return fmt.Errorf("resume execution %s: %w", executionID, ErrExecutionNotFound)
	}

	operationID := state.operationID
	e.mu.Unlock()

	if operationID == "" {
		return fmt.Errorf("resume execution %s: %w", executionID, ErrExecutionNotActive)
	}

	if err := e.operations.Complete(operationID, variables); err != nil {
		if errors.Is(err, ErrOperationFinished) {
			return fmt.Errorf("resume execution %s: %w", executionID, ErrExecutionNotActive)
		}

		return err
	}

	return nil
}

// pausePoint suspends the walk when a pause was requested, blocking on the
// pending operation. A completed operation resumes the walk with its result
// merged into the variables; a failed operation fails the run; a context
// expiry while paused times the run out.
func (e *Engine) pausePoint(ctx context.Context, execCtx *models.ExecutionContext, output map[string]any) *models.ExecutionReport {
	e.mu.Lock()
	state, ok := e.active[execCtx.ExecutionID]

	if !ok || state.operationID == "" {
		e.mu.Unlock()

		return nil
	}

	operationID := state.operationID
	reason := state.pauseReason
	state.status = models.ExecutionStatusPaused
	e.mu.Unlock()

	e.publish(ctx, execCtx, events.ExecutionPaused{
		BaseEvent:   e.baseEvent(events.ExecutionPausedEvent, execCtx),
		OperationID: operationID,
		Reason:      reason,
	})

	e.logger.Info("Execution paused",
		"execution_id", execCtx.ExecutionID, "operation_id", operationID, "reason", reason)

	variables, err := e.operations.Wait(ctx, operationID)
	if err != nil {
		if ctx.Err() != nil {
			execCtx.RecordError(execCtx.Metadata.CurrentNodeID, CodeTimeout, "execution timed out while paused")

			return e.finish(ctx, execCtx, models.ExecutionStatusTimedOut, nil, output)
		}

		execCtx.RecordError(execCtx.Metadata.CurrentNodeID, CodeNodeExecution, err.Error())

		return e.finish(ctx, execCtx, models.ExecutionStatusFailed, nil, output)
	}

	execCtx.MergeVariables(variables)

	e.mu.Lock()
	state.status = models.ExecutionStatusRunning
	state.operationID = ""
	state.pauseReason = ""
	e.mu.Unlock()

	e.publish(ctx, execCtx, events.ExecutionResumed{
		BaseEvent:   e.baseEvent(events.ExecutionResumedEvent, execCtx),
		OperationID: operationID,
	})

	e.logger.Info("Execution resumed", "execution_id", execCtx.ExecutionID, "operation_id", operationID)

	return nil
}

// GetExecution returns the report of a finished run, or a live snapshot for
// a run still in flight.
func (e *Engine) GetExecution(executionID string) (*models.ExecutionReport, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if report, ok := e.reports[executionID]; ok {
		return report, nil
	}

	state, ok := e.active[executionID]
	if !ok {
		return nil, fmt.Errorf("get execution %s: %w", executionID, ErrExecutionNotFound)
	}

	execCtx := state.execCtx

	return &models.ExecutionReport{
		ExecutionID:   execCtx.ExecutionID,
		WorkflowID:    execCtx.WorkflowID,
		Status:        state.status,
		Variables:     maps.Clone(execCtx.Variables),
		StartedAt:     execCtx.Metadata.StartTime,
		Duration:      execCtx.Elapsed(),
		ExecutionPath: append([]string(nil), execCtx.Metadata.ExecutionPath...),
		Errors:        append([]models.ExecutionError(nil), execCtx.Errors...),
	}, nil
}

// finish builds the terminal report, stores it for later retrieval, emits
// the closing lifecycle event and releases the active-execution slot.
func (e *Engine) finish(ctx context.Context, execCtx *models.ExecutionContext, status models.ExecutionStatus, decision, output map[string]any) *models.ExecutionReport {
	report := &models.ExecutionReport{
		ExecutionID:   execCtx.ExecutionID,
		WorkflowID:    execCtx.WorkflowID,
		Success:       status == models.ExecutionStatusCompleted,
		Status:        status,
		Output:        maps.Clone(output),
		Variables:     maps.Clone(execCtx.Variables),
		Decision:      decision,
		StartedAt:     execCtx.Metadata.StartTime,
		Duration:      execCtx.Elapsed(),
		ExecutionPath: append([]string(nil), execCtx.Metadata.ExecutionPath...),
		Errors:        append([]models.ExecutionError(nil), execCtx.Errors...),
	}

	e.mu.Lock()
	delete(e.active, execCtx.ExecutionID)
	e.reports[execCtx.ExecutionID] = report
	e.mu.Unlock()

	if report.Success {
		e.publish(ctx, execCtx, events.ExecutionCompleted{
			BaseEvent:     e.baseEvent(events.ExecutionCompletedEvent, execCtx),
			Status:        status,
			Decision:      decision,
			Duration:      report.Duration,
			ExecutionPath: report.ExecutionPath,
		})
	} else {
		e.publish(ctx, execCtx, events.ExecutionFailed{
			BaseEvent:     e.baseEvent(events.ExecutionFailedEvent, execCtx),
			Status:        status,
			Errors:        report.Errors,
			Duration:      report.Duration,
			ExecutionPath: report.ExecutionPath,
		})
	}

	e.logger.Info("Workflow execution finished",
		"execution_id", execCtx.ExecutionID,
		"status", status,
		"duration", report.Duration,
		"path_length", len(report.ExecutionPath))

	return report
}

func (e *Engine) publishNodeExecuted(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node, result *models.NodeExecutionResult, errorMessage string) {
	event := events.NodeExecuted{
		BaseEvent: e.baseEvent(events.NodeExecutedEvent, execCtx),
		NodeID:    node.ID,
		NodeType:  string(node.Type),
		Success:   errorMessage == "",
		Error:     errorMessage,
	}

	if result != nil {
		event.NextConnector = result.NextConnector
		event.ExecutionTime = result.Metadata.ExecutionTime
	}

	e.publish(ctx, execCtx, event)
}

func (e *Engine) publish(ctx context.Context, execCtx *models.ExecutionContext, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, execCtx.ExecutionID, event); err != nil {
		e.logger.Warn("Failed to publish execution event",
			"event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, execCtx *models.ExecutionContext) events.BaseEvent {
	return events.BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		ExecutionID: execCtx.ExecutionID,
		WorkflowID:  execCtx.WorkflowID,
	}
}

func resultError(result *models.NodeExecutionResult, err error) string {
	if err != nil {
		return err.Error()
	}

	if result != nil && result.Error != "" {
		return result.Error
	}

	return "node execution failed"
}
