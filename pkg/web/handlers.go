package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/decisionflow/decisionflow/pkg/engine"
	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/persistence"
	"github.com/decisionflow/decisionflow/pkg/registry"
)

// APIHandlers carries the collaborators every endpoint needs.
type APIHandlers struct {
	store     persistence.Persistence
	engine    *engine.Engine
	registry  *registry.Registry
	validator *validator.Validate
	logger    *slog.Logger
}

// NewAPIHandlers builds the handler set.
func NewAPIHandlers(store persistence.Persistence, eng *engine.Engine, reg *registry.Registry, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:     store,
		engine:    eng,
		registry:  reg,
		validator: validate,
		logger:    logger.With("module", "web"),
	}
}

// HealthCheck reports storage availability.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.store.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}

// GetWorkflows lists every workflow.
func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows, "total_count": len(workflows)})
}

// GetWorkflow fetches one workflow by id.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.store.WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		if persistence.IsNotFound(err) {
			return notFound(c, "workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

// SaveWorkflow creates or replaces a workflow definition. Definitions are
// structurally validated before they are stored.
func (h *APIHandlers) SaveWorkflow(c fiber.Ctx) error {
	var workflow models.Workflow
	if err := c.Bind().JSON(&workflow); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if workflow.ID == "" {
		workflow.ID = c.Params("id")
	}

	if workflow.ID == "" {
		return badRequest(c, "workflow id is required")
	}

	if err := h.validator.Struct(workflow); err != nil {
		return badRequest(c, err.Error())
	}

	if err := workflow.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = time.Now().UTC()
	}

	workflow.UpdatedAt = time.Now().UTC()

	if err := h.store.SaveWorkflow(c.Context(), &workflow); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

// DeleteWorkflow removes a workflow definition.
func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.store.DeleteWorkflow(c.Context(), c.Params("id")); err != nil {
		if persistence.IsNotFound(err) {
			return notFound(c, "workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteWorkflow starts an execution. Synchronous requests block until the
// run reaches a terminal state and return the full report; async requests
// return the execution id immediately.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	workflowID := c.Params("id")

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	opts := engine.Options{
		Timeout:       time.Duration(req.TimeoutMs) * time.Millisecond,
		MaxIterations: req.MaxIterations,
		UserID:        req.UserID,
		SessionID:     req.SessionID,
	}

	if req.Async {
		report := h.runAsync(workflowID, req.Input, opts)

		return c.Status(fiber.StatusAccepted).JSON(report)
	}

	report, err := h.engine.ExecuteWorkflow(c.Context(), workflowID, req.Input, opts)
	if err != nil {
		if persistence.IsNotFound(err) {
			return notFound(c, "workflow not found")
		}

		if errors.Is(err, models.ErrInvalidWorkflow) {
			return badRequest(c, err.Error())
		}
	}

	h.persistReport(c.Context(), report)

	return c.JSON(report)
}

// runAsync launches the execution in the background and hands out the
// execution id before the run finishes.
func (h *APIHandlers) runAsync(workflowID string, input map[string]any, opts engine.Options) ExecutionStartedResponse {
	opts.ExecutionID = models.GenerateExecutionID()

	go func() {
		ctx := context.Background()

		report, err := h.engine.ExecuteWorkflow(ctx, workflowID, input, opts)
		if err != nil {
			h.logger.Error("Async execution failed", "workflow_id", workflowID, "error", err)
		}

		h.persistReport(ctx, report)
	}()

	return ExecutionStartedResponse{ExecutionID: opts.ExecutionID, Status: string(models.ExecutionStatusRunning)}
}

// GetExecution returns the live snapshot or terminal report of one
// execution, falling back to stored reports for runs finished before a
// restart.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	executionID := c.Params("id")

	report, err := h.engine.GetExecution(executionID)
	if err == nil {
		return c.JSON(report)
	}

	stored, storeErr := h.store.ReportByExecutionID(c.Context(), executionID)
	if storeErr != nil {
		if persistence.IsNotFound(storeErr) {
			return notFound(c, "execution not found")
		}

		return internalError(c, storeErr)
	}

	return c.JSON(stored)
}

// PauseExecution suspends a running execution at its next node boundary.
func (h *APIHandlers) PauseExecution(c fiber.Ctx) error {
	var req PauseExecutionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "invalid JSON format")
		}
	}

	op, err := h.engine.PauseExecution(c.Params("id"), req.Reason)
	if err != nil {
		if errors.Is(err, engine.ErrExecutionNotFound) {
			return notFound(c, "execution is not running")
		}

		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(op)
}

// ResumeExecution wakes a paused execution with merged variables.
func (h *APIHandlers) ResumeExecution(c fiber.Ctx) error {
	var req ResumeExecutionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "invalid JSON format")
		}
	}

	if err := h.engine.ResumeExecution(c.Params("id"), req.Variables); err != nil {
		switch {
		case errors.Is(err, engine.ErrExecutionNotFound):
			return notFound(c, "execution is not running")
		case errors.Is(err, engine.ErrExecutionNotActive):
			return conflict(c, "execution is not paused")
		default:
			return internalError(c, err)
		}
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// GetOperation returns the state of one async operation.
func (h *APIHandlers) GetOperation(c fiber.Ctx) error {
	op, err := h.engine.Operations().Get(c.Params("id"))
	if err != nil {
		return notFound(c, "operation not found")
	}

	return c.JSON(op)
}

// CompleteOperation finishes an async operation, either successfully with a
// result or with an error message.
func (h *APIHandlers) CompleteOperation(c fiber.Ctx) error {
	var req CompleteOperationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	operationID := c.Params("id")

	var err error
	if req.Error != "" {
		err = h.engine.Operations().Fail(operationID, errors.New(req.Error))
	} else {
		err = h.engine.Operations().Complete(operationID, req.Result)
	}

	if err != nil {
		switch {
		case errors.Is(err, engine.ErrOperationNotFound):
			return notFound(c, "operation not found")
		case errors.Is(err, engine.ErrOperationFinished):
			return conflict(c, "operation already finished")
		default:
			return internalError(c, err)
		}
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// GetRuleSets lists every stored rule set.
func (h *APIHandlers) GetRuleSets(c fiber.Ctx) error {
	ruleSets, err := h.store.RuleSets(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"rule_sets": ruleSets, "total_count": len(ruleSets)})
}

// GetRuleSet fetches one rule set by id.
func (h *APIHandlers) GetRuleSet(c fiber.Ctx) error {
	ruleSet, err := h.store.RuleSetByID(c.Context(), c.Params("id"))
	if err != nil {
		if persistence.IsNotFound(err) {
			return notFound(c, "rule set not found")
		}

		return internalError(c, err)
	}

	return c.JSON(ruleSet)
}

// SaveRuleSet creates or replaces a rule set.
func (h *APIHandlers) SaveRuleSet(c fiber.Ctx) error {
	var ruleSet models.RuleSet
	if err := c.Bind().JSON(&ruleSet); err != nil {
		return badRequest(c, "invalid JSON format")
	}

	if ruleSet.ID == "" {
		ruleSet.ID = c.Params("id")
	}

	if ruleSet.ID == "" {
		return badRequest(c, "rule set id is required")
	}

	if err := h.validator.Struct(ruleSet); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.SaveRuleSet(c.Context(), &ruleSet); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ruleSet)
}

// DeleteRuleSet removes a rule set.
func (h *APIHandlers) DeleteRuleSet(c fiber.Ctx) error {
	if err := h.store.DeleteRuleSet(c.Context(), c.Params("id")); err != nil {
		if persistence.IsNotFound(err) {
			return notFound(c, "rule set not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetNodeTypes describes every registered executor type, including its
// configuration schema.
func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := make([]NodeTypeResponse, 0)

	for _, nodeType := range models.KnownNodeTypes() {
		factory, ok := h.registry.Factory(nodeType)
		if !ok {
			continue
		}

		types = append(types, NodeTypeResponse{
			Type:        string(factory.Type()),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return c.JSON(fiber.Map{"node_types": types})
}

func (h *APIHandlers) persistReport(ctx context.Context, report *models.ExecutionReport) {
	if report == nil {
		return
	}

	if err := h.store.SaveReport(ctx, report); err != nil {
		h.logger.Warn("Failed to persist execution report",
			"execution_id", report.ExecutionID, "error", err)
	}
}
