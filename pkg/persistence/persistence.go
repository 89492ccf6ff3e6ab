// Package persistence provides the storage abstraction for workflow
// definitions, rule sets and execution reports.
package persistence

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// Persistence is the full storage contract. It also satisfies the engine's
// workflow and rule-set source interfaces.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	RuleSets(ctx context.Context) ([]*models.RuleSet, error)
	RuleSetByID(ctx context.Context, id string) (*models.RuleSet, error)
	SaveRuleSet(ctx context.Context, ruleSet *models.RuleSet) error
	DeleteRuleSet(ctx context.Context, id string) error

	SaveReport(ctx context.Context, report *models.ExecutionReport) error
	ReportByExecutionID(ctx context.Context, executionID string) (*models.ExecutionReport, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
