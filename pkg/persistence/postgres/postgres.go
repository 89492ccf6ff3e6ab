// Package postgres provides a PostgreSQL persistence implementation. Entity
// bodies are stored as JSONB documents alongside the columns the API filters
// on.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/persistence"
	"github.com/decisionflow/decisionflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence contract over PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings and migrates the database.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := sqlbase.NewMigrationManager(logger, db, migrations())
	if err := manager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: db, logger: logger.With("module", "postgres")}, nil
}

// Workflows returns every stored workflow, newest first.
func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT data FROM workflows ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*models.Workflow

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		var workflow models.Workflow
		if err := json.Unmarshal(data, &workflow); err != nil {
			return nil, fmt.Errorf("failed to decode workflow: %w", err)
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, rows.Err()
}

// WorkflowByID loads one workflow.
func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := p.readDocument(ctx,
		"SELECT data FROM workflows WHERE id = $1", id, &workflow, persistence.ErrWorkflowNotFound); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// SaveWorkflow upserts one workflow.
func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return errors.New("workflow id is required")
	}

	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO workflows (id, status, owner, data, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			owner = EXCLUDED.owner,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, workflow.ID, string(workflow.Status), workflow.Owner, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// DeleteWorkflow removes one workflow.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.deleteRow(ctx, "DELETE FROM workflows WHERE id = $1", id, persistence.ErrWorkflowNotFound)
}

// RuleSets returns every stored rule set.
func (p *Persistence) RuleSets(ctx context.Context) ([]*models.RuleSet, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT data FROM rule_sets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query rule sets: %w", err)
	}
	defer rows.Close()

	var ruleSets []*models.RuleSet

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan rule set: %w", err)
		}

		var ruleSet models.RuleSet
		if err := json.Unmarshal(data, &ruleSet); err != nil {
			return nil, fmt.Errorf("failed to decode rule set: %w", err)
		}

		ruleSets = append(ruleSets, &ruleSet)
	}

	return ruleSets, rows.Err()
}

// RuleSetByID loads one rule set.
func (p *Persistence) RuleSetByID(ctx context.Context, id string) (*models.RuleSet, error) {
	var ruleSet models.RuleSet
	if err := p.readDocument(ctx,
		"SELECT data FROM rule_sets WHERE id = $1", id, &ruleSet, persistence.ErrRuleSetNotFound); err != nil {
		return nil, err
	}

	return &ruleSet, nil
}

// SaveRuleSet upserts one rule set.
func (p *Persistence) SaveRuleSet(ctx context.Context, ruleSet *models.RuleSet) error {
	if ruleSet.ID == "" {
		return errors.New("rule set id is required")
	}

	data, err := json.Marshal(ruleSet)
	if err != nil {
		return fmt.Errorf("failed to encode rule set: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO rule_sets (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, ruleSet.ID, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save rule set %s: %w", ruleSet.ID, err)
	}

	return nil
}

// DeleteRuleSet removes one rule set.
func (p *Persistence) DeleteRuleSet(ctx context.Context, id string) error {
	return p.deleteRow(ctx, "DELETE FROM rule_sets WHERE id = $1", id, persistence.ErrRuleSetNotFound)
}

// SaveReport inserts one execution report. Reports are append-only.
func (p *Persistence) SaveReport(ctx context.Context, report *models.ExecutionReport) error {
	if report.ExecutionID == "" {
		return errors.New("execution id is required")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO execution_reports (execution_id, workflow_id, status, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (execution_id) DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data
	`, report.ExecutionID, report.WorkflowID, string(report.Status), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ExecutionID, err)
	}

	return nil
}

// ReportByExecutionID loads one execution report.
func (p *Persistence) ReportByExecutionID(ctx context.Context, executionID string) (*models.ExecutionReport, error) {
	var report models.ExecutionReport
	if err := p.readDocument(ctx,
		"SELECT data FROM execution_reports WHERE execution_id = $1",
		executionID, &report, persistence.ErrReportNotFound); err != nil {
		return nil, err
	}

	return &report, nil
}

// HealthCheck verifies the database connection.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db == nil {
		return nil
	}

	if err := p.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

func (p *Persistence) readDocument(ctx context.Context, query, id string, out any, notFound error) error {
	var data []byte

	err := p.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", id, notFound)
	}

	if err != nil {
		return fmt.Errorf("failed to load %s: %w", id, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", id, err)
	}

	return nil
}

func (p *Persistence) deleteRow(ctx context.Context, query, id string, notFound error) error {
	result, err := p.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", id, notFound)
	}

	return nil
}
