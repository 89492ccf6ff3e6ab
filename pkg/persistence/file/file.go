// Package file provides a file-based persistence implementation. Each entity
// is one JSON document under a per-collection directory, which keeps local
// development and test setups dependency-free.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/persistence"
)

const (
	workflowsDir = "workflows"
	ruleSetsDir  = "rulesets"
	reportsDir   = "reports"
)

// Persistence implements the persistence contract on top of the file system.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" scheme prefix is accepted and stripped.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.TrimPrefix(root, "file://")

	for _, dir := range []string{workflowsDir, ruleSetsDir, reportsDir} {
		if err := os.MkdirAll(filepath.Join(cleanRoot, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	return &Persistence{root: cleanRoot}, nil
}

// Workflows returns every stored workflow.
func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := p.listIDs(workflowsDir)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := p.WorkflowByID(ctx, id)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// WorkflowByID loads one workflow.
func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := p.read(workflowsDir, id, &workflow, persistence.ErrWorkflowNotFound); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// SaveWorkflow writes one workflow, replacing any existing document.
func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return errors.New("workflow id is required")
	}

	return p.write(workflowsDir, workflow.ID, workflow)
}

// DeleteWorkflow removes one workflow.
func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	return p.remove(workflowsDir, id, persistence.ErrWorkflowNotFound)
}

// RuleSets returns every stored rule set.
func (p *Persistence) RuleSets(ctx context.Context) ([]*models.RuleSet, error) {
	ids, err := p.listIDs(ruleSetsDir)
	if err != nil {
		return nil, err
	}

	ruleSets := make([]*models.RuleSet, 0, len(ids))

	for _, id := range ids {
		ruleSet, err := p.RuleSetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		ruleSets = append(ruleSets, ruleSet)
	}

	return ruleSets, nil
}

// RuleSetByID loads one rule set.
func (p *Persistence) RuleSetByID(_ context.Context, id string) (*models.RuleSet, error) {
	var ruleSet models.RuleSet
	if err := p.read(ruleSetsDir, id, &ruleSet, persistence.ErrRuleSetNotFound); err != nil {
		return nil, err
	}

	return &ruleSet, nil
}

// SaveRuleSet writes one rule set.
func (p *Persistence) SaveRuleSet(_ context.Context, ruleSet *models.RuleSet) error {
	if ruleSet.ID == "" {
		return errors.New("rule set id is required")
	}

	return p.write(ruleSetsDir, ruleSet.ID, ruleSet)
}

// DeleteRuleSet removes one rule set.
func (p *Persistence) DeleteRuleSet(_ context.Context, id string) error {
	return p.remove(ruleSetsDir, id, persistence.ErrRuleSetNotFound)
}

// SaveReport writes one execution report keyed by execution id.
func (p *Persistence) SaveReport(_ context.Context, report *models.ExecutionReport) error {
	if report.ExecutionID == "" {
		return errors.New("execution id is required")
	}

	return p.write(reportsDir, report.ExecutionID, report)
}

// ReportByExecutionID loads one execution report.
func (p *Persistence) ReportByExecutionID(_ context.Context, executionID string) (*models.ExecutionReport, error) {
	var report models.ExecutionReport
	if err := p.read(reportsDir, executionID, &report, persistence.ErrReportNotFound); err != nil {
		return nil, err
	}

	return &report, nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); err != nil {
		return fmt.Errorf("persistence root unavailable: %w", err)
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) listIDs(dir string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(filepath.Join(p.root, dir)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}

func (p *Persistence) read(dir, id string, out any, notFound error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, err := os.ReadFile(p.path(dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, notFound)
		}

		return fmt.Errorf("failed to read %s/%s: %w", dir, id, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", dir, id, err)
	}

	return nil
}

func (p *Persistence) write(dir, id string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", dir, id, err)
	}

	if err := os.WriteFile(p.path(dir, id), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", dir, id, err)
	}

	return nil
}

func (p *Persistence) remove(dir, id string, notFound error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.path(dir, id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, notFound)
		}

		return fmt.Errorf("failed to delete %s/%s: %w", dir, id, err)
	}

	return nil
}

func (p *Persistence) path(dir, id string) string {
	return filepath.Join(p.root, dir, id+".json")
}
