package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/decisionflow/decisionflow/pkg/cmd"
	"github.com/decisionflow/decisionflow/pkg/datasources"
	"github.com/decisionflow/decisionflow/pkg/engine"
	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/registry"
)

var errNoWorkflow = errors.New("either --file or --workflow is required")

// staticSource serves a single workflow loaded from disk.
type staticSource struct {
	workflow *models.Workflow
}

func (s *staticSource) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	if id != s.workflow.ID {
		return nil, fmt.Errorf("workflow %s not found", id)
	}

	return s.workflow, nil
}

func runExecute(ctx context.Context, logger *slog.Logger, command *cli.Command) error {
	input, err := loadInput(command)
	if err != nil {
		return err
	}

	reg := registry.NewRegistry(logger)

	var eng *engine.Engine

	workflowID := command.String("workflow")

	switch {
	case command.String("file") != "":
		workflow, err := loadWorkflow(command.String("file"))
		if err != nil {
			return err
		}

		workflowID = workflow.ID

		reg.RegisterDefaults(logger, nil, datasources.NewDefaultRegistry(logger))
		eng = engine.NewEngine(&staticSource{workflow: workflow}, reg, nil, logger, nil)
	case workflowID != "":
		persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
		if err != nil {
			return err
		}

		defer func() {
			if err := persistence.Close(ctx); err != nil {
				logger.Error("Failed to close persistence", "error", err)
			}
		}()

		reg.RegisterDefaults(logger, persistence, datasources.NewDefaultRegistry(logger))
		eng = engine.NewEngine(persistence, reg, nil, logger, nil)
	default:
		return errNoWorkflow
	}

	report, err := eng.ExecuteWorkflow(ctx, workflowID, input, engine.Options{
		Timeout:       command.Duration("timeout"),
		MaxIterations: command.Int("max-iterations"),
	})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	if !report.Success {
		return fmt.Errorf("execution %s finished with status %s", report.ExecutionID, report.Status)
	}

	return nil
}

func runValidate(command *cli.Command) error {
	workflow, err := loadWorkflow(command.String("file"))
	if err != nil {
		return err
	}

	if err := workflow.Validate(); err != nil {
		return err
	}

	fmt.Printf("workflow %s is valid (%d nodes, %d connections)\n",
		workflow.ID, len(workflow.Nodes), len(workflow.Connections))

	return nil
}

func loadWorkflow(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}

	if workflow.ID == "" {
		workflow.ID = "local"
	}

	return &workflow, nil
}

func loadInput(command *cli.Command) (map[string]any, error) {
	raw := command.String("input")

	if path := command.String("input-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}

		raw = string(data)
	}

	if raw == "" {
		return map[string]any{}, nil
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, fmt.Errorf("failed to parse input JSON: %w", err)
	}

	return input, nil
}
