// Package datasource provides the executor that pulls external data (credit
// bureau, bank statements, employment verification) into the execution
// context through registered connectors.
package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Lookup resolves a data source connector by id.
type Lookup interface {
	Source(id string) (protocol.DataSource, bool)
}

// Executor fetches from one configured data source and merges the response
// into the execution variables.
type Executor struct {
	node   *models.Node
	config models.DataSourceConfig
	lookup Lookup
}

// NewExecutor creates a data-source executor bound to the given node.
func NewExecutor(node *models.Node, lookup Lookup) (*Executor, error) {
	var config models.DataSourceConfig
	if err := node.DecodeConfig(&config); err != nil {
		return nil, fmt.Errorf("node %s: invalid data_source config: %w", node.ID, err)
	}

	if config.SourceID == "" {
		return nil, fmt.Errorf("node %s: missing required field 'source_id'", node.ID)
	}

	return &Executor{node: node, config: config, lookup: lookup}, nil
}

// Node returns the bound node.
func (e *Executor) Node() *models.Node {
	return e.node
}

// Execute fetches from the connector and merges the (optionally filtered)
// response into the execution variables.
func (e *Executor) Execute(ctx context.Context, execCtx *models.ExecutionContext) (*models.NodeExecutionResult, error) {
	started := time.Now()

	if e.lookup == nil {
		return models.NewErrorResult(e.node.ID, "no data source connectors configured", started), nil
	}

	source, ok := e.lookup.Source(e.config.SourceID)
	if !ok {
		return models.NewErrorResult(e.node.ID,
			fmt.Sprintf("data source %q is not registered", e.config.SourceID), started), nil
	}

	request := make(map[string]any, len(execCtx.InputData)+len(e.config.Params))

	for k, v := range execCtx.InputData {
		request[k] = v
	}

	for k, v := range e.config.Params {
		request[k] = v
	}

	response, err := source.Fetch(ctx, request)
	if err != nil {
		return models.NewErrorResult(e.node.ID,
			fmt.Sprintf("data source %q fetch failed: %v", e.config.SourceID, err), started), nil
	}

	output := filterFields(response, e.config.Fields)

	execCtx.MergeNodeOutput(e.node.ID, output)

	if e.config.ContextKey != "" {
		execCtx.SetVariable(e.config.ContextKey, output)
	}

	return models.NewSuccessResult(e.node.ID, models.ConnectorDefault, output, started), nil
}

func filterFields(response map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return response
	}

	out := make(map[string]any, len(fields))

	for _, field := range fields {
		if v, ok := response[field]; ok {
			out[field] = v
		}
	}

	return out
}

// Validate checks structural requirements plus the source reference.
func (e *Executor) Validate() models.ValidationResult {
	result := models.ValidationResult{IsValid: true}

	if e.node.ID == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "node id is required")
	}

	if e.node.Name == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "node label is required")
	}

	if e.config.SourceID == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, "missing required field 'source_id'")
	} else if e.lookup != nil {
		if _, ok := e.lookup.Source(e.config.SourceID); !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("data source %q is not registered", e.config.SourceID))
		}
	}

	return result
}
