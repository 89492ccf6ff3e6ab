package protocol

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/models"
)

// DataSource is an external data connector (credit bureau, bank statements,
// employment verification). The engine only depends on the request/response
// contract: a flat key-value response keyed by source identifier.
type DataSource interface {
	// ID returns the unique identifier of this source, e.g. "credit-bureau".
	ID() string

	// Fetch retrieves data for the given request parameters. Responses must
	// be flat enough to merge into the execution variables.
	Fetch(ctx context.Context, request map[string]any) (map[string]any, error)
}

// WorkflowSource resolves workflow definitions for the engine. Absence of a
// workflow is fatal to an execution.
type WorkflowSource interface {
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
}

// RuleSetSource resolves rule sets referenced by id from rule_set node
// configuration.
type RuleSetSource interface {
	RuleSetByID(ctx context.Context, id string) (*models.RuleSet, error)
}
