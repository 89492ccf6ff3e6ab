// Package registry maps node types to executor factories. Executing a node
// whose type has no registered factory is a configuration error, always
// fatal, never silently skipped.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/decisionflow/decisionflow/pkg/models"
	"github.com/decisionflow/decisionflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Registry holds executor factories keyed by node type.
type Registry struct {
	logger    *slog.Logger
	factories map[models.NodeType]protocol.ExecutorFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.NodeType]protocol.ExecutorFactory),
	}
}

// RegisterExecutor registers a factory, replacing any previous registration
// for the same node type. This is the extension point for node types beyond
// the built-in seven.
func (r *Registry) RegisterExecutor(factory protocol.ExecutorFactory) {
	r.factories[factory.Type()] = factory

	if r.logger != nil {
		r.logger.Debug("Registered node executor factory", "node_type", string(factory.Type()))
	}
}

// CreateExecutor creates an executor bound to the node, validating the node's
// config against the factory's JSON schema first.
func (r *Registry) CreateExecutor(ctx context.Context, node *models.Node) (protocol.NodeExecutor, error) {
	factory, ok := r.factories[node.Type]
	if !ok {
		return nil, fmt.Errorf("no executor registered for node type %q", node.Type)
	}

	if err := r.validateConfig(factory, node); err != nil {
		return nil, fmt.Errorf("node %s: %w", node.ID, err)
	}

	return factory.Create(ctx, node)
}

// Factory returns the registered factory for a node type.
func (r *Registry) Factory(nodeType models.NodeType) (protocol.ExecutorFactory, bool) {
	factory, ok := r.factories[nodeType]

	return factory, ok
}

// RegisteredTypes returns every registered node type.
func (r *Registry) RegisteredTypes() []models.NodeType {
	types := make([]models.NodeType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}

	return types
}

// validateConfig checks the node's raw config against the factory schema.
// Schema violations are configuration errors caught before execution starts.
func (r *Registry) validateConfig(factory protocol.ExecutorFactory, node *models.Node) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	config := node.Config
	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}

	if !result.Valid() {
		first := result.Errors()[0]

		return fmt.Errorf("invalid config: %s", first.String())
	}

	return nil
}
