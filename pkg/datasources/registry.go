// Package datasources provides the built-in external data connectors (credit
// bureau, bank statements, employment verification), a lookup registry for
// them and a redis-backed caching decorator.
package datasources

import (
	"log/slog"
	"sync"

	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// Registry holds data source connectors addressable by id. It satisfies the
// data_source executor's lookup contract.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]protocol.DataSource
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]protocol.DataSource)}
}

// NewDefaultRegistry creates a registry pre-populated with the built-in
// simulated connectors.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	registry := NewRegistry()
	registry.Register(NewCreditBureau(logger))
	registry.Register(NewBankStatements(logger))
	registry.Register(NewEmploymentVerification(logger))

	return registry
}

// Register adds (or replaces) a connector under its own id.
func (r *Registry) Register(source protocol.DataSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[source.ID()] = source
}

// Source resolves a connector by id.
func (r *Registry) Source(id string) (protocol.DataSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[id]

	return source, ok
}

// IDs returns the ids of every registered connector.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}

	return ids
}
