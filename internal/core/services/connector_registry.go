package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure ConnectorRegistry implements the interface.
var _ driven.ConnectorFactory = (*ConnectorRegistry)(nil)

// ConnectorRegistry builds connectors from source configuration.
// Builders are registered by the application at startup.
type ConnectorRegistry struct {
	mu       sync.RWMutex
	builders map[domain.SourceType]driven.ConnectorBuilder
}

// NewConnectorRegistry creates an empty connector registry.
func NewConnectorRegistry() *ConnectorRegistry {
	return &ConnectorRegistry{
		builders: make(map[domain.SourceType]driven.ConnectorBuilder),
	}
}

// Register adds a builder for a source type, replacing any previous one.
func (r *ConnectorRegistry) Register(sourceType domain.SourceType, builder driven.ConnectorBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[sourceType] = builder
}

// Create builds the connector for a source.
func (r *ConnectorRegistry) Create(ctx context.Context, source domain.Source) (driven.Connector, error) {
	if !source.Type.IsValid() {
		return nil, fmt.Errorf("source type %q: %w", source.Type, domain.ErrUnsupportedType)
	}

	r.mu.RLock()
	builder, ok := r.builders[source.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s connector: %w", source.Type, domain.ErrNotImplemented)
	}

	connector, err := builder(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("build %s connector: %w", source.Type, err)
	}
	return connector, nil
}

// SupportedTypes returns the registered source types in name order.
func (r *ConnectorRegistry) SupportedTypes() []domain.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.SourceType, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
