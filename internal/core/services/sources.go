package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
)

// Ensure SourceCatalog implements the interface.
var _ driving.SourceService = (*SourceCatalog)(nil)

// SourceCatalog lists configured sources and probes their connectors.
type SourceCatalog struct {
	factory driven.ConnectorFactory
	sources []domain.Source
}

// NewSourceCatalog creates a catalog over the configured sources.
func NewSourceCatalog(factory driven.ConnectorFactory, sources []domain.Source) *SourceCatalog {
	return &SourceCatalog{factory: factory, sources: sources}
}

// Sources returns a copy of the configured sources.
func (c *SourceCatalog) Sources() []domain.Source {
	out := make([]domain.Source, len(c.sources))
	copy(out, c.sources)
	return out
}

// Channels builds the named source's connector and lists its channels.
func (c *SourceCatalog) Channels(ctx context.Context, name string) ([]string, error) {
	var source *domain.Source
	for i := range c.sources {
		if c.sources[i].Name == name {
			source = &c.sources[i]
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("source %q: %w", name, domain.ErrNotFound)
	}

	connector, err := c.factory.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	channels, err := connector.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	return channels, nil
}
