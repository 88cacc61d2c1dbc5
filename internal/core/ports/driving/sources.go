package driving

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// SourceService exposes the configured sources.
type SourceService interface {
	// Sources returns the configured sources in configuration order.
	Sources() []domain.Source

	// Channels lists what the source's connector can see.
	Channels(ctx context.Context, name string) ([]string, error)
}

// RunHistory exposes recorded sync runs.
type RunHistory interface {
	// History returns the latest runs of a source, newest first.
	// An empty source name matches every source.
	History(ctx context.Context, source string, limit int) ([]domain.SyncReport, error)
}
