package driven

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// Connector fetches conversation data from one origin platform.
// Each source type (slack, github, export) implements this interface.
type Connector interface {
	// Type returns the source type identifier.
	Type() domain.SourceType

	// FetchMessages retrieves all currently visible root messages together
	// with their thread replies in chronological order, root excluded.
	// Returns an error wrapping domain.ErrSourceUnavailable when the platform
	// cannot be reached, or domain.ErrSourceEmpty when the target channel
	// does not exist.
	FetchMessages(ctx context.Context) ([]domain.Message, error)

	// Permalink resolves a stable external link for a message identity.
	// Returns "" and a nil error when no link is available.
	Permalink(ctx context.Context, messageID string) (string, error)

	// List returns the channels, streams or repositories visible to the connector.
	List(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
