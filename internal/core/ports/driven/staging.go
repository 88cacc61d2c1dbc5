package driven

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// StagingStore holds a fetched batch between fetching and processing.
type StagingStore interface {
	// Stage replaces the staged batch for a collection.
	Stage(ctx context.Context, collection string, messages []domain.Message) error

	// Load returns the staged batch for a collection, in fetch order.
	Load(ctx context.Context, collection string) ([]domain.Message, error)
}
