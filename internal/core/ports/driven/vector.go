package driven

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// VectorStore opens named collections of vector records.
type VectorStore interface {
	// Collection creates or reopens the named collection.
	Collection(ctx context.Context, name string) (VectorIndex, error)

	// Collections lists the names of all existing collections.
	Collections(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

// VectorIndex is one named collection with similarity search.
// Failures wrap domain.ErrIndexUnavailable.
type VectorIndex interface {
	// Name returns the collection name.
	Name() string

	// Get returns the records for the given identities. Missing identities
	// are absent from the result. With no ids, every record is returned.
	Get(ctx context.Context, ids ...string) ([]domain.VectorRecord, error)

	// Add inserts a new record. Behaviour for an existing identity is
	// undefined; callers route to Update themselves.
	Add(ctx context.Context, record domain.VectorRecord) error

	// Update overwrites the record with the same identity.
	Update(ctx context.Context, record domain.VectorRecord) error

	// Query returns up to k records nearest to the vector, ordered by
	// ascending cosine distance, with document, distance and metadata.
	Query(ctx context.Context, vector []float32, k int) ([]domain.VectorMatch, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the collection's fixed vector size, or 0 while empty.
	Dimensions(ctx context.Context) (int, error)
}
