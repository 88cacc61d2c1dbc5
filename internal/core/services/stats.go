package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService reports record counts per collection.
type StatsService struct {
	store driven.VectorStore
}

// NewStatsService creates a stats service.
func NewStatsService(store driven.VectorStore) *StatsService {
	return &StatsService{store: store}
}

// Stats returns statistics for every existing collection.
func (s *StatsService) Stats(ctx context.Context) ([]domain.CollectionStats, error) {
	names, err := s.store.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	stats := make([]domain.CollectionStats, 0, len(names))
	for _, name := range names {
		index, err := s.store.Collection(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("open collection %s: %w", name, err)
		}
		count, err := index.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		dims, err := index.Dimensions(ctx)
		if err != nil {
			return nil, fmt.Errorf("dimensions %s: %w", name, err)
		}
		stats = append(stats, domain.CollectionStats{Name: name, Records: count, Dimensions: dims})
	}
	return stats, nil
}
