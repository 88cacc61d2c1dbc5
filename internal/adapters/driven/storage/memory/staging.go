package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure StagingStore implements the interface.
var _ driven.StagingStore = (*StagingStore)(nil)

// StagingStore holds the latest fetched batch per collection in memory.
type StagingStore struct {
	mu      sync.RWMutex
	batches map[string][]domain.Message
}

// NewStagingStore creates a new in-memory staging store.
func NewStagingStore() *StagingStore {
	return &StagingStore{
		batches: make(map[string][]domain.Message),
	}
}

// Stage replaces the staged batch for a collection.
func (s *StagingStore) Stage(_ context.Context, collection string, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[collection] = copyMessages(messages)
	return nil
}

// Load returns the staged batch for a collection.
func (s *StagingStore) Load(_ context.Context, collection string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[collection]
	if !ok {
		return nil, fmt.Errorf("staged batch %s: %w", collection, domain.ErrNotFound)
	}
	return copyMessages(batch), nil
}

func copyMessages(in []domain.Message) []domain.Message {
	out := make([]domain.Message, len(in))
	for i := range in {
		out[i] = in[i]
		out[i].Replies = append([]domain.Reply(nil), in[i].Replies...)
	}
	return out
}
