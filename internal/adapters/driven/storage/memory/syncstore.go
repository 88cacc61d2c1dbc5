package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure SyncRunStore implements the interface.
var _ driven.SyncRunStore = (*SyncRunStore)(nil)

// SyncRunStore is an in-memory implementation of driven.SyncRunStore.
type SyncRunStore struct {
	mu   sync.RWMutex
	runs []domain.SyncReport
}

// NewSyncRunStore creates a new in-memory sync run store.
func NewSyncRunStore() *SyncRunStore {
	return &SyncRunStore{}
}

// Record stores a finished run.
func (s *SyncRunStore) Record(_ context.Context, report *domain.SyncReport) error {
	if report == nil {
		return fmt.Errorf("nil report: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *report
	r.Failures = append([]domain.MessageFailure(nil), report.Failures...)
	s.runs = append(s.runs, r)
	return nil
}

// Latest returns up to limit runs, newest first. An empty source matches all.
func (s *SyncRunStore) Latest(_ context.Context, source string, limit int) ([]domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SyncReport
	for i := len(s.runs) - 1; i >= 0; i-- {
		if source != "" && s.runs[i].Source != source {
			continue
		}
		out = append(out, s.runs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
