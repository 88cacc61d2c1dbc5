package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure AuditLog implements the interface.
var _ driven.AuditLog = (*AuditLog)(nil)

// AuditLog keeps appended audit entries per collection in memory.
type AuditLog struct {
	mu      sync.RWMutex
	entries map[string][]domain.AuditEntry
}

// NewAuditLog creates a new in-memory audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{
		entries: make(map[string][]domain.AuditEntry),
	}
}

// Append adds entries to the collection's log.
func (a *AuditLog) Append(_ context.Context, collection string, entries []domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[collection] = append(a.entries[collection], entries...)
	return nil
}

// Entries returns a copy of the collection's log.
func (a *AuditLog) Entries(collection string) []domain.AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.AuditEntry(nil), a.entries[collection]...)
}
