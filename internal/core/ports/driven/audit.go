package driven

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// AuditLog is an append-only, human-readable record of indexed documents,
// one log per collection. Entries are never rewritten or compacted.
type AuditLog interface {
	// Append writes entries to the collection's log.
	Append(ctx context.Context, collection string, entries []domain.AuditEntry) error
}
