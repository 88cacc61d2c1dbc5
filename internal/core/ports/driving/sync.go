package driving

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// SyncEngine synchronises configured sources into their collections.
type SyncEngine interface {
	// Sync runs one synchronisation of a source and reports the outcome.
	Sync(ctx context.Context, source domain.Source) (*domain.SyncReport, error)

	// SyncAll synchronises every configured source.
	SyncAll(ctx context.Context) ([]*domain.SyncReport, error)

	// Status returns progress for a source by name.
	Status(ctx context.Context, sourceName string) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Source identifies the source.
	Source string

	// Running indicates if sync is currently in progress.
	Running bool

	// MessagesProcessed is the count of messages that reached an outcome.
	MessagesProcessed int

	// ErrorCount is the number of failed messages.
	ErrorCount int
}
