package driven

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// SyncRunStore persists the history of sync runs.
type SyncRunStore interface {
	// Record stores a finished run's report.
	Record(ctx context.Context, report *domain.SyncReport) error

	// Latest returns the most recent reports for a source, newest first.
	Latest(ctx context.Context, source string, limit int) ([]domain.SyncReport, error)
}
