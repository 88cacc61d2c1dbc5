package driving

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// RetrievalService answers similarity queries against a collection.
type RetrievalService interface {
	// Retrieve returns results with similarity >= threshold, best first.
	// An empty slice, not an error, means nothing was relevant.
	Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]domain.RetrievalResult, error)
}

// AnswerService produces grounded answers to questions.
type AnswerService interface {
	// Ask retrieves context for the question and generates an answer.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

// StatsService reports collection statistics.
type StatsService interface {
	// Stats returns statistics for every existing collection.
	Stats(ctx context.Context) ([]domain.CollectionStats, error)
}
