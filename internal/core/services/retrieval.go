package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.RetrievalService = (*RetrievalEngine)(nil)

// CosineDistanceOffset converts a cosine distance d into a similarity 1 - d.
// Vector indexes in this module always report cosine distance.
const CosineDistanceOffset = 1.0

// SimilarityFromDistance converts an index distance into a similarity score.
func SimilarityFromDistance(distance float64) float64 {
	return CosineDistanceOffset - distance
}

// RetrievalEngine embeds a query, searches a collection, and keeps the
// results whose similarity clears a threshold.
type RetrievalEngine struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	retry    RetryPolicy
}

// NewRetrievalEngine creates a retrieval engine over one collection.
func NewRetrievalEngine(embedder driven.EmbeddingService, index driven.VectorIndex, retry RetryPolicy) *RetrievalEngine {
	return &RetrievalEngine{
		embedder: embedder,
		index:    index,
		retry:    retry,
	}
}

// Retrieve returns up to topK results with similarity >= threshold,
// ordered by descending similarity. Ties keep the index's order.
// An empty slice means nothing was relevant; it is not an error.
func (r *RetrievalEngine) Retrieve(
	ctx context.Context,
	query string,
	topK int,
	threshold float64,
) ([]domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d: %w", topK, domain.ErrInvalidInput)
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q (top_k=%d, threshold=%.2f)", query, topK, threshold)

	// 1. Embed the query
	var vector []float32
	err := r.retry.Do(ctx, "embed query", func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = r.embedder.Embed(ctx, query)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 2. The query must live in the collection's vector space
	dims, err := r.index.Dimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection dimensions: %w", err)
	}
	if dims > 0 && len(vector) != dims {
		return nil, fmt.Errorf("%w: %w", domain.ErrDimensionMismatch, domain.NewConfigurationError("embedding.model",
			fmt.Sprintf("query embedding has %d dimensions but collection %s holds %d",
				len(vector), r.index.Name(), dims)))
	}

	// 3. Nearest-neighbour search
	var matches []domain.VectorMatch
	err = r.retry.Do(ctx, "query index", func(ctx context.Context) error {
		var queryErr error
		matches, queryErr = r.index.Query(ctx, vector, topK)
		return queryErr
	})
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	// 4. Convert and filter
	results := make([]domain.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		similarity := SimilarityFromDistance(m.Distance)
		if similarity < threshold {
			logger.Debug("Dropping %s: similarity %.4f below threshold", m.ID, similarity)
			continue
		}
		results = append(results, domain.RetrievalResult{
			ID:         m.ID,
			Document:   m.Document,
			Distance:   m.Distance,
			Similarity: similarity,
			Metadata:   m.Metadata,
		})
	}

	// 5. Best first, stable on ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	logger.Debug("Retrieved %d of %d candidates", len(results), len(matches))
	return results, nil
}
