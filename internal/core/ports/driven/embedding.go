package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The same service (model and dimensionality) must be used for ingestion and
// retrieval. Failures wrap domain.ErrEmbeddingUnavailable; retryable failures
// additionally wrap domain.ErrTransient.
//
// Implementations may include:
//   - OpenAI (text-embedding-ada-002, text-embedding-3-small)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
