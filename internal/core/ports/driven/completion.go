package driven

import "context"

// CompletionService turns a grounded prompt into answer prose.
// This is an optional service - when nil, only retrieval is available.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
type CompletionService interface {
	// Complete produces a reply for a system prompt and a user prompt.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
