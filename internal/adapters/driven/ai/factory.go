// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/threadrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/threadrag/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/threadrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/threadrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// PingTimeout is the maximum time to wait for service connectivity validation.
const PingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, domain.NewConfigurationError("embedding.provider",
			fmt.Sprintf("unsupported embedding provider %q", settings.Provider))
	}
}

// CreateCompletionService creates the completion service selected by settings.
func CreateCompletionService(settings domain.CompletionSettings) (driven.CompletionService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewCompletionService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewCompletionService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, domain.NewConfigurationError("completion.provider",
			fmt.Sprintf("unsupported completion provider %q", settings.Provider))
	}
}

// PingEmbedding checks that the embedding service is reachable within PingTimeout.
func PingEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", svc.ModelName(), err)
	}
	return nil
}
