package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// SystemPrompt instructs the completion model to stay within the context.
const SystemPrompt = "You are a helpful assistant that answers questions about a team's conversations. " +
	"Answer using only the numbered documents in the provided context. " +
	"Each document is a message followed by its thread replies. " +
	"If the context does not contain the answer, say that you don't know."

// NoInformationAnswer is returned when no indexed message is relevant.
const NoInformationAnswer = "I couldn't find any relevant information in the indexed conversations " +
	"to answer that question."

// AnswerService retrieves grounding context and generates an answer.
type AnswerService struct {
	retrieval  driving.RetrievalService
	completion driven.CompletionService
	topK       int
	threshold  float64
}

// NewAnswerService creates an answer service.
// The completion service is optional - if nil, Ask fails for relevant questions.
func NewAnswerService(
	retrieval driving.RetrievalService,
	completion driven.CompletionService,
	topK int,
	threshold float64,
) *AnswerService {
	return &AnswerService{
		retrieval:  retrieval,
		completion: completion,
		topK:       topK,
		threshold:  threshold,
	}
}

// Ask answers a question from the indexed conversations.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = NormaliseQuestion(question)

	results, err := s.retrieval.Retrieve(ctx, question, s.topK, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	bundle := AssembleContext(results)
	if bundle.Empty {
		logger.Debug("No results above threshold %.2f", s.threshold)
		return &domain.Answer{
			Text:    NoInformationAnswer,
			Links:   bundle.Links,
			Results: results,
		}, nil
	}

	if s.completion == nil {
		return nil, fmt.Errorf("%w: not configured", domain.ErrCompletionUnavailable)
	}

	text, err := s.completion.Complete(ctx, SystemPrompt, BuildUserPrompt(question, bundle))
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	return &domain.Answer{
		Text:    text,
		Links:   bundle.Links,
		Results: results,
	}, nil
}

// BuildUserPrompt renders the deterministic user prompt for a question.
func BuildUserPrompt(question string, bundle domain.Context) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer the question based only on the context above.",
		bundle.Text, question)
}
