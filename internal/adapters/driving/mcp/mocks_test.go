package mcp

import (
	"context"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error

	gotQuery     string
	gotTopK      int
	gotThreshold float64
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	query string,
	topK int,
	threshold float64,
) ([]domain.RetrievalResult, error) {
	m.gotQuery = query
	m.gotTopK = topK
	m.gotThreshold = threshold
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer      *domain.Answer
	err         error
	gotQuestion string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.gotQuestion = question
	return m.answer, m.err
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats []domain.CollectionStats
	err   error
}

func (m *mockStatsService) Stats(_ context.Context) ([]domain.CollectionStats, error) {
	return m.stats, m.err
}

// mockSourceService is a mock implementation of driving.SourceService.
type mockSourceService struct {
	sources  []domain.Source
	channels []string
	err      error
	gotName  string
}

func (m *mockSourceService) Sources() []domain.Source {
	return m.sources
}

func (m *mockSourceService) Channels(_ context.Context, name string) ([]string, error) {
	m.gotName = name
	return m.channels, m.err
}
