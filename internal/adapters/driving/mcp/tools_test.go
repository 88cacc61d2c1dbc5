package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleQuery(t *testing.T) {
	t.Run("returns cleaned results", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.RetrievalResult{
				{
					ID:         "1700000000.000100",
					Document:   "|<message_start>| deploys are frozen |<message_end>| |<thread_start>| until friday |<thread_end>|",
					Similarity: 0.91,
					Metadata:   domain.Metadata{domain.MetadataURL: "https://example.slack.com/p1"},
				},
				{
					ID:         "acme/widgets#4",
					Document:   "|<message_start>| flaky test |<message_end>|",
					Similarity: 0.7,
				},
			},
		}
		server := newTestServer(t, &Ports{Retrieval: retrieval, TopK: 5, Threshold: 0.6})

		result, output, err := server.handleQuery(context.Background(), nil, QueryInput{Query: "deploys"})
		require.NoError(t, err)
		assert.Nil(t, result)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, "deploys are frozen\n  └─ until friday", output.Results[0].Message)
		assert.Equal(t, "https://example.slack.com/p1", output.Results[0].URL)
		assert.Equal(t, "flaky test", output.Results[1].Message)
		assert.Empty(t, output.Results[1].URL)

		assert.Equal(t, "deploys", retrieval.gotQuery)
		assert.Equal(t, 5, retrieval.gotTopK)
		assert.InDelta(t, 0.6, retrieval.gotThreshold, 1e-9)
	})

	t.Run("input overrides defaults", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{Retrieval: retrieval, TopK: 5, Threshold: 0.6})

		_, output, err := server.handleQuery(context.Background(), nil, QueryInput{
			Query:     "x",
			NResults:  2,
			Threshold: 0.8,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Results)
		assert.Equal(t, 2, retrieval.gotTopK)
		assert.InDelta(t, 0.8, retrieval.gotThreshold, 1e-9)
	})

	t.Run("propagates retrieval error", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: domain.ErrEmbeddingUnavailable}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, _, err := server.handleQuery(context.Background(), nil, QueryInput{Query: "x"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestServer_handleAsk(t *testing.T) {
	t.Run("returns answer and links", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Text:  "Deploys are frozen until Friday.",
			Links: []string{"https://example.slack.com/p1"},
		}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Answer: answer})

		_, output, err := server.handleAsk(context.Background(), nil, AskInput{Question: "are deploys frozen?"})
		require.NoError(t, err)
		assert.Equal(t, "Deploys are frozen until Friday.", output.Answer)
		assert.Equal(t, []string{"https://example.slack.com/p1"}, output.Links)
		assert.Equal(t, "are deploys frozen?", answer.gotQuestion)
	})

	t.Run("nil links become empty", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{Text: "I don't know."}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Answer: answer})

		_, output, err := server.handleAsk(context.Background(), nil, AskInput{Question: "q"})
		require.NoError(t, err)
		assert.NotNil(t, output.Links)
		assert.Empty(t, output.Links)
	})

	t.Run("no answer service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}})

		_, _, err := server.handleAsk(context.Background(), nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, ErrAnswerUnavailable)
	})

	t.Run("propagates answer error", func(t *testing.T) {
		answer := &mockAnswerService{err: domain.ErrCompletionUnavailable}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Answer: answer})

		_, _, err := server.handleAsk(context.Background(), nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrCompletionUnavailable)
	})
}

func TestServer_handleStats(t *testing.T) {
	t.Run("returns collections", func(t *testing.T) {
		stats := &mockStatsService{stats: []domain.CollectionStats{
			{Name: "slack", Records: 12, Dimensions: 1536},
		}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Stats: stats})

		_, output, err := server.handleStats(context.Background(), nil, StatsInput{})
		require.NoError(t, err)
		require.Len(t, output.Collections, 1)
		assert.Equal(t, 12, output.Collections[0].Records)
	})

	t.Run("no collections", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Stats: &mockStatsService{}})

		_, output, err := server.handleStats(context.Background(), nil, StatsInput{})
		require.NoError(t, err)
		assert.NotNil(t, output.Collections)
		assert.Empty(t, output.Collections)
	})

	t.Run("no stats service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}})

		_, _, err := server.handleStats(context.Background(), nil, StatsInput{})
		assert.ErrorIs(t, err, ErrStatsUnavailable)
	})

	t.Run("propagates error", func(t *testing.T) {
		boom := errors.New("boom")
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Stats: &mockStatsService{err: boom}})

		_, _, err := server.handleStats(context.Background(), nil, StatsInput{})
		assert.ErrorIs(t, err, boom)
	})
}
