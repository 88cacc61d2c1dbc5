package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/services"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query     string  `json:"query" jsonschema:"the question or phrase to search the indexed conversations for"`
	NResults  int     `json:"n_results,omitempty" jsonschema:"maximum number of nearest messages to consider (default 10)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity between 0 and 1 (default 0.6)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results []ResultOutput `json:"results"`
	Count   int            `json:"count"`
}

// ResultOutput represents a single retrieval result.
type ResultOutput struct {
	ID         string  `json:"id"`
	Message    string  `json:"message"`
	Similarity float64 `json:"similarity"`
	URL        string  `json:"url,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed conversations"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string   `json:"answer"`
	Links  []string `json:"links"`
}

// StatsInput is the empty input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	Collections []domain.CollectionStats `json:"collections"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find indexed messages semantically similar to a query, best match first",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the indexed conversations, with source links",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report record counts and vector dimensions per collection",
	}, s.handleStats)
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	topK := input.NResults
	if topK <= 0 {
		topK = s.ports.TopK
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = s.ports.Threshold
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, topK, threshold)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results: make([]ResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = ResultOutput{
			ID:         results[i].ID,
			Message:    services.CleanDocument(results[i].Document),
			Similarity: results[i].Similarity,
			URL:        results[i].URL(),
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, ErrAnswerUnavailable
	}

	answer, err := s.ports.Answer.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	links := answer.Links
	if links == nil {
		links = []string{}
	}
	return nil, AskOutput{Answer: answer.Text, Links: links}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.Stats == nil {
		return nil, StatsOutput{}, ErrStatsUnavailable
	}

	stats, err := s.ports.Stats.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	if stats == nil {
		stats = []domain.CollectionStats{}
	}
	return nil, StatsOutput{Collections: stats}, nil
}
