// Package mcp provides an MCP (Model Context Protocol) server adapter for threadrag.
// It lets AI assistants query the indexed conversations, ask grounded
// questions and read collection statistics.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrAnswerUnavailable is returned by the ask tool when no answer service is configured.
	ErrAnswerUnavailable = errors.New("mcp: answer generation is not configured")

	// ErrStatsUnavailable is returned by the stats tool when no stats service is configured.
	ErrStatsUnavailable = errors.New("mcp: stats are not configured")
)
