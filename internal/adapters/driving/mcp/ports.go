package mcp

import (
	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers similarity queries. Required.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Optional.
	Answer driving.AnswerService

	// Stats reports collection statistics. Optional.
	Stats driving.StatsService

	// Sources lists configured sources. Optional.
	Sources driving.SourceService

	// TopK and Threshold are the query defaults when a call omits them.
	TopK      int
	Threshold float64
}

// Validate ensures all required ports are set and fills the default result count.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.TopK <= 0 {
		p.TopK = domain.DefaultTopK
	}
	return nil
}
