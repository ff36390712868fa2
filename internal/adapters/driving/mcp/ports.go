package mcp

import (
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides ingestion and semantic search.
	Retrieval driving.RetrievalService

	// QA answers questions over the knowledge base.
	QA driving.QAService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}
