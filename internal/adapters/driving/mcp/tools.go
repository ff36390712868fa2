package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find relevant document chunks"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (omitted uses the server default)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single matched chunk.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	Filename   string  `json:"filename"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve as context (omitted uses the server default)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Mode    string         `json:"mode"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one cited source in an answer.
type SourceOutput struct {
	Filename   string  `json:"filename"`
	ChunkID    string  `json:"chunk_id"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search across all ingested documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the ingested documents as grounding",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	// A zero top_k defers to the retrieval service's configured default.
	results, err := s.ports.Retrieval.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:    results[i].ChunkID,
			Filename:   results[i].Filename,
			Similarity: results[i].Similarity,
			Text:       results[i].Text,
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
	result, err := s.ports.QA.Ask(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  result.Answer,
		Mode:    string(result.Mode),
		Sources: make([]SourceOutput, len(result.Sources)),
	}
	for i := range result.Sources {
		output.Sources[i] = SourceOutput{
			Filename:   result.Sources[i].Filename,
			ChunkID:    result.Sources[i].ChunkID,
			Similarity: result.Sources[i].Similarity,
			Excerpt:    result.Sources[i].Excerpt,
		}
	}

	return nil, output, nil
}
