// Package mcp provides an MCP (Model Context Protocol) server adapter for
// DocuMind. It lets AI assistants search the knowledge base and ask grounded
// questions over it.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("mcp: qa service is required")
