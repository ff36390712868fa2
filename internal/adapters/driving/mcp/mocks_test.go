package mcp

import (
	"context"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
)

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	results []domain.SearchResult
	err     error
	gotTopK int
}

func (m *mockRetrievalService) Ingest(_ context.Context, _, filename string) (domain.IngestResult, error) {
	return domain.IngestResult{Filename: filename}, m.err
}

func (m *mockRetrievalService) Search(_ context.Context, _ string, topK int) ([]domain.SearchResult, error) {
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRetrievalService) BuildContext(_ context.Context, _ string, topK int) (string, []domain.SearchResult, error) {
	m.gotTopK = topK
	return "", m.results, m.err
}

// mockQAService implements driving.QAService for testing.
type mockQAService struct {
	result  domain.QAResult
	err     error
	gotTopK int
}

func (m *mockQAService) Ask(_ context.Context, _ string, topK int) (domain.QAResult, error) {
	m.gotTopK = topK
	if m.err != nil {
		return domain.QAResult{}, m.err
	}
	return m.result, nil
}
