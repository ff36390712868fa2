package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driving"
)

// stubRetrieval implements driving.RetrievalService for handler tests.
type stubRetrieval struct {
	ingestResult domain.IngestResult
	ingestErr    error
	searchResult []domain.SearchResult
	searchErr    error

	gotText     string
	gotFilename string
	gotQuery    string
	gotTopK     int
}

func (s *stubRetrieval) Ingest(_ context.Context, text, filename string) (domain.IngestResult, error) {
	s.gotText = text
	s.gotFilename = filename
	if s.ingestErr != nil {
		return domain.IngestResult{}, s.ingestErr
	}
	return s.ingestResult, nil
}

func (s *stubRetrieval) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	s.gotQuery = query
	s.gotTopK = topK
	return s.searchResult, s.searchErr
}

func (s *stubRetrieval) BuildContext(_ context.Context, _ string, _ int) (string, []domain.SearchResult, error) {
	return "", nil, nil
}

// stubQA implements driving.QAService for handler tests.
type stubQA struct {
	result domain.QAResult
	err    error
}

func (s *stubQA) Ask(_ context.Context, _ string, _ int) (domain.QAResult, error) {
	return s.result, s.err
}

// stubServices satisfies the Services interface with fixed instances.
type stubServices struct {
	retrieval  *stubRetrieval
	qa         *stubQA
	resolveErr error
}

func (s *stubServices) Retrieval(_ context.Context) (driving.RetrievalService, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.retrieval, nil
}

func (s *stubServices) QA(_ context.Context) (driving.QAService, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.qa, nil
}

func newTestServer(services *stubServices) *httptest.Server {
	return httptest.NewServer(NewServer(services).Handler())
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubServices{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "DocuMind", body["service"])
}

func TestRoot(t *testing.T) {
	srv := newTestServer(&stubServices{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The /{$} pattern must not swallow unknown paths.
	notFound, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer notFound.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
}

func TestIngestText(t *testing.T) {
	retrieval := &stubRetrieval{
		ingestResult: domain.IngestResult{Filename: "notes.txt", NumChunks: 3, DocID: "ab12cd34"},
	}
	srv := newTestServer(&stubServices{retrieval: retrieval})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/ingest/text", map[string]any{
		"text":     "some document text",
		"filename": "notes.txt",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[ingestResponse](t, resp)
	assert.Equal(t, "ingested", body.Status)
	assert.Equal(t, "notes.txt", body.Filename)
	assert.Equal(t, 3, body.NumChunks)
	assert.Equal(t, "ab12cd34", body.DocID)
	assert.Equal(t, "some document text", retrieval.gotText)
}

func TestIngestText_DefaultFilename(t *testing.T) {
	retrieval := &stubRetrieval{}
	srv := newTestServer(&stubServices{retrieval: retrieval})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/ingest/text", map[string]any{"text": "no filename given"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "inline_document", retrieval.gotFilename)
}

func TestIngestText_Validation(t *testing.T) {
	srv := newTestServer(&stubServices{retrieval: &stubRetrieval{}})
	defer srv.Close()

	t.Run("empty text", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/ingest/text", map[string]any{"text": "   "})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/ingest/text", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestIngestFile(t *testing.T) {
	retrieval := &stubRetrieval{
		ingestResult: domain.IngestResult{Filename: "upload.txt", NumChunks: 1, DocID: "deadbeef"},
	}
	srv := newTestServer(&stubServices{retrieval: retrieval})
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("uploaded content"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/ingest/file", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[ingestResponse](t, resp)
	assert.Equal(t, "ingested", body.Status)
	assert.Equal(t, "upload.txt", body.Filename)
	assert.Equal(t, "uploaded content", retrieval.gotText)
}

func TestIngestFile_RejectsNonTxt(t *testing.T) {
	srv := newTestServer(&stubServices{retrieval: &stubRetrieval{}})
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/ingest/file", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[errorResponse](t, resp)
	assert.Contains(t, body.Detail, ".txt")
}

func TestAsk(t *testing.T) {
	qa := &stubQA{
		result: domain.QAResult{
			Question: "what is go?",
			Answer:   "A programming language.",
			Mode:     domain.ModeGenerative,
			Sources: []domain.Source{
				{Filename: "go.txt", ChunkID: "go.txt_0", Similarity: 0.9123, Excerpt: "Go is..."},
			},
		},
	}
	srv := newTestServer(&stubServices{qa: qa})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/ask", map[string]any{"question": "what is go?", "top_k": 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[askResponse](t, resp)
	assert.Equal(t, "what is go?", body.Question)
	assert.Equal(t, "A programming language.", body.Answer)
	assert.Equal(t, "generative", body.Mode)
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "go.txt_0", body.Sources[0].ChunkID)
	assert.InDelta(t, 0.9123, body.Sources[0].Similarity, 1e-9)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	srv := newTestServer(&stubServices{qa: &stubQA{}})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/ask", map[string]any{"question": ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	retrieval := &stubRetrieval{
		searchResult: []domain.SearchResult{
			{ChunkID: "a.txt_0", Filename: "a.txt", Text: "alpha", Similarity: 0.98765432},
		},
	}
	srv := newTestServer(&stubServices{retrieval: retrieval})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/search", map[string]any{"query": "alpha", "top_k": 2})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[searchResponse](t, resp)
	assert.Equal(t, "alpha", body.Query)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "a.txt_0", body.Results[0].ChunkID)
	assert.InDelta(t, 0.9877, body.Results[0].Similarity, 1e-9, "similarity rounded to 4 decimals")
	assert.Equal(t, 2, retrieval.gotTopK)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest},
		{"embedding failure", fmt.Errorf("%w: refused", domain.ErrEmbeddingFailure), http.StatusBadGateway},
		{"index unavailable", fmt.Errorf("%w: down", domain.ErrIndexUnavailable), http.StatusBadGateway},
		{"generation failure", fmt.Errorf("%w: overloaded", domain.ErrGenerationFailure), http.StatusBadGateway},
		{"llm unavailable", fmt.Errorf("%w: down", domain.ErrLLMUnavailable), http.StatusBadGateway},
		{"other failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubServices{
				retrieval: &stubRetrieval{searchErr: tt.err},
			})
			defer srv.Close()

			resp := postJSON(t, srv.URL+"/search", map[string]any{"query": "q"})
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestServiceResolutionFailure(t *testing.T) {
	srv := newTestServer(&stubServices{
		resolveErr: fmt.Errorf("%w: unknown embedding provider", domain.ErrInvalidInput),
	})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/ask", map[string]any{"question": "q"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
