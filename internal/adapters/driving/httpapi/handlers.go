package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// maxUploadBytes caps uploaded file size at 10 MiB.
const maxUploadBytes = 10 << 20

// defaultInlineFilename labels text ingested without a filename.
const defaultInlineFilename = "inline_document"

// ingestTextRequest is the POST /ingest/text request body.
type ingestTextRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// askRequest is the POST /ask request body.
type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// searchRequest is the POST /search request body.
type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// ingestResponse is the body returned by both ingestion endpoints.
type ingestResponse struct {
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	NumChunks int    `json:"num_chunks"`
	DocID     string `json:"doc_id"`
}

// sourceDTO is one cited source in an answer.
type sourceDTO struct {
	Filename   string  `json:"filename"`
	ChunkID    string  `json:"chunk_id"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

// askResponse is the POST /ask response body.
type askResponse struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []sourceDTO `json:"sources"`
	Mode     string      `json:"mode"`
}

// searchResultDTO is one hit in a search response.
type searchResultDTO struct {
	ChunkID    string  `json:"chunk_id"`
	Filename   string  `json:"filename"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

// searchResponse is the POST /search response body.
type searchResponse struct {
	Query   string            `json:"query"`
	Results []searchResultDTO `json:"results"`
}

// errorResponse is the body returned on request failures.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "DocuMind API is running",
		"health":  "/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "DocuMind",
		"version": Version,
	})
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var req ingestTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if req.Filename == "" {
		req.Filename = defaultInlineFilename
	}

	retrieval, err := s.services.Retrieval(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := retrieval.Ingest(r.Context(), req.Text, req.Filename)
	if err != nil {
		logger.Warn("Text ingestion failed: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Status:    "ingested",
		Filename:  result.Filename,
		NumChunks: result.NumChunks,
		DocID:     result.DocID,
	})
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".txt") {
		writeError(w, http.StatusBadRequest, "Only .txt files are supported.")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	retrieval, err := s.services.Retrieval(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := retrieval.Ingest(r.Context(), string(content), header.Filename)
	if err != nil {
		logger.Warn("File ingestion failed: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Status:    "ingested",
		Filename:  result.Filename,
		NumChunks: result.NumChunks,
		DocID:     result.DocID,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	qa, err := s.services.QA(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := qa.Ask(r.Context(), req.Question, req.TopK)
	if err != nil {
		logger.Warn("QA request failed: %v", err)
		writeServiceError(w, err)
		return
	}

	sources := make([]sourceDTO, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = sourceDTO{
			Filename:   src.Filename,
			ChunkID:    src.ChunkID,
			Similarity: src.Similarity,
			Excerpt:    src.Excerpt,
		}
	}

	writeJSON(w, http.StatusOK, askResponse{
		Question: result.Question,
		Answer:   result.Answer,
		Sources:  sources,
		Mode:     string(result.Mode),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	retrieval, err := s.services.Retrieval(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	results, err := retrieval.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		logger.Warn("Search request failed: %v", err)
		writeServiceError(w, err)
		return
	}

	dtos := make([]searchResultDTO, len(results))
	for i, res := range results {
		dtos[i] = searchResultDTO{
			ChunkID:    res.ChunkID,
			Filename:   res.Filename,
			Similarity: roundTo4(res.Similarity),
			Text:       res.Text,
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: dtos,
	})
}

// writeServiceError maps domain errors onto HTTP statuses. Invalid input is
// the caller's fault; everything else is a dependency or server failure.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingFailure),
		errors.Is(err, domain.ErrIndexUnavailable),
		errors.Is(err, domain.ErrGenerationFailure),
		errors.Is(err, domain.ErrLLMUnavailable):
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
