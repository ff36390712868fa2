// Package endee provides a vector index adapter for the Endee vector
// database REST API.
package endee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://127.0.0.1:8080"
	DefaultTimeout = 15 * time.Second

	// apiPrefix is the versioned path all endpoints live under.
	apiPrefix = "/api/v1"

	// precision is the storage precision requested at index creation.
	precision = "float32"
)

// Config holds configuration for the Endee vector index.
type Config struct {
	// BaseURL is the Endee server base URL (default: http://127.0.0.1:8080).
	BaseURL string

	// AuthToken is the bearer token, empty for unauthenticated servers.
	AuthToken string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// VectorIndex stores and queries vectors in an Endee server. The index name
// is fixed by EnsureIndex and reused for all subsequent operations.
type VectorIndex struct {
	client    *http.Client
	baseURL   string
	authToken string
	name      string
}

// createIndexRequest is the index creation request format.
type createIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	SpaceType string `json:"space_type"`
	Precision string `json:"precision"`
}

// upsertRequest is the vector upsert request format.
type upsertRequest struct {
	Vectors []vectorRecord `json:"vectors"`
}

// vectorRecord is the wire format for a single stored vector.
type vectorRecord struct {
	ID     string            `json:"id"`
	Vector []float32         `json:"vector"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// searchRequest is the nearest-neighbour query request format.
type searchRequest struct {
	Vector []float32 `json:"vector"`
	TopK   int       `json:"top_k"`
}

// searchResponse is the nearest-neighbour query response format. Fields are
// optional on the wire; absent ones decode to zero values.
type searchResponse struct {
	Results []struct {
		ID         string            `json:"id"`
		Similarity float64           `json:"similarity"`
		Meta       map[string]string `json:"meta"`
	} `json:"results"`
}

// errorResponse is the error body Endee returns on non-2xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// NewVectorIndex creates a new Endee vector index client.
func NewVectorIndex(cfg Config) *VectorIndex {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorIndex{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		authToken: cfg.AuthToken,
	}
}

// EnsureIndex creates the named index if it does not exist. A 409 conflict
// from a concurrent create resolves to IndexAlreadyExists rather than an
// error.
func (v *VectorIndex) EnsureIndex(ctx context.Context, name string, dimension int, metric string) (driven.EnsureOutcome, error) {
	v.name = name

	resp, err := v.do(ctx, http.MethodGet, apiPrefix+"/index/"+name, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: get index %q: %w", domain.ErrIndexUnavailable, name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return driven.IndexAlreadyExists, nil
	case http.StatusNotFound:
		// Fall through to create.
	default:
		return 0, fmt.Errorf("%w: get index %q: %s", domain.ErrIndexUnavailable, name, readError(resp))
	}

	createResp, err := v.do(ctx, http.MethodPost, apiPrefix+"/index", createIndexRequest{
		Name:      name,
		Dimension: dimension,
		SpaceType: metric,
		Precision: precision,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: create index %q: %w", domain.ErrIndexUnavailable, name, err)
	}
	defer createResp.Body.Close()

	switch createResp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return driven.IndexCreated, nil
	case http.StatusConflict:
		// Lost the create race; the index exists now.
		return driven.IndexAlreadyExists, nil
	default:
		return 0, fmt.Errorf("%w: create index %q: %s", domain.ErrIndexUnavailable, name, readError(createResp))
	}
}

// Upsert inserts or replaces the items as a single batch.
func (v *VectorIndex) Upsert(ctx context.Context, items []driven.IndexedItem) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]vectorRecord, len(items))
	for i, item := range items {
		records[i] = vectorRecord{
			ID:     item.ID,
			Vector: item.Vector,
			Meta: map[string]string{
				"filename": item.Metadata.Filename,
				"text":     item.Metadata.Text,
			},
		}
	}

	resp, err := v.do(ctx, http.MethodPost, apiPrefix+"/index/"+v.name+"/vectors", upsertRequest{Vectors: records})
	if err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: upsert: %s", domain.ErrIndexUnavailable, readError(resp))
	}
	return nil
}

// Query returns the topK nearest neighbours. The response is decoded
// permissively: missing meta or similarity fields yield zero values, never
// an error.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]driven.QueryMatch, error) {
	resp, err := v.do(ctx, http.MethodPost, apiPrefix+"/index/"+v.name+"/search", searchRequest{
		Vector: vector,
		TopK:   topK,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search: %s", domain.ErrIndexUnavailable, readError(resp))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", domain.ErrIndexUnavailable, err)
	}

	matches := make([]driven.QueryMatch, len(searchResp.Results))
	for i, r := range searchResp.Results {
		meta := r.Meta
		if meta == nil {
			meta = map[string]string{}
		}
		matches[i] = driven.QueryMatch{
			ID:         r.ID,
			Similarity: r.Similarity,
			Metadata:   meta,
		}
	}
	return matches, nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// do builds and sends a JSON request with auth headers applied.
func (v *VectorIndex) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+v.authToken)
	}

	return v.client.Do(req)
}

// readError extracts a usable message from a non-2xx response.
func readError(resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))
}
