// Package app wires configuration into a running set of services. Gateways
// are initialised lazily on first use so that commands which never touch the
// pipeline (version, config inspection) start instantly and never dial out.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	embollama "github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/embedding/openai"
	llmanthropic "github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/llm/openai"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/vector/endee"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/vector/memory"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driven/vector/sqlite"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/chunker"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/config"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driving"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/services"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// Handles bundles the initialised gateways and services.
type Handles struct {
	Embedder  driven.EmbeddingService
	Index     driven.VectorIndex
	LLM       driven.LLMService // nil means extractive mode
	Retrieval driving.RetrievalService
	QA        driving.QAService
}

// App owns lazy, single-flight initialisation of the pipeline. A failed
// initialisation leaves no handles behind, so the next call retries from
// scratch. Concurrent first callers serialise on the mutex and share the
// one successful result.
type App struct {
	cfg *config.Config

	mu      sync.Mutex
	handles *Handles
}

// New creates an App around the given configuration. No gateway is dialled
// until Handles is first called.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Handles returns the initialised services, performing initialisation on
// first call.
func (a *App) Handles(ctx context.Context) (*Handles, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handles != nil {
		return a.handles, nil
	}

	h, err := a.initialise(ctx)
	if err != nil {
		return nil, err
	}
	a.handles = h
	return h, nil
}

// Retrieval returns the retrieval service, initialising on first use.
func (a *App) Retrieval(ctx context.Context) (driving.RetrievalService, error) {
	h, err := a.Handles(ctx)
	if err != nil {
		return nil, err
	}
	return h.Retrieval, nil
}

// QA returns the question answering service, initialising on first use.
func (a *App) QA(ctx context.Context) (driving.QAService, error) {
	h, err := a.Handles(ctx)
	if err != nil {
		return nil, err
	}
	return h.QA, nil
}

// Close releases gateway resources. Safe to call before initialisation.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handles == nil {
		return nil
	}

	var firstErr error
	if err := a.handles.Embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.handles.Index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.handles.LLM != nil {
		if err := a.handles.LLM.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.handles = nil
	return firstErr
}

// initialise builds the gateways and services in dependency order. Called
// with the mutex held.
func (a *App) initialise(ctx context.Context) (*Handles, error) {
	logger.Section("Initialise")

	ch, err := chunker.New(
		chunker.WithChunkSize(a.cfg.Chunker.ChunkSize),
		chunker.WithOverlap(a.cfg.Chunker.Overlap),
	)
	if err != nil {
		return nil, fmt.Errorf("configure chunker: %w", err)
	}

	embedder, err := a.buildEmbedder()
	if err != nil {
		return nil, err
	}
	logger.Info("Embedding: %s (%d dimensions)", embedder.ModelName(), embedder.Dimensions())

	index, err := a.buildIndex()
	if err != nil {
		embedder.Close()
		return nil, err
	}

	outcome, err := index.EnsureIndex(ctx, a.cfg.Index.Name, embedder.Dimensions(), a.cfg.Index.Metric)
	if err != nil {
		embedder.Close()
		index.Close()
		return nil, fmt.Errorf("ensure index %q: %w", a.cfg.Index.Name, err)
	}
	switch outcome {
	case driven.IndexCreated:
		logger.Info("Created index %q (dimension=%d metric=%s)",
			a.cfg.Index.Name, embedder.Dimensions(), a.cfg.Index.Metric)
	case driven.IndexAlreadyExists:
		logger.Debug("Index %q already exists", a.cfg.Index.Name)
	}

	llm, err := a.buildLLM()
	if err != nil {
		embedder.Close()
		index.Close()
		return nil, err
	}

	retrieval := services.NewRetrievalEngine(ch, embedder, index,
		services.WithDefaultTopK(a.cfg.Search.TopK))
	qa := services.NewQAPipeline(retrieval, llm,
		services.WithMaxTokens(a.cfg.LLM.MaxTokens),
		services.WithTemperature(a.cfg.LLM.Temperature))

	return &Handles{
		Embedder:  embedder,
		Index:     index,
		LLM:       llm,
		Retrieval: retrieval,
		QA:        qa,
	}, nil
}

func (a *App) buildEmbedder() (driven.EmbeddingService, error) {
	cfg := a.cfg.Embedding
	switch cfg.Provider {
	case "openai":
		apiKey := cfg.APIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("%w: embedding provider %q requires %s to be set",
				domain.ErrInvalidInput, cfg.Provider, cfg.APIKeyEnv)
		}
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:            apiKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           time.Duration(cfg.TimeoutSecs) * time.Second,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	case "ollama":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, cfg.Provider)
	}
}

func (a *App) buildIndex() (driven.VectorIndex, error) {
	cfg := a.cfg.Index
	switch cfg.Provider {
	case "endee":
		return endee.NewVectorIndex(endee.Config{
			BaseURL:   cfg.Endee.BaseURL,
			AuthToken: cfg.Endee.AuthToken(),
			Timeout:   time.Duration(cfg.Endee.TimeoutSecs) * time.Second,
		}), nil
	case "sqlite":
		return sqlite.NewVectorIndex(cfg.SQLite.Path)
	case "memory":
		return memory.NewVectorIndex(), nil
	default:
		return nil, fmt.Errorf("%w: unknown index provider %q", domain.ErrInvalidInput, cfg.Provider)
	}
}

// buildLLM returns nil (extractive mode) when no usable generation gateway
// is configured. That decision is made once here, never per request.
func (a *App) buildLLM() (driven.LLMService, error) {
	cfg := a.cfg.LLM
	switch cfg.Provider {
	case "", "none":
		logger.Warn("No LLM configured; answers will be extractive")
		return nil, nil
	case "openai":
		apiKey := cfg.APIKey()
		if apiKey == "" {
			logger.Warn("%s not set; answers will be extractive", cfg.APIKeyEnv)
			return nil, nil
		}
		return llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		})
	case "anthropic":
		apiKey := cfg.APIKey()
		if apiKey == "" {
			logger.Warn("%s not set; answers will be extractive", cfg.APIKeyEnv)
			return nil, nil
		}
		return llmanthropic.NewLLMService(llmanthropic.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		})
	case "ollama":
		return llmollama.NewLLMService(llmollama.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, cfg.Provider)
	}
}
