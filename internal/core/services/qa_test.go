package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/chunker"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// mockRetrieval implements driving.RetrievalService for testing.
type mockRetrieval struct {
	contextText string
	results     []domain.SearchResult
	err         error
	lastTopK    int
}

func (m *mockRetrieval) Ingest(_ context.Context, _, filename string) (domain.IngestResult, error) {
	return domain.IngestResult{Filename: filename}, m.err
}

func (m *mockRetrieval) Search(_ context.Context, _ string, topK int) ([]domain.SearchResult, error) {
	m.lastTopK = topK
	return m.results, m.err
}

func (m *mockRetrieval) BuildContext(_ context.Context, _ string, topK int) (string, []domain.SearchResult, error) {
	m.lastTopK = topK
	if m.err != nil {
		return "", nil, m.err
	}
	return m.contextText, m.results, nil
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response  string
	err       error
	gotSystem string
	gotUser   string
	gotOpts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, systemPrompt, userPrompt string, opts driven.GenerateOptions) (string, error) {
	m.gotSystem = systemPrompt
	m.gotUser = userPrompt
	m.gotOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func someResults() []domain.SearchResult {
	return []domain.SearchResult{
		{ChunkID: "guide.txt_0", Filename: "guide.txt", Text: "top chunk text", Similarity: 0.91234567},
		{ChunkID: "guide.txt_1", Filename: "guide.txt", Text: "second chunk text", Similarity: 0.55555555},
	}
}

func TestQAPipeline_Ask_NoResults(t *testing.T) {
	pipeline := NewQAPipeline(&mockRetrieval{}, nil)

	result, err := pipeline.Ask(context.Background(), "anything?", 5)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeNoResults, result.Mode)
	assert.Equal(t, "anything?", result.Question)
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Sources)
}

func TestQAPipeline_Ask_Extractive(t *testing.T) {
	retrieval := &mockRetrieval{
		contextText: "ctx",
		results:     someResults(),
	}
	pipeline := NewQAPipeline(retrieval, nil)

	result, err := pipeline.Ask(context.Background(), "what is in the guide?", 5)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, result.Mode)
	assert.Contains(t, result.Answer, "guide.txt")
	assert.Contains(t, result.Answer, "top chunk text", "top result passed through verbatim")
	assert.True(t, strings.HasPrefix(result.Answer, "[Extractive answer from 'guide.txt' — similarity 0.912]"))
}

func TestQAPipeline_Ask_Generative(t *testing.T) {
	retrieval := &mockRetrieval{
		contextText: "[Source 1 — guide.txt (similarity: 0.912)]\ntop chunk text",
		results:     someResults(),
	}
	llm := &mockLLM{response: "  The guide covers testing.\n"}
	pipeline := NewQAPipeline(retrieval, llm)

	result, err := pipeline.Ask(context.Background(), "what does the guide cover?", 5)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeGenerative, result.Mode)
	assert.Equal(t, "The guide covers testing.", result.Answer, "answer trimmed of surrounding whitespace")

	assert.Equal(t, SystemPrompt, llm.gotSystem)
	assert.Contains(t, llm.gotUser, retrieval.contextText)
	assert.Contains(t, llm.gotUser, "Question: what does the guide cover?")
	assert.Equal(t, DefaultMaxTokens, llm.gotOpts.MaxTokens)
	assert.InDelta(t, DefaultTemperature, llm.gotOpts.Temperature, 1e-9)
}

func TestQAPipeline_WarnsOnceAtConstructionWithoutLLM(t *testing.T) {
	var buf bytes.Buffer
	logger.SetVerbose(true)
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	NewQAPipeline(&mockRetrieval{}, nil)
	assert.Contains(t, buf.String(), "No LLM configured; answering in extractive mode")
}

func TestQAPipeline_Ask_GenerationOptions(t *testing.T) {
	retrieval := &mockRetrieval{contextText: "ctx", results: someResults()}
	llm := &mockLLM{response: "ok"}
	pipeline := NewQAPipeline(retrieval, llm, WithMaxTokens(64), WithTemperature(0.7))

	_, err := pipeline.Ask(context.Background(), "q", 5)
	require.NoError(t, err)

	assert.Equal(t, 64, llm.gotOpts.MaxTokens)
	assert.InDelta(t, 0.7, llm.gotOpts.Temperature, 1e-9)
}

func TestQAPipeline_Ask_GenerationFailureSurfaces(t *testing.T) {
	genErr := errors.New("model overloaded")
	retrieval := &mockRetrieval{contextText: "ctx", results: someResults()}
	pipeline := NewQAPipeline(retrieval, &mockLLM{err: genErr})

	// Generative mode never silently falls back to extractive mid-call.
	_, err := pipeline.Ask(context.Background(), "q", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, genErr)
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
}

func TestQAPipeline_Ask_RetrievalError(t *testing.T) {
	retrievalErr := errors.New("index unreachable")
	pipeline := NewQAPipeline(&mockRetrieval{err: retrievalErr}, nil)

	_, err := pipeline.Ask(context.Background(), "q", 5)
	assert.ErrorIs(t, err, retrievalErr)
}

func TestQAPipeline_Ask_Sources(t *testing.T) {
	longText := strings.Repeat("abcde ", 50) // 300 chars
	retrieval := &mockRetrieval{
		contextText: "ctx",
		results: []domain.SearchResult{
			{ChunkID: "long.txt_0", Filename: "long.txt", Text: longText, Similarity: 0.98765432},
			{ChunkID: "short.txt_0", Filename: "short.txt", Text: "short text", Similarity: 0.4},
		},
	}
	pipeline := NewQAPipeline(retrieval, nil)

	result, err := pipeline.Ask(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, result.Sources, 2, "every retrieved result is cited")

	first := result.Sources[0]
	assert.Equal(t, "long.txt", first.Filename)
	assert.Equal(t, "long.txt_0", first.ChunkID)
	assert.InDelta(t, 0.9877, first.Similarity, 1e-9, "similarity rounded to 4 decimals")
	assert.True(t, strings.HasSuffix(first.Excerpt, "…"), "truncated excerpt ends with ellipsis")
	assert.Equal(t, 200, len([]rune(strings.TrimSuffix(first.Excerpt, "…"))))

	second := result.Sources[1]
	assert.Equal(t, "short text", second.Excerpt, "short text kept whole, no ellipsis")
	assert.InDelta(t, 0.4, second.Similarity, 1e-9)
}

// End-to-end through a real chunker and engine: a ~90 word document chunks
// into a single window, and with no LLM the best match is surfaced
// extractively.
func TestQAPipeline_Scenario_Extractive(t *testing.T) {
	climate := `Climate change refers to long-term shifts in temperatures and weather patterns.
Since the 1800s, human activities have been the main driver of climate change,
primarily due to burning fossil fuels like coal, oil and gas. This produces
heat-trapping gases. The effects include rising sea levels, more intense storms,
droughts, and heatwaves. The Paris Agreement of 2015 committed nations to limit
global warming to 1.5°C above pre-industrial levels. Renewable energy sources
such as solar and wind power are central to reducing carbon emissions.
Electric vehicles, energy-efficient buildings, and reforestation are also key
strategies in the fight against climate change.`

	ch, err := chunker.New()
	require.NoError(t, err)

	index := &mockIndex{}
	engine := NewRetrievalEngine(ch, &mockEmbedder{}, index)

	ingest, err := engine.Ingest(context.Background(), climate, "climate_change.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, ingest.NumChunks, "90-word document fits one 450-word window")

	pipeline := NewQAPipeline(engine, nil)
	result, err := pipeline.Ask(context.Background(), "What is a major cause of climate change?", 3)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeExtractive, result.Mode)
	assert.Contains(t, result.Answer, "fossil fuels")
	assert.Contains(t, result.Answer, "climate_change.txt")
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "climate_change.txt_0", result.Sources[0].ChunkID)
}

func TestQAPipeline_Scenario_NothingIngested(t *testing.T) {
	ch, err := chunker.New()
	require.NoError(t, err)

	engine := NewRetrievalEngine(ch, &mockEmbedder{}, &mockIndex{})
	pipeline := NewQAPipeline(engine, nil)

	result, err := pipeline.Ask(context.Background(), "anything at all?", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeNoResults, result.Mode)
	assert.Empty(t, result.Sources)
}
