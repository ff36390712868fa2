package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driven"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driving"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// Ensure QAPipeline implements the interface.
var _ driving.QAService = (*QAPipeline)(nil)

// SystemPrompt is the fixed instruction given to the generation gateway.
const SystemPrompt = `You are DocuMind, a precise and helpful document Q&A assistant.
Answer the user's question using ONLY the provided context passages.
If the context does not contain enough information, say so clearly.
Cite the source filename when possible. Be concise yet thorough.`

// noResultsAnswer is returned when retrieval finds nothing.
const noResultsAnswer = "I couldn't find any relevant information in the knowledge base."

// Generation defaults.
const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.2
)

// excerptLimit bounds source excerpts in characters.
const excerptLimit = 200

// answerStrategy produces the final answer for a non-empty result set. The
// strategy is resolved once at pipeline construction, never re-checked per
// call: generation capability is a construction-time policy, not a retry
// policy.
type answerStrategy interface {
	Mode() domain.AnswerMode
	Answer(ctx context.Context, question, contextText string, results []domain.SearchResult) (string, error)
}

// generativeStrategy asks the generation gateway to answer from the
// assembled context.
type generativeStrategy struct {
	llm         driven.LLMService
	maxTokens   int
	temperature float64
}

func (g *generativeStrategy) Mode() domain.AnswerMode {
	return domain.ModeGenerative
}

func (g *generativeStrategy) Answer(ctx context.Context, question, contextText string, _ []domain.SearchResult) (string, error) {
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)

	answer, err := g.llm.Generate(ctx, SystemPrompt, userPrompt, driven.GenerateOptions{
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	return strings.TrimSpace(answer), nil
}

// extractiveStrategy passes the highest-similarity chunk through verbatim,
// preceded by a preamble naming its source. It guarantees the system degrades
// to "search with highlighted best match" without a generation collaborator.
type extractiveStrategy struct{}

func (extractiveStrategy) Mode() domain.AnswerMode {
	return domain.ModeExtractive
}

func (extractiveStrategy) Answer(_ context.Context, _ string, _ string, results []domain.SearchResult) (string, error) {
	top := results[0]
	return fmt.Sprintf("[Extractive answer from '%s' — similarity %.3f]\n\n%s",
		top.Filename, top.Similarity, top.Text), nil
}

// QAPipeline answers questions grounded in retrieved passages. The answer
// strategy is fixed at construction: generative when an LLM handle is
// supplied, extractive otherwise.
type QAPipeline struct {
	retrieval driving.RetrievalService
	strategy  answerStrategy

	maxTokens   int
	temperature float64
}

// QAOption configures the pipeline.
type QAOption func(*QAPipeline)

// WithMaxTokens sets the generation token budget.
func WithMaxTokens(n int) QAOption {
	return func(p *QAPipeline) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithTemperature sets the generation sampling temperature.
func WithTemperature(t float64) QAOption {
	return func(p *QAPipeline) {
		if t > 0 {
			p.temperature = t
		}
	}
}

// NewQAPipeline creates a QA pipeline. Passing a nil LLM service selects
// extractive mode for the pipeline's lifetime.
func NewQAPipeline(retrieval driving.RetrievalService, llm driven.LLMService, opts ...QAOption) *QAPipeline {
	p := &QAPipeline{
		retrieval:   retrieval,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(p)
	}

	if llm != nil {
		logger.Info("QA pipeline using generative mode (model %s)", llm.ModelName())
		p.strategy = &generativeStrategy{
			llm:         llm,
			maxTokens:   p.maxTokens,
			temperature: p.temperature,
		}
	} else {
		logger.Warn("No LLM configured; answering in extractive mode")
		p.strategy = extractiveStrategy{}
	}

	return p
}

// Ask retrieves context for the question and produces an answer with cited
// sources. It never returns a half-formed answer: any gateway failure fails
// the whole call.
func (p *QAPipeline) Ask(ctx context.Context, question string, topK int) (domain.QAResult, error) {
	logger.Section("Question Answering")
	logger.Debug("Question: %q", question)

	contextText, results, err := p.retrieval.BuildContext(ctx, question, topK)
	if err != nil {
		return domain.QAResult{}, fmt.Errorf("build context: %w", err)
	}

	if len(results) == 0 {
		logger.Debug("No results retrieved")
		return domain.QAResult{
			Question: question,
			Answer:   noResultsAnswer,
			Sources:  []domain.Source{},
			Mode:     domain.ModeNoResults,
		}, nil
	}

	answer, err := p.strategy.Answer(ctx, question, contextText, results)
	if err != nil {
		return domain.QAResult{}, fmt.Errorf("answer question: %w", err)
	}

	return domain.QAResult{
		Question: question,
		Answer:   answer,
		Sources:  buildSources(results),
		Mode:     p.strategy.Mode(),
	}, nil
}

// buildSources cites every retrieved result, not just the top one.
func buildSources(results []domain.SearchResult) []domain.Source {
	sources := make([]domain.Source, len(results))
	for i, r := range results {
		sources[i] = domain.Source{
			Filename:   r.Filename,
			ChunkID:    r.ChunkID,
			Similarity: roundTo(r.Similarity, 4),
			Excerpt:    excerpt(r.Text, excerptLimit),
		}
	}
	return sources
}

// excerpt truncates text to limit characters, marking truncation with an
// ellipsis.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
