package driven

import "context"

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// LLMService produces grounded answer text from an assembled context. It is
// an optional collaborator: when absent, the answer policy falls back to
// extractive mode at construction time.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a completion for the user prompt under the given
	// system instruction. Synchronous, no streaming.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
