package driving

import (
	"context"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
)

// QAService answers natural-language questions grounded in retrieved
// passages.
type QAService interface {
	// Ask retrieves context for the question and produces an answer with
	// cited sources. The answer mode (generative or extractive) is fixed at
	// service construction; no_results is returned when retrieval finds
	// nothing.
	Ask(ctx context.Context, question string, topK int) (domain.QAResult, error)
}
