package domain

// AnswerMode identifies how an answer was produced.
type AnswerMode string

const (
	// ModeGenerative means the answer was produced by the generation gateway
	// from the assembled context.
	ModeGenerative AnswerMode = "generative"

	// ModeExtractive means the answer is the highest-similarity chunk,
	// returned verbatim with a preamble.
	ModeExtractive AnswerMode = "extractive"

	// ModeNoResults means retrieval found nothing and a fixed message was
	// returned.
	ModeNoResults AnswerMode = "no_results"
)

// Source cites one retrieved chunk that informed an answer.
type Source struct {
	// Filename is the source document of the cited chunk.
	Filename string

	// ChunkID identifies the cited chunk in the vector index.
	ChunkID string

	// Similarity is the chunk's similarity score, rounded to 4 decimals.
	Similarity float64

	// Excerpt is the chunk text truncated to 200 characters, with an
	// ellipsis appended when truncated.
	Excerpt string
}

// QAResult is the response to a question. It is constructed once per ask
// call.
type QAResult struct {
	// Question is the original question, unmodified.
	Question string

	// Answer is the generated or extractive answer text.
	Answer string

	// Sources lists every retrieved result, in similarity order.
	Sources []Source

	// Mode records which answer strategy produced the result.
	Mode AnswerMode
}
