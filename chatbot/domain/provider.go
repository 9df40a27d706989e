package domain

import "context"

// GenerationRequest carries everything a provider needs for one answer.
// ContextBlocks are ordered: conversation context first, retrieved chunks
// after. CacheHandle, when set, references a provider-side context cache that
// already holds the system instruction.
type GenerationRequest struct {
	Query             string
	ContextBlocks     []string
	SystemInstruction string
	CacheHandle       string
}

// IGenerationProvider produces the final answer. It never returns an error:
// internal failures surface as a fixed apology string, since the orchestrator's
// contract is to always return some answer.
type IGenerationProvider interface {
	Generate(ctx context.Context, req GenerationRequest) string
}

// IEmbeddingProvider turns text into a vector. Callers treat failure as an
// empty vector.
type IEmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ISummarizer condenses a formatted transcript into a short summary. A failure
// aborts compaction; the raw log is kept.
type ISummarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// IVectorSearch finds the chunks most similar to a query embedding. Callers
// treat failure as an empty result.
type IVectorSearch interface {
	Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]Chunk, error)
}

// IVectorIndex stores embedded chunks for later retrieval.
type IVectorIndex interface {
	AddChunks(ctx context.Context, chunks []Chunk) error
}

// IPromptRepository serves versioned prompt templates. GetActive selects the
// highest version among active templates, tie-broken by most recent creation;
// name narrows the selection when non-empty.
type IPromptRepository interface {
	GetActive(ctx context.Context, name string) (PromptTemplate, error)
	GetByID(ctx context.Context, id string) (PromptTemplate, error)
	Create(ctx context.Context, prompt PromptTemplate) (PromptTemplate, error)
}
