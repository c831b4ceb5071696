package domain

import "context"

// Document is one unit of extracted text: a single PDF page, or a whole
// plain-text file (Page 1). Immutable once extracted.
type Document struct {
	ID      string
	Source  string
	Page    int
	Content string
}

// Chunk is a contiguous window of a document's text, the unit of embedding
// and retrieval. Start and End are rune offsets into the page text, so
// End-Start always equals the rune length of Text.
type Chunk struct {
	SourceID string
	ChunkID  string
	Page     int
	Index    int
	Text     string
	Start    int
	End      int
}

// EmbeddingRecord is the unit stored in and returned by a vector store.
type EmbeddingRecord struct {
	ID       string
	SourceID string
	Page     int
	Index    int
	Text     string
	Vector   []float64
}

// SearchResult is a matching record with its similarity score.
type SearchResult struct {
	Record EmbeddingRecord
	Score  float64
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists embedding records and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []EmbeddingRecord) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Generator produces a natural-language answer from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Answer is the result of a full query: generated text plus the retrieved
// records it was conditioned on.
type Answer struct {
	Text    string
	Sources []SearchResult
}
