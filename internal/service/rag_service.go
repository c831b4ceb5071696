package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"healthrag/internal/domain"
	"healthrag/internal/extract"
	"healthrag/internal/vectorstore"
)

// upsertBatchSize bounds the payload of a single index upload request.
const upsertBatchSize = 100

// DocumentSource lists and fetches the raw documents to ingest.
type DocumentSource interface {
	ListPDFs(ctx context.Context) ([]string, error)
	Download(ctx context.Context, name string) ([]byte, error)
}

// RAGService wires the pipeline: source -> extract -> chunk -> embed ->
// store on the write path, embed -> search -> generate on the read path.
type RAGService struct {
	source              DocumentSource
	chunker             domain.Chunker
	embedder            domain.Embedder
	store               vectorstore.Storage
	generator           domain.Generator
	summarizer          domain.Summarizer
	summaryMaxSentences int
}

// NewRAGService assembles the pipeline. generator may be nil, in which case
// answers fall back to an extractive summary of the retrieved chunks.
func NewRAGService(source DocumentSource, chunker domain.Chunker, embedder domain.Embedder, store vectorstore.Storage, generator domain.Generator, summarizer domain.Summarizer, summaryMaxSentences int) *RAGService {
	return &RAGService{
		source:              source,
		chunker:             chunker,
		embedder:            embedder,
		store:               store,
		generator:           generator,
		summarizer:          summarizer,
		summaryMaxSentences: summaryMaxSentences,
	}
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID     string
	Documents int
	Pages     int
	Chunks    int
}

// Ingest runs the full write path over every PDF in the source container,
// one document at a time. Cancellation is honored between documents; any
// failure aborts the run and names the document (and chunk) in flight.
func (s *RAGService) Ingest(ctx context.Context) (*IngestReport, error) {
	report := &IngestReport{RunID: uuid.NewString()}

	names, err := s.source.ListPDFs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no PDF documents found in source container")
	}
	log.Printf("ingest %s: %d documents to process", report.RunID, len(names))

	var allChunks []domain.Chunk
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.source.Download(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", name, err)
		}
		docs, err := extract.Documents(name, data)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", name, err)
		}
		chunks, err := s.chunkDocument(docs)
		if err != nil {
			return nil, fmt.Errorf("chunking %s: %w", name, err)
		}
		log.Printf("ingest %s: %s -> %d pages, %d chunks", report.RunID, name, len(docs), len(chunks))
		report.Documents++
		report.Pages += len(docs)
		allChunks = append(allChunks, chunks...)
	}
	if len(allChunks) == 0 {
		return nil, fmt.Errorf("no text extracted from any document")
	}
	report.Chunks = len(allChunks)

	corpus := make([]string, len(allChunks))
	for i, ch := range allChunks {
		corpus[i] = ch.Text
	}
	if err := s.embedder.Prepare(ctx, corpus); err != nil {
		return nil, fmt.Errorf("preparing embedder: %w", err)
	}

	records := make([]domain.EmbeddingRecord, len(allChunks))
	for i, ch := range allChunks {
		vec, err := s.embedder.Embed(ctx, ch.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding %s chunk %d: %w", ch.SourceID, ch.Index, err)
		}
		records[i] = domain.EmbeddingRecord{
			ID:       ch.ChunkID,
			SourceID: ch.SourceID,
			Page:     ch.Page,
			Index:    ch.Index,
			Text:     ch.Text,
			Vector:   vec,
		}
	}

	// Remote embedders learn their dimension from the first response, so
	// the store can only be initialized after embedding.
	dimension := s.embedder.Dimension()
	if dimension == 0 {
		dimension = len(records[0].Vector)
	}
	if err := s.store.Init(ctx, dimension); err != nil {
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.store.Upsert(ctx, records[start:end]); err != nil {
			return nil, fmt.Errorf("upserting %s chunk %d: %w", records[start].SourceID, records[start].Index, err)
		}
	}
	log.Printf("ingest %s: stored %d records (dimension %d)", report.RunID, len(records), dimension)
	return report, nil
}

// chunkDocument chunks each page and renumbers chunk indices sequentially
// across the whole document, starting at 0.
func (s *RAGService) chunkDocument(docs []domain.Document) ([]domain.Chunk, error) {
	var out []domain.Chunk
	next := 0
	for _, doc := range docs {
		chunks, err := s.chunker.Chunk(doc)
		if err != nil {
			return nil, err
		}
		for _, ch := range chunks {
			ch.Index = next
			ch.ChunkID = fmt.Sprintf("%s-%d-%d", doc.ID, doc.Page, ch.Index)
			out = append(out, ch)
			next++
		}
	}
	return out, nil
}

// Retrieve embeds the question and returns the top-k matching records.
func (s *RAGService) Retrieve(ctx context.Context, question string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return results, nil
}

// Ask runs the full read path: retrieve context, build the prompt, and
// generate an answer. Without a generator the answer is an extractive
// summary of the retrieved chunks.
func (s *RAGService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	results, err := s.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &domain.Answer{Text: "No relevant documents found."}, nil
	}
	if s.generator == nil {
		var ctxText strings.Builder
		for _, r := range results {
			ctxText.WriteString(r.Record.Text)
			ctxText.WriteString("\n")
		}
		summary, err := s.summarizer.Summarize(ctxText.String(), s.summaryMaxSentences)
		if err != nil {
			return nil, fmt.Errorf("summarizing context: %w", err)
		}
		return &domain.Answer{Text: summary, Sources: results}, nil
	}
	answer, err := s.generator.Generate(ctx, BuildPrompt(question, results))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	return &domain.Answer{Text: answer, Sources: results}, nil
}

// BuildPrompt combines the question with the retrieved chunks, labelling
// each with its source and page for attribution.
func BuildPrompt(question string, results []domain.SearchResult) string {
	var context strings.Builder
	for i, r := range results {
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "Document %d (Source: %s, Page: %d):\n%s", i+1, r.Record.SourceID, r.Record.Page, r.Record.Text)
	}
	return fmt.Sprintf(`You are a knowledgeable healthcare assistant. Answer the user's question based on the provided medical documents. Be accurate, helpful, and professional.

IMPORTANT GUIDELINES:
- Base your answer primarily on the provided document context
- If the documents don't contain enough information, acknowledge this limitation
- Use clear, understandable language appropriate for patients
- Include relevant details from the documents
- Always add a medical disclaimer at the end

USER QUESTION:
%s

RELEVANT MEDICAL DOCUMENTS:
%s

Please provide a comprehensive answer based on the above medical documents. Include specific information from the sources when relevant.`, question, context.String())
}
