package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrag/internal/chunker"
	"healthrag/internal/domain"
	"healthrag/internal/embedding/tfidf"
	"healthrag/internal/summarizer"
	"healthrag/internal/vectorstore/memory"
)

type fakeSource struct {
	files map[string][]byte
	order []string
}

func (f *fakeSource) ListPDFs(ctx context.Context) ([]string, error) {
	return f.order, nil
}

func (f *fakeSource) Download(ctx context.Context, name string) ([]byte, error) {
	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", name)
	}
	return data, nil
}

type fakeGenerator struct {
	prompt string
	reply  string
	err    error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func newTestService(t *testing.T, source *fakeSource, gen domain.Generator) *RAGService {
	t.Helper()
	ch, err := chunker.NewWindowChunker(40, 10)
	require.NoError(t, err)
	return NewRAGService(source, ch, tfidf.NewEmbedder(), memory.NewStorage(), gen, summarizer.NewFrequencySummarizer(), 3)
}

func testSource() *fakeSource {
	return &fakeSource{
		files: map[string][]byte{
			"pressure.txt": []byte("Normal blood pressure is below 120 over 80. High blood pressure often has no symptoms. Regular monitoring helps detect hypertension early."),
			"diabetes.txt": []byte("Diabetes symptoms include increased thirst and frequent urination. Blood sugar management requires diet and exercise."),
		},
		order: []string{"pressure.txt", "diabetes.txt"},
	}
}

func TestIngest_ChunksAndStoresAllDocuments(t *testing.T) {
	svc := newTestService(t, testSource(), nil)

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Pages)
	assert.Greater(t, report.Chunks, 2)
	assert.NotEmpty(t, report.RunID)
}

func TestIngest_FailsWhenDownloadFails(t *testing.T) {
	source := testSource()
	source.order = append(source.order, "missing.pdf")
	svc := newTestService(t, source, nil)

	_, err := svc.Ingest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
}

func TestIngest_HonorsCancellationBetweenDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestService(t, testSource(), nil)

	_, err := svc.Ingest(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsk_GeneratesAnswerFromRetrievedContext(t *testing.T) {
	gen := &fakeGenerator{reply: "Normal blood pressure is below 120/80."}
	svc := newTestService(t, testSource(), gen)

	_, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	answer, err := svc.Ask(context.Background(), "What is normal blood pressure?", 2)
	require.NoError(t, err)
	assert.Equal(t, gen.reply, answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "pressure.txt", answer.Sources[0].Record.SourceID)

	assert.Contains(t, gen.prompt, "What is normal blood pressure?")
	assert.Contains(t, gen.prompt, "Source: pressure.txt")
}

func TestAsk_SummaryFallbackWithoutGenerator(t *testing.T) {
	svc := newTestService(t, testSource(), nil)

	_, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	answer, err := svc.Ask(context.Background(), "diabetes symptoms", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
	assert.Len(t, answer.Sources, 2)
}

func TestAsk_PropagatesGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("deployment unavailable")}
	svc := newTestService(t, testSource(), gen)

	_, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), "blood pressure", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating answer")
}

func TestRetrieve_TopKBeyondStoredReturnsAll(t *testing.T) {
	svc := newTestService(t, testSource(), nil)
	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	results, err := svc.Retrieve(context.Background(), "blood pressure", report.Chunks+50)
	require.NoError(t, err)
	assert.Len(t, results, report.Chunks)
}

func TestChunkDocument_SequentialIndicesAcrossPages(t *testing.T) {
	svc := newTestService(t, testSource(), nil)
	docs := []domain.Document{
		{ID: "abc", Source: "multi.pdf", Page: 1, Content: strings.Repeat("a", 100)},
		{ID: "abc", Source: "multi.pdf", Page: 2, Content: strings.Repeat("b", 100)},
	}

	chunks, err := svc.chunkDocument(docs)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, fmt.Sprintf("abc-%d-%d", ch.Page, i), ch.ChunkID)
	}
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[len(chunks)-1].Page)
}

func TestBuildPrompt_IncludesSourceAttribution(t *testing.T) {
	prompt := BuildPrompt("How often should I exercise?", []domain.SearchResult{
		{Record: domain.EmbeddingRecord{SourceID: "fitness.pdf", Page: 3, Text: "Exercise 150 minutes per week."}},
		{Record: domain.EmbeddingRecord{SourceID: "heart.pdf", Page: 1, Text: "Cardio strengthens the heart."}},
	})
	assert.Contains(t, prompt, "Document 1 (Source: fitness.pdf, Page: 3)")
	assert.Contains(t, prompt, "Document 2 (Source: heart.pdf, Page: 1)")
	assert.Contains(t, prompt, "How often should I exercise?")
	assert.Contains(t, prompt, "medical disclaimer")
}
