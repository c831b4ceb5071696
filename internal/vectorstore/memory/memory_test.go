package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrag/internal/domain"
)

func TestStorage_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))

	require.NoError(t, s.Upsert(ctx, []domain.EmbeddingRecord{
		{ID: "a-1-0", SourceID: "a.pdf", Index: 0, Text: "first", Vector: []float64{1, 0}},
		{ID: "b-1-0", SourceID: "b.pdf", Index: 0, Text: "second", Vector: []float64{0, 1}},
	}))

	results, err := s.Search(ctx, []float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a-1-0", results[0].Record.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestStorage_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))

	require.NoError(t, s.Upsert(ctx, []domain.EmbeddingRecord{
		{ID: "a-1-0", SourceID: "a.pdf", Text: "old", Vector: []float64{1, 0}},
	}))
	require.NoError(t, s.Upsert(ctx, []domain.EmbeddingRecord{
		{ID: "a-1-0", SourceID: "a.pdf", Text: "new", Vector: []float64{1, 0}},
	}))

	results, err := s.Search(ctx, []float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Record.Text)
}

func TestStorage_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 3))

	err := s.Upsert(ctx, []domain.EmbeddingRecord{{ID: "x", Vector: []float64{1, 0}}})
	assert.Error(t, err)
}

func TestStorage_InvalidTopK(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))

	_, err := s.Search(ctx, []float64{1, 0}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestStorage_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.EmbeddingRecord{
		{ID: "a", Vector: []float64{1, 0}},
	}))
	require.NoError(t, s.Clear(ctx))

	results, err := s.Search(ctx, []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
