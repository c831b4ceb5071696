package vectorstore

import (
	"context"

	"healthrag/internal/domain"
)

// Storage persists embedding records and supports similarity search.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []domain.EmbeddingRecord) error
	Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error)
	Clear(ctx context.Context) error
}
