package azsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrag/internal/domain"
)

func newTestStorage(t *testing.T, handler http.Handler) *Storage {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("TEST_SEARCH_ENDPOINT", server.URL)
	t.Setenv("TEST_SEARCH_KEY", "secret")
	t.Setenv("TEST_SEARCH_INDEX", "test-index")

	s, err := NewStorage(Config{
		EndpointEnv: "TEST_SEARCH_ENDPOINT",
		APIKeyEnv:   "TEST_SEARCH_KEY",
		IndexEnv:    "TEST_SEARCH_INDEX",
	})
	require.NoError(t, err)
	return s
}

func TestNewStorage_MissingCredentials(t *testing.T) {
	t.Setenv("TEST_SEARCH_ENDPOINT", "")
	_, err := NewStorage(Config{EndpointEnv: "TEST_SEARCH_ENDPOINT", APIKeyEnv: "TEST_SEARCH_KEY"})
	assert.Error(t, err)
}

func TestInit_CreatesIndexWithDimensions(t *testing.T) {
	var got map[string]any
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/indexes/test-index", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	require.NoError(t, s.Init(context.Background(), 1536))

	fields, ok := got["fields"].([]any)
	require.True(t, ok)
	var embedding map[string]any
	for _, f := range fields {
		m := f.(map[string]any)
		if m["name"] == "embedding" {
			embedding = m
		}
	}
	require.NotNil(t, embedding)
	assert.Equal(t, float64(1536), embedding["dimensions"])
}

func TestInit_InvalidDimension(t *testing.T) {
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	assert.Error(t, s.Init(context.Background(), 0))
}

func TestUpsert_SendsMergeOrUpload(t *testing.T) {
	var got struct {
		Value []map[string]any `json:"value"`
	}
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/test-index/docs/index", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))

	err := s.Upsert(context.Background(), []domain.EmbeddingRecord{
		{ID: "guide-1-0", SourceID: "guide.pdf", Page: 1, Index: 0, Text: "hello", Vector: []float64{0.1, 0.2}},
	})
	require.NoError(t, err)
	require.Len(t, got.Value, 1)
	assert.Equal(t, "mergeOrUpload", got.Value[0]["@search.action"])
	assert.Equal(t, "guide-1-0", got.Value[0]["id"])
	assert.Equal(t, "guide.pdf", got.Value[0]["source"])
}

func TestSearch_ParsesHits(t *testing.T) {
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/test-index/docs/search", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		queries := req["vectorQueries"].([]any)
		require.Len(t, queries, 1)
		assert.Equal(t, "embedding", queries[0].(map[string]any)["fields"])

		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"@search.score": 0.91, "id": "a-1-0", "content": "first", "source": "a.pdf", "page": 1, "chunk_index": 0},
				{"@search.score": 0.47, "id": "b-2-3", "content": "second", "source": "b.pdf", "page": 2, "chunk_index": 3},
			},
		})
	}))

	results, err := s.Search(context.Background(), []float64{0.5, 0.5}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a-1-0", results[0].Record.ID)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)
	assert.Equal(t, "b.pdf", results[1].Record.SourceID)
	assert.Equal(t, 3, results[1].Record.Index)
}

func TestSearch_InvalidTopK(t *testing.T) {
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := s.Search(context.Background(), []float64{1}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSearch_ServerError(t *testing.T) {
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := s.Search(context.Background(), []float64{1}, 3)
	assert.Error(t, err)
}
