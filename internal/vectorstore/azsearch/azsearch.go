// Package azsearch is a minimal REST client to Azure AI Search.
// It creates the index if missing (HNSW, cosine) and performs pure vector
// queries against the embedding field.
package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"healthrag/internal/domain"
)

// Storage talks to one Azure AI Search index.
type Storage struct {
	endpoint   string
	apiKey     string
	index      string
	apiVersion string
	dimension  int
	client     *http.Client
}

// Config configures the Azure AI Search client. Endpoint, key and index name
// are read from the named environment variables.
type Config struct {
	EndpointEnv string
	APIKeyEnv   string
	IndexEnv    string
	APIVersion  string
	Timeout     time.Duration
}

// NewStorage creates a client from the environment-resolved configuration.
func NewStorage(cfg Config) (*Storage, error) {
	endpoint := os.Getenv(cfg.EndpointEnv)
	if endpoint == "" {
		return nil, fmt.Errorf("missing endpoint in env %s", cfg.EndpointEnv)
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	index := os.Getenv(cfg.IndexEnv)
	if index == "" {
		index = "healthcare-index"
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-07-01"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Storage{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     key,
		index:      index,
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Init creates the index with the given vector dimensionality if it does not
// exist. PUT is idempotent when the schema matches.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"name": s.index,
		"fields": []map[string]any{
			{"name": "id", "type": "Edm.String", "key": true, "filterable": true},
			{"name": "content", "type": "Edm.String", "searchable": true},
			{"name": "source", "type": "Edm.String", "filterable": true},
			{"name": "page", "type": "Edm.Int32", "filterable": true},
			{"name": "chunk_index", "type": "Edm.Int32", "filterable": true},
			{
				"name":                "embedding",
				"type":                "Collection(Edm.Single)",
				"searchable":          true,
				"dimensions":          dimension,
				"vectorSearchProfile": "embedding-profile",
			},
		},
		"vectorSearch": map[string]any{
			"algorithms": []map[string]any{
				{
					"name": "hnsw-cosine",
					"kind": "hnsw",
					"hnswParameters": map[string]any{
						"metric": "cosine",
					},
				},
			},
			"profiles": []map[string]any{
				{"name": "embedding-profile", "algorithm": "hnsw-cosine"},
			},
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/indexes/%s?api-version=%s", s.endpoint, s.index, s.apiVersion), body)
}

// Upsert uploads records with the mergeOrUpload action so re-indexing a
// document replaces its chunks in place.
func (s *Storage) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	value := make([]map[string]any, len(records))
	for i, r := range records {
		value[i] = map[string]any{
			"@search.action": "mergeOrUpload",
			"id":             r.ID,
			"content":        r.Text,
			"source":         r.SourceID,
			"page":           r.Page,
			"chunk_index":    r.Index,
			"embedding":      r.Vector,
		}
	}
	body := map[string]any{"value": value}
	return s.postJSON(ctx, fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", s.endpoint, s.index, s.apiVersion), body, nil)
}

// Search performs a pure vector query and maps the hits back to records.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top-k %d must be at least 1", domain.ErrInvalidArgument, topK)
	}
	req := map[string]any{
		"select": "id,content,source,page,chunk_index",
		"top":    topK,
		"vectorQueries": []map[string]any{
			{
				"kind":   "vector",
				"vector": vector,
				"fields": "embedding",
				"k":      topK,
			},
		},
	}
	var resp struct {
		Value []struct {
			Score   float64 `json:"@search.score"`
			ID      string  `json:"id"`
			Content string  `json:"content"`
			Source  string  `json:"source"`
			Page    int     `json:"page"`
			Index   int     `json:"chunk_index"`
		} `json:"value"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", s.endpoint, s.index, s.apiVersion), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Value))
	for _, v := range resp.Value {
		results = append(results, domain.SearchResult{
			Record: domain.EmbeddingRecord{
				ID:       v.ID,
				SourceID: v.Source,
				Page:     v.Page,
				Index:    v.Index,
				Text:     v.Content,
			},
			Score: v.Score,
		})
	}
	return results, nil
}

// Clear drops the index; Init recreates it on the next run.
func (s *Storage) Clear(ctx context.Context) error {
	url := fmt.Sprintf("%s/indexes/%s?api-version=%s", s.endpoint, s.index, s.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("api-key", s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("azure search DELETE %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("azure search PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("azure search POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
