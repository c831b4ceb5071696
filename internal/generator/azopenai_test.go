package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("TEST_AOAI_ENDPOINT", server.URL)
	t.Setenv("TEST_AOAI_KEY", "secret")

	c, err := NewClient(Config{
		EndpointEnv: "TEST_AOAI_ENDPOINT",
		APIKeyEnv:   "TEST_AOAI_KEY",
		Deployment:  "gpt-4o-mini",
	})
	require.NoError(t, err)
	return c
}

func TestGenerate_SendsSystemAndUserMessages(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var req struct {
			Messages    []message `json:"messages"`
			Temperature float64   `json:"temperature"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "healthcare assistant")
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "What is hypertension?", req.Messages[1].Content)
		assert.InDelta(t, 0.3, req.Temperature, 1e-9)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  High blood pressure.  "}},
			},
		})
	}))

	answer, err := c.Generate(context.Background(), "What is hypertension?")
	require.NoError(t, err)
	assert.Equal(t, "High blood pressure.", answer)
}

func TestGenerate_ServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))

	_, err := c.Generate(context.Background(), "question")
	assert.Error(t, err)
}

func TestGenerate_NoChoices(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{}})
	}))

	_, err := c.Generate(context.Background(), "question")
	assert.Error(t, err)
}
