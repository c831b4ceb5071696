package generator

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
)

const systemPrompt = "You are a helpful healthcare assistant. Provide accurate, evidence-based information while emphasizing that your responses are for educational purposes only and should not replace professional medical advice."

// Client generates answers through an Azure OpenAI chat-completions
// deployment.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	client     *http.Client
}

// Config configures the chat-completions client. Endpoint and key are read
// from the named environment variables.
type Config struct {
	EndpointEnv string
	APIKeyEnv   string
	Deployment  string
	APIVersion  string
	Timeout     time.Duration
}

// NewClient creates a chat-completions client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	endpoint := os.Getenv(cfg.EndpointEnv)
	if endpoint == "" {
		return nil, fmt.Errorf("missing endpoint in env %s", cfg.EndpointEnv)
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Deployment == "" {
		cfg.Deployment = "gpt-4o-mini"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-10-21"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     key,
		deployment: cfg.Deployment,
		apiVersion: cfg.APIVersion,
		client:     &http.Client{Timeout: t},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends the prompt to the chat deployment and returns the model's
// reply. Low temperature keeps medical answers consistent.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"messages": []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		"max_tokens":  1000,
		"temperature": 0.3,
		"top_p":       0.8,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", c.endpoint, c.deployment, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("azure openai chat completion failed: %s", resp.Status)
	}
	var out struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
