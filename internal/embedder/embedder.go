// Package embedder turns chunk text into fixed-dimension vectors through
// an OpenAI-compatible embeddings endpoint.
package embedder

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks zipdex/internal/embedder Embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// BatchSize is the number of texts sent per embeddings request.
const BatchSize = 32

// Embedder generates one vector per input text, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Client calls a llama.cpp/OpenAI-style /v1/embeddings endpoint.
type Client struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int

	client *http.Client
	retry  RetryConfig
}

// NewClient creates an embeddings client. expectedSize is the vector
// dimension every response is validated against.
func NewClient(baseURL, apiKey, model string, expectedSize int) *Client {
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		client:       http.DefaultClient,
		retry:        DefaultRetryConfig(),
	}
}

// Dimension returns the configured vector size.
func (c *Client) Dimension() int {
	return c.ExpectedSize
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
}

type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbedBatch generates embeddings for the given texts. It returns one
// float32 vector per input, each validated against the expected size.
// Transient failures (transport errors, 5xx) are retried with backoff.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	var result [][]float32
	err := retryWithBackoff(ctx, c.retry, func() error {
		vectors, err := c.embedOnce(ctx, texts)
		if err != nil {
			return err
		}
		result = vectors
		return nil
	})
	return result, err
}

func (c *Client) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	body, err := json.Marshal(embeddingsRequest{Model: c.Model, Input: texts})
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, permanent(err)
	}

	var parsed embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	if len(parsed.Data) != len(texts) {
		return nil, permanent(fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data)))
	}

	result := make([][]float32, len(parsed.Data))
	for i, data := range parsed.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, permanent(fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize))
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}
	return result, nil
}
