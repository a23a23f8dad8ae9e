package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOllamaURL        = "http://localhost:11434"
	defaultOllamaModel      = "bge-m3"
	defaultOllamaDimensions = 1024
)

// Compile-time interface check.
var _ Embedder = (*Ollama)(nil)

// Ollama produces embeddings through the Ollama REST API (/api/embed).
// Works against a local daemon or Ollama Cloud with a bearer token.
type Ollama struct {
	baseURL    string
	model      string
	token      string
	dimensions int
	client     *http.Client
}

// NewOllama creates an Ollama embedding provider. baseURL, model, and dims
// may be zero values; they default to a local daemon running bge-m3 (1024-d).
func NewOllama(baseURL, model, token string, dims int) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if dims <= 0 {
		dims = defaultOllamaDimensions
	}
	return &Ollama{
		baseURL:    baseURL,
		model:      model,
		token:      token,
		dimensions: dims,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *Ollama) Name() string    { return "ollama:" + o.model }
func (o *Ollama) Dimensions() int { return o.dimensions }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed sends texts to /api/embed in one batch and returns vectors in
// input order.
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama embed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama embed: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	httpResp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama embed: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama embed: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedder: ollama embed: API error %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("embedder: ollama embed: decode response: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder: ollama embed: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}
