package embedder

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel      = "text-embedding-3-small"
	defaultOpenAIDimensions = 1536
	openAIMaxRetries        = 3
	openAIRetryDelay        = time.Second
)

// Compile-time interface check.
var _ Embedder = (*OpenAI)(nil)

// OpenAI produces embeddings through the OpenAI embeddings API.
type OpenAI struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAI creates an OpenAI embedding provider. model may be empty
// (defaults to text-embedding-3-small) and dims may be 0 (defaults to 1536).
func NewOpenAI(apiKey, model string, dims int) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedder: OpenAI API key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if dims <= 0 {
		dims = defaultOpenAIDimensions
	}
	return &OpenAI{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dims,
	}, nil
}

func (o *OpenAI) Name() string    { return "openai:" + string(o.model) }
func (o *OpenAI) Dimensions() int { return o.dimensions }

// Embed sends texts to the embeddings API in one batch and returns vectors
// in input order. Transient failures are retried with linear backoff.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      o.model,
		Dimensions: o.dimensions,
	}

	var resp openai.EmbeddingResponse
	var err error
	for attempt := 0; attempt <= openAIMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * openAIRetryDelay):
			}
		}
		resp, err = o.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("embedder: openai embed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedder: openai embed: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	// Data is not guaranteed to arrive in input order; Index says where each
	// embedding belongs.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedder: openai embed: embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
