package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/platform/observability"
)

const (
	ModelTextEmbedding3Small = "text-embedding-3-small"

	// Default rate limiter burst.
	openaiRateLimiterBurst = 5

	errRateLimiterFmt = "rate limiter: %w"

	statusOK    = "ok"
	statusError = "error"
)

// OpenAIProvider implements Provider against the OpenAI embeddings API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	RateLimit int // Requests per second
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = ModelTextEmbedding3Small
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	return &OpenAIProvider{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), openaiRateLimiterBurst),
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedBatch embeds all texts in a single API request.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf(errRateLimiterFmt, err)
	}

	start := time.Now()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})

	observability.EmbeddingLatency.WithLabelValues(p.model).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.EmbeddingRequests.WithLabelValues(p.model, statusError).Inc()

		return nil, fmt.Errorf("%w: create embeddings: %w", domain.ErrUpstreamFailure, err)
	}

	if len(resp.Data) != len(texts) {
		observability.EmbeddingRequests.WithLabelValues(p.model, statusError).Inc()

		return nil, fmt.Errorf("%w: embedding response has %d vectors for %d inputs", domain.ErrUpstreamFailure, len(resp.Data), len(texts))
	}

	observability.EmbeddingRequests.WithLabelValues(p.model, statusOK).Inc()

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}
