package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/util"
)

const (
	defaultModel        = "gemini-embedding-001"
	defaultBatchSize    = 100
	defaultMaxLogLength = 200
	retryBaseDelay      = 2 * time.Second
)

type embedContentClient interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder calls the Gemini embedding endpoint in batches.
type Embedder struct {
	client     embedContentClient
	model      string
	maxRetries int
	batchSize  int
	maxLogLen  int
	logger     *zap.Logger
	wait       func(context.Context, time.Duration) error
}

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, apiKey, model string, maxRetries, maxLogLength int, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, model, maxRetries, maxLogLength, log), nil
}

func newEmbedder(client embedContentClient, model string, maxRetries, maxLogLength int, log *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Embedder{
		client:     client,
		model:      model,
		maxRetries: maxRetries,
		batchSize:  defaultBatchSize,
		maxLogLen:  maxLogLength,
		logger:     logger.WithCommonFields(log, "gemini", model),
		wait:       util.WaitFor,
	}
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Embed returns one vector per text. Texts are sent in batches; transient API
// errors are retried with a linear backoff.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.client == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	e.logger.Debug("requesting embeddings",
		zap.Int("batch_size", len(texts)),
		zap.String("first_text", util.TruncateForLog(texts[0], e.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		resp, err := e.client.EmbedContent(ctx, e.model, contents, nil)
		if err == nil {
			return vectorsFrom(resp, len(texts))
		}
		lastErr = err

		if !isRetryable(err) || attempt == e.maxRetries {
			break
		}

		delay := time.Duration(attempt) * retryBaseDelay
		e.logger.Warn("embedding request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := e.wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

func vectorsFrom(resp *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if resp == nil || len(resp.Embeddings) != want {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", got, want)
	}

	out := make([][]float32, 0, want)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned empty embedding at index %d", i)
		}
		out = append(out, emb.Values)
	}
	return out, nil
}

// isRetryable treats server errors and rate limiting as transient.
func isRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}
