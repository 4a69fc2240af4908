package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeEmbedCall struct {
	model string
	texts []string
}

type fakeEmbedClient struct {
	mu     sync.Mutex
	calls  []fakeEmbedCall
	errors []error
}

func (f *fakeEmbedClient) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(contents))
	for _, c := range contents {
		texts = append(texts, c.Parts[0].Text)
	}
	f.calls = append(f.calls, fakeEmbedCall{model: model, texts: texts})

	if len(f.errors) > 0 {
		err := f.errors[0]
		f.errors = f.errors[1:]
		if err != nil {
			return nil, err
		}
	}

	resp := &genai.EmbedContentResponse{}
	for _, text := range texts {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: []float32{float32(len(text)), 1}})
	}
	return resp, nil
}

func newTestEmbedder(client embedContentClient, maxRetries int) *Embedder {
	e := newEmbedder(client, "embed-test", maxRetries, 0, zap.NewNop())
	e.wait = func(context.Context, time.Duration) error { return nil }
	return e
}

func TestEmbedderReturnsVectorsInOrder(t *testing.T) {
	client := &fakeEmbedClient{}
	e := newTestEmbedder(client, 1)

	vectors, err := e.Embed(context.Background(), []string{"go", "python", "c"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, want := range []float32{2, 6, 1} {
		if vectors[i][0] != want {
			t.Fatalf("vector %d: expected first value %v, got %v", i, want, vectors[i][0])
		}
	}

	if len(client.calls) != 1 || client.calls[0].model != "embed-test" {
		t.Fatalf("unexpected calls: %+v", client.calls)
	}
}

func TestEmbedderSplitsBatches(t *testing.T) {
	client := &fakeEmbedClient{}
	e := newTestEmbedder(client, 1)
	e.batchSize = 2

	vectors, err := e.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(vectors) != 5 {
		t.Fatalf("expected 5 vectors, got %d", len(vectors))
	}
	if len(client.calls) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(client.calls))
	}
	if got := client.calls[2].texts; len(got) != 1 || got[0] != "e" {
		t.Fatalf("unexpected last batch: %v", got)
	}
}

func TestEmbedderRetriesOnTemporaryError(t *testing.T) {
	client := &fakeEmbedClient{errors: []error{
		genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"},
	}}
	e := newTestEmbedder(client, 2)

	if _, err := e.Embed(context.Background(), []string{"docker"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(client.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(client.calls))
	}
}

func TestEmbedderStopsAfterRetriesExhausted(t *testing.T) {
	tempErr := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	client := &fakeEmbedClient{errors: []error{tempErr, tempErr}}
	e := newTestEmbedder(client, 2)

	_, err := e.Embed(context.Background(), []string{"docker"})
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if len(client.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(client.calls))
	}
}

func TestEmbedderDoesNotRetryClientErrors(t *testing.T) {
	client := &fakeEmbedClient{errors: []error{
		genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"},
	}}
	e := newTestEmbedder(client, 3)

	if _, err := e.Embed(context.Background(), []string{"docker"}); err == nil {
		t.Fatal("expected error for bad request")
	}

	if len(client.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(client.calls))
	}
}

func TestEmbedderStopsWhenContextCancelled(t *testing.T) {
	client := &fakeEmbedClient{errors: []error{
		genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"},
	}}
	e := newTestEmbedder(client, 3)
	e.wait = func(ctx context.Context, _ time.Duration) error { return context.Canceled }

	_, err := e.Embed(context.Background(), []string{"docker"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestNewEmbedderRequiresAPIKey(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), "  ", "", 1, 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
