package gemini

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type embedCallRecord struct {
	model    string
	contents []*genai.Content
	config   *genai.EmbedContentConfig
}

type fakeEmbedResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

type fakeEmbedCaller struct {
	mu    sync.Mutex
	calls []embedCallRecord
	queue []fakeEmbedResponse
}

func (f *fakeEmbedCaller) enqueue(resp *genai.EmbedContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeEmbedResponse{resp: resp, err: err})
}

func (f *fakeEmbedCaller) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, embedCallRecord{model: model, contents: contents, config: config})
	if len(f.queue) == 0 {
		return nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL", Message: "unexpected call"}
	}

	next := f.queue[0]
	f.queue = f.queue[1:]

	return next.resp, next.err
}

func embeddingsResponse(vectors ...[]float32) *genai.EmbedContentResponse {
	resp := &genai.EmbedContentResponse{}
	for _, vec := range vectors {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: vec})
	}
	return resp
}

func testEmbedder(caller embeddingCaller, maxRetries int) *Embedder {
	return &Embedder{
		caller:     caller,
		model:      defaultModel,
		dimensions: 64,
		maxRetries: maxRetries,
		logger:     zap.NewNop(),
	}
}

func TestEmbedTextsRetriesOnTemporaryError(t *testing.T) {
	caller := &fakeEmbedCaller{}
	caller.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	caller.enqueue(embeddingsResponse([]float32{1, 0}, []float32{0, 1}), nil)

	e := testEmbedder(caller, 2)

	vectors, err := e.EmbedTexts(context.Background(), []string{"python", "golang"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}

	if len(caller.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.calls))
	}

	for _, call := range caller.calls {
		if call.model != defaultModel {
			t.Fatalf("unexpected model: %q", call.model)
		}
		if call.config == nil || call.config.TaskType != embeddingTaskType {
			t.Fatalf("expected similarity task type, got %+v", call.config)
		}
		if call.config.OutputDimensionality == nil || *call.config.OutputDimensionality != 64 {
			t.Fatalf("expected output dimensionality 64, got %+v", call.config.OutputDimensionality)
		}
		if len(call.contents) != 2 {
			t.Fatalf("expected 2 contents, got %d", len(call.contents))
		}
	}
}

func TestEmbedTextsStopsAfterRetriesExhausted(t *testing.T) {
	caller := &fakeEmbedCaller{}
	caller.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	caller.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})

	e := testEmbedder(caller, 2)

	if _, err := e.EmbedTexts(context.Background(), []string{"python"}); err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if len(caller.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.calls))
	}
}

func TestEmbedTextsDoesNotRetryPermanentError(t *testing.T) {
	caller := &fakeEmbedCaller{}
	caller.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	e := testEmbedder(caller, 3)

	if _, err := e.EmbedTexts(context.Background(), []string{"python"}); err == nil {
		t.Fatal("expected error for permanent failure")
	}

	if len(caller.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(caller.calls))
	}
}

func TestEmbedTextsRejectsVectorCountMismatch(t *testing.T) {
	caller := &fakeEmbedCaller{}
	caller.enqueue(embeddingsResponse([]float32{1, 0}), nil)

	e := testEmbedder(caller, 1)

	if _, err := e.EmbedTexts(context.Background(), []string{"python", "golang"}); err == nil {
		t.Fatal("expected error on embedding count mismatch")
	}
}

func TestEmbedTextsValidatesInput(t *testing.T) {
	caller := &fakeEmbedCaller{}
	e := testEmbedder(caller, 1)

	if _, err := e.EmbedTexts(context.Background(), []string{"python", "  "}); err == nil {
		t.Fatal("expected error for blank text")
	}

	if len(caller.calls) != 0 {
		t.Fatalf("expected no api calls, got %d", len(caller.calls))
	}

	vectors, err := e.EmbedTexts(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", vectors, err)
	}
}
