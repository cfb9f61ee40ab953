// Package gemini provides the Gemini-backed embedding client used for
// semantic text similarity.
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

	"github.com/spigell/job-autopilot/internal/logger"
	"github.com/spigell/job-autopilot/internal/utils"
)

const (
	// Backend names this provider in structured logs.
	Backend = "gemini"

	defaultModel = "gemini-embedding-001"

	// Embeddings are compared pairwise, so ask the API to optimize for
	// similarity rather than retrieval.
	embeddingTaskType = "SEMANTIC_SIMILARITY"

	defaultRetryBase = 2 * time.Second
	maxRetryDelay    = 10 * time.Second

	maxLogLength = 200
)

// embeddingCaller is the narrow slice of the genai SDK the embedder needs.
// It exists so tests can substitute the remote API.
type embeddingCaller interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type modelsCaller struct {
	client *genai.Client
}

func (m modelsCaller) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return m.client.Models.EmbedContent(ctx, model, contents, config)
}

// Embedder turns texts into embedding vectors via the Gemini API.
type Embedder struct {
	caller     embeddingCaller
	model      string
	dimensions int32
	maxRetries int
	retryBase  time.Duration
	logger     *zap.Logger
}

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, apiKey, model string, dimensions, maxRetries int, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Embedder{
		caller:     modelsCaller{client: client},
		model:      model,
		dimensions: int32(dimensions),
		maxRetries: maxRetries,
		retryBase:  defaultRetryBase,
		logger:     logger.WithBackendFields(log, Backend, model),
	}, nil
}

// EmbedTexts returns one vector per input text, in input order. Transient
// API failures are retried up to the configured attempt budget.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.caller == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("texts must not be empty")
		}
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	config := &genai.EmbedContentConfig{TaskType: embeddingTaskType}
	if e.dimensions > 0 {
		dims := e.dimensions
		config.OutputDimensionality = &dims
	}

	e.logger.Debug("requesting embeddings",
		zap.Int("texts", len(texts)),
		zap.String("first_text_preview", logger.TruncateForLog(texts[0], maxLogLength)),
	)

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		resp, err := e.caller.EmbedContent(ctx, e.model, contents, config)
		if err == nil {
			return extractVectors(resp, len(texts))
		}

		lastErr = err
		if !retryable(err) || attempt == e.maxRetries {
			break
		}

		e.logger.Debug("embedding request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if waitErr := utils.WaitFor(ctx, utils.RetryDelay(attempt, e.retryBase, maxRetryDelay)); waitErr != nil {
			return nil, fmt.Errorf("embed content: %w", waitErr)
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

// Model returns the configured embedding model identifier.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func extractVectors(resp *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if resp == nil || len(resp.Embeddings) != want {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", got, want)
	}

	vectors := make([][]float32, 0, want)
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned empty embedding at index %d", i)
		}
		vectors = append(vectors, embedding.Values)
	}

	return vectors, nil
}

// retryable reports whether the API error is worth another attempt. Server
// errors and rate limits are transient; other API errors are permanent.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
