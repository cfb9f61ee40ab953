// Package similarity scores how close two pieces of text are. Scores blend
// a lexical edit-distance ratio with embedding cosine distance when an
// embedding backend is configured, and degrade to the lexical ratio alone
// when it is not, fails, or times out.
package similarity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single embedding call.
const DefaultTimeout = 10 * time.Second

// Embedder turns texts into fixed-length vectors. Implementations must
// return exactly one vector per input text, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Scorer computes text similarity in [0,1]. Construct with NewScorer.
// Safe for concurrent use.
type Scorer struct {
	embedder Embedder
	timeout  time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewScorer builds a scorer. A nil embedder is valid and makes every score
// purely lexical.
func NewScorer(embedder Embedder, timeout time.Duration, logger *zap.Logger) *Scorer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		embedder: embedder,
		timeout:  timeout,
		logger:   logger,
		cache:    make(map[string][]float32),
	}
}

// Semantic reports whether an embedding backend is configured.
func (s *Scorer) Semantic() bool { return s.embedder != nil }

// Similarity scores two strings. Either side empty scores 0. With an
// embedding backend the result is the mean of the lexical ratio and the
// clamped cosine of the two embeddings; a backend failure is logged and
// the lexical ratio alone is returned.
func (s *Scorer) Similarity(ctx context.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	lexical := Ratio(strings.ToLower(a), strings.ToLower(b))
	if s.embedder == nil {
		return lexical
	}

	vecA, vecB, err := s.embedPair(ctx, a, b)
	if err != nil {
		s.logger.Debug("embedding backend unavailable, falling back to lexical similarity",
			zap.Error(err))
		return lexical
	}

	return (lexical + Cosine(vecA, vecB)) / 2
}

// embedPair resolves vectors for both texts, batching cache misses into a
// single backend call bounded by the scorer timeout.
func (s *Scorer) embedPair(ctx context.Context, a, b string) ([]float32, []float32, error) {
	keyA, keyB := cacheKey(a), cacheKey(b)

	s.mu.RLock()
	vecA, okA := s.cache[keyA]
	vecB, okB := s.cache[keyB]
	s.mu.RUnlock()

	missing := make([]string, 0, 2)
	if !okA {
		missing = append(missing, a)
	}
	if !okB && b != a {
		missing = append(missing, b)
	}

	if len(missing) > 0 {
		embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		vectors, err := s.embedder.EmbedTexts(embedCtx, missing)
		if err != nil {
			return nil, nil, err
		}
		if len(vectors) != len(missing) {
			return nil, nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(missing))
		}

		s.mu.Lock()
		for i, text := range missing {
			s.cache[cacheKey(text)] = vectors[i]
		}
		s.mu.Unlock()

		s.mu.RLock()
		vecA = s.cache[keyA]
		vecB = s.cache[keyB]
		s.mu.RUnlock()
	}

	return vecA, vecB, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Ratio is the normalized Levenshtein similarity of two strings: 1 minus
// the edit distance divided by the longer length. Identical strings score
// 1, disjoint strings approach 0.
func Ratio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	runesA, runesB := []rune(a), []rune(b)
	dist := levenshtein(runesA, runesB)

	longest := len(runesA)
	if len(runesB) > longest {
		longest = len(runesB)
	}

	return 1 - float64(dist)/float64(longest)
}

// levenshtein computes edit distance with the two-row dynamic program.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Cosine is the cosine similarity of two vectors clamped to [0,1].
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	return math.Min(1, math.Max(0, cos))
}
