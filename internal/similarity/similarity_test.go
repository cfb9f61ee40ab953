package similarity

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubEmbedder struct {
	mu    sync.Mutex
	calls int
	vecs  map[string][]float32
	err   error
	delay time.Duration
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, ok := s.vecs[text]
		if !ok {
			vec = []float32{1, 0, 0}
		}
		out = append(out, vec)
	}

	return out, nil
}

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarityLexicalProperties(t *testing.T) {
	scorer := NewScorer(nil, 0, zap.NewNop())
	ctx := context.Background()

	for _, text := range []string{"python", "senior software engineer", "a"} {
		if got := scorer.Similarity(ctx, text, text); !almostEqual(got, 1) {
			t.Errorf("Similarity(%q, %q) = %v, want 1", text, text, got)
		}
		if got := scorer.Similarity(ctx, text, ""); got != 0 {
			t.Errorf("Similarity(%q, \"\") = %v, want 0", text, got)
		}
	}

	a, b := "senior software engineer", "junior data scientist"
	if left, right := scorer.Similarity(ctx, a, b), scorer.Similarity(ctx, b, a); !almostEqual(left, right) {
		t.Errorf("similarity is asymmetric: %v vs %v", left, right)
	}
}

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"kitten", "sitting", 1 - 3.0/7.0},
		{"abc", "abc", 1},
		{"abc", "", 0},
		{"", "", 0},
		{"aaa", "aab", 1 - 1.0/3.0},
	}

	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); !almostEqual(got, tc.want) {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamped", []float32{1, 0}, []float32{-1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); !almostEqual(got, tc.want) {
				t.Fatalf("Cosine = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSimilarityBlendsLexicalAndSemantic(t *testing.T) {
	embedder := &stubEmbedder{vecs: map[string][]float32{
		"aaa": {1, 0},
		"aab": {0, 1},
	}}
	scorer := NewScorer(embedder, 0, zap.NewNop())

	// Lexical ratio is 2/3, cosine of orthogonal vectors is 0.
	got := scorer.Similarity(context.Background(), "aaa", "aab")
	if want := (1 - 1.0/3.0) / 2; !almostEqual(got, want) {
		t.Fatalf("Similarity = %v, want %v", got, want)
	}
}

func TestSimilarityFallsBackOnEmbedderError(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("backend down")}
	scorer := NewScorer(embedder, 0, zap.NewNop())

	got := scorer.Similarity(context.Background(), "aaa", "aab")
	if want := 1 - 1.0/3.0; !almostEqual(got, want) {
		t.Fatalf("Similarity = %v, want lexical-only %v", got, want)
	}
}

func TestSimilarityFallsBackOnTimeout(t *testing.T) {
	embedder := &stubEmbedder{delay: 500 * time.Millisecond}
	scorer := NewScorer(embedder, 10*time.Millisecond, zap.NewNop())

	start := time.Now()
	got := scorer.Similarity(context.Background(), "aaa", "aab")
	if want := 1 - 1.0/3.0; !almostEqual(got, want) {
		t.Fatalf("Similarity = %v, want lexical-only %v", got, want)
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Fatalf("similarity waited %v for a timed-out backend", elapsed)
	}
}

func TestSimilarityCachesEmbeddings(t *testing.T) {
	embedder := &stubEmbedder{vecs: map[string][]float32{}}
	scorer := NewScorer(embedder, 0, zap.NewNop())
	ctx := context.Background()

	scorer.Similarity(ctx, "python", "golang")
	if calls := embedder.callCount(); calls != 1 {
		t.Fatalf("first comparison made %d backend calls, want 1", calls)
	}

	scorer.Similarity(ctx, "golang", "python")
	if calls := embedder.callCount(); calls != 1 {
		t.Fatalf("cached comparison made %d backend calls in total, want 1", calls)
	}
}
