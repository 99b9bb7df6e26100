// Package comparison compares regulatory clause sets across documents
// and jurisdictions, classifying differences and deriving regulatory
// gaps with severity estimates.
package comparison

import (
	"math"
	"strings"
	"sync"

	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// SimilarityScorer measures how close two clause texts are, in [0, 1].
// Implementations must be safe for concurrent use.
type SimilarityScorer interface {
	Score(textA, textB string) (float64, error)
	Name() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Jaccard scorer
// ─────────────────────────────────────────────────────────────────────────────

// JaccardScorer scores by word-set overlap. It needs no model and is
// the default scorer.
type JaccardScorer struct{}

// NewJaccardScorer returns the default lexical scorer.
func NewJaccardScorer() *JaccardScorer {
	return &JaccardScorer{}
}

func (s *JaccardScorer) Name() string { return "jaccard" }

func (s *JaccardScorer) Score(textA, textB string) (float64, error) {
	wordsA := wordSet(textA)
	wordsB := wordSet(textB)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0, nil
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union), nil
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// ─────────────────────────────────────────────────────────────────────────────
// Embedding scorer
// ─────────────────────────────────────────────────────────────────────────────

// EmbeddingFunc produces a vector representation of clause text.
type EmbeddingFunc func(text string) ([]float64, error)

// EmbeddingScorer scores by cosine similarity over embeddings from a
// pluggable model. Embeddings are memoized per text; the cache is safe
// for concurrent use.
type EmbeddingScorer struct {
	embed EmbeddingFunc

	mu    sync.RWMutex
	cache map[string][]float64
}

// NewEmbeddingScorer wraps an embedding model. A nil model is rejected
// at first use, not at construction.
func NewEmbeddingScorer(embed EmbeddingFunc) *EmbeddingScorer {
	return &EmbeddingScorer{
		embed: embed,
		cache: make(map[string][]float64),
	}
}

func (s *EmbeddingScorer) Name() string { return "embedding" }

func (s *EmbeddingScorer) Score(textA, textB string) (float64, error) {
	embA, err := s.embedding(textA)
	if err != nil {
		return 0, err
	}
	embB, err := s.embedding(textB)
	if err != nil {
		return 0, err
	}
	return cosineSimilarity(embA, embB), nil
}

func (s *EmbeddingScorer) embedding(text string) ([]float64, error) {
	s.mu.RLock()
	emb, ok := s.cache[text]
	s.mu.RUnlock()
	if ok {
		return emb, nil
	}

	if s.embed == nil {
		return nil, errors.New(errors.ErrCodeSimilarityScorerFailed, "no embedding model configured")
	}
	emb, err := s.embed(text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSimilarityScorerFailed, "embedding model failed")
	}

	s.mu.Lock()
	s.cache[text] = emb
	s.mu.Unlock()
	return emb, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
