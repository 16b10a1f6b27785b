package score

import (
	"math"
	"strings"

	"github.com/ppiankov/distrust/internal/model"
)

// Similarity compares two fixed-length vectors
type Similarity interface {
	Similarity(a, b []float64) float64
}

// SimilarityFunc adapts a plain function to Similarity
type SimilarityFunc func(a, b []float64) float64

// Similarity calls f(a, b)
func (f SimilarityFunc) Similarity(a, b []float64) float64 {
	return f(a, b)
}

// Cosine is cosine similarity. Vectors of different length or zero norm score 0.
var Cosine Similarity = SimilarityFunc(CosineSimilarity)

// CosineSimilarity returns a·b / (|a||b|)
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Coordination scores how much the evidence looks like one message repeated
// by nominally independent sources. With at least two embeddings (and a
// similarity configured) it is the share of embedded pairs above the
// coordination threshold; otherwise it falls back to duplicate content.
func (e *Engine) Coordination(evidence []model.Evidence) float64 {
	if len(evidence) < 2 {
		return 0
	}

	if e.similarity != nil {
		var vectors [][]float64
		for _, ev := range evidence {
			if ev.HasEmbedding() {
				vectors = append(vectors, ev.Embedding)
			}
		}
		if len(vectors) >= 2 {
			return PairwiseCoordination(vectors, e.similarity, e.cfg.CoordinationThreshold)
		}
	}

	return DuplicateContentCoordination(evidence)
}

// PairwiseCoordination returns the fraction of distinct unordered pairs whose
// similarity strictly exceeds threshold
func PairwiseCoordination(vectors [][]float64, sim Similarity, threshold float64) float64 {
	n := len(vectors)
	if n < 2 {
		return 0
	}

	pairs := 0
	coordinated := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs++
			if sim.Similarity(vectors[i], vectors[j]) > threshold {
				coordinated++
			}
		}
	}

	return float64(coordinated) / float64(pairs)
}

// DuplicateContentCoordination returns (m-1)/max(1, n-1) where m is the size
// of the largest group of items with identical normalised content
func DuplicateContentCoordination(evidence []model.Evidence) float64 {
	if len(evidence) < 2 {
		return 0
	}

	counts := make(map[string]int)
	maxDuplicates := 0
	for _, ev := range evidence {
		key := normalizeContent(ev.Content)
		counts[key]++
		if counts[key] > maxDuplicates {
			maxDuplicates = counts[key]
		}
	}

	return float64(maxDuplicates-1) / float64(max(1, len(evidence)-1))
}

func normalizeContent(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
