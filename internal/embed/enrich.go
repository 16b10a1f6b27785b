package embed

import (
	"context"
	"fmt"

	"github.com/ppiankov/distrust/internal/cache"
	"github.com/ppiankov/distrust/internal/model"
	"github.com/ppiankov/distrust/internal/worker"
)

const defaultBatchSize = 64

// Enricher fills in embeddings for evidence items that lack one
type Enricher struct {
	provider  Provider
	model     string
	batchSize int
}

// NewEnricher creates an enricher around an already-assembled provider
func NewEnricher(provider Provider, model string, batchSize int) *Enricher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Enricher{provider: provider, model: model, batchSize: batchSize}
}

// Build assembles the configured provider behind the limiter and, when
// store is non-nil, the vector cache. It returns nil, nil when embeddings
// are disabled.
func Build(config Config, limiter *worker.Limiter, store *cache.VectorStore) (*Enricher, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}

	modelName := config.Model
	if m, ok := provider.(interface{ Model() string }); ok {
		modelName = m.Model()
	}

	if limiter != nil {
		provider = NewLimitedProvider(provider, limiter, config.Endpoint())
	}
	if store != nil {
		provider = NewCachedProvider(provider, modelName, store)
	}

	return NewEnricher(provider, modelName, config.BatchSize), nil
}

// Provider returns the provider name
func (e *Enricher) Provider() string {
	return e.provider.Name()
}

// Model returns the embedding model name
func (e *Enricher) Model() string {
	return e.model
}

// Enrich returns a copy of evidence where every item without an embedding
// has one, plus the number of items filled. Items that already carry a
// vector are left untouched; if the fetched vectors do not match their
// dimension nothing is filled and an error is returned.
func (e *Enricher) Enrich(ctx context.Context, evidence []model.Evidence) ([]model.Evidence, int, error) {
	out := make([]model.Evidence, len(evidence))
	copy(out, evidence)

	existingDim := 0
	var texts []string
	var idx []int
	for i, item := range out {
		if item.HasEmbedding() {
			if existingDim == 0 {
				existingDim = len(item.Embedding)
			}
			continue
		}
		texts = append(texts, item.Content)
		idx = append(idx, i)
	}

	if len(texts) == 0 {
		return out, 0, nil
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		batch, err := e.provider.Embed(ctx, texts[start:end])
		if err != nil {
			return evidence, 0, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return evidence, 0, fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(batch))
		}
		vectors = append(vectors, batch...)
	}

	dim := existingDim
	for _, vec := range vectors {
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) == 0 || len(vec) != dim {
			return evidence, 0, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), dim)
		}
	}

	for j, vec := range vectors {
		out[idx[j]].Embedding = vec
	}

	return out, len(vectors), nil
}
