package embed

import (
	"context"
	"log/slog"

	"github.com/ppiankov/distrust/internal/cache"
)

// CachedProvider serves vectors from a cache and only forwards misses
type CachedProvider struct {
	inner Provider
	model string
	store *cache.VectorStore
}

// NewCachedProvider wraps inner. model is part of the cache key, so
// switching models never returns stale vectors.
func NewCachedProvider(inner Provider, model string, store *cache.VectorStore) *CachedProvider {
	return &CachedProvider{inner: inner, model: model, store: store}
}

// Name returns the wrapped provider's name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Embed returns cached vectors and fetches the rest in one call
func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if vec, ok := p.store.Get(cache.Key(p.inner.Name(), p.model, text)); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	slog.Debug("embedding cache lookup", "hits", len(texts)-len(missing), "misses", len(missing))

	if len(missing) == 0 {
		return vectors, nil
	}

	fetched, err := p.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}

	for j, vec := range fetched {
		vectors[missingIdx[j]] = vec
		if err := p.store.Set(cache.Key(p.inner.Name(), p.model, missing[j]), vec); err != nil {
			slog.Warn("embedding cache write failed", "error", err)
		}
	}

	return vectors, nil
}
