package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/distrust/internal/authority"
	"github.com/ppiankov/distrust/internal/cache"
	"github.com/ppiankov/distrust/internal/embed"
	"github.com/ppiankov/distrust/internal/evidence"
	"github.com/ppiankov/distrust/internal/model"
	"github.com/ppiankov/distrust/internal/score"
	"github.com/ppiankov/distrust/internal/worker"
)

// Enricher fills missing embeddings
type Enricher interface {
	Provider() string
	Model() string
	Enrich(ctx context.Context, evidence []model.Evidence) ([]model.Evidence, int, error)
}

// Pipeline loads evidence, optionally enriches it, and scores it. One
// pipeline is shared by all batch workers.
type Pipeline struct {
	engine   *score.Engine
	loader   *evidence.Loader
	enricher Enricher // nil when embeddings are disabled
	clock    func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithEnricher replaces the configured enricher; nil disables enrichment
func WithEnricher(e Enricher) Option {
	return func(p *Pipeline) {
		p.enricher = e
	}
}

// WithClock sets the time source for scoring and report timestamps
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPipeline builds the engine and, when an embedding provider is
// configured, the cached and rate-limited enricher
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if err := score.ValidateConfig(cfg.Engine); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	p := &Pipeline{
		clock:  time.Now,
		loader: evidence.NewLoader(authority.NewClassifier(&cfg.Authority)),
	}
	p.engine = score.NewEngine(cfg.Engine, score.WithClock(func() time.Time { return p.clock() }))

	embedCfg := embed.ConfigFromModel(cfg.Embedding, cfg.HTTP)
	if embedCfg.Enabled() {
		var store *cache.VectorStore
		if cfg.Cache.Enabled {
			layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
			store = cache.NewVectorStore(layered, cfg.Cache.DiskTTL)
		}
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

		enricher, err := embed.Build(embedCfg, limiter, store)
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
		p.enricher = enricher
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Engine returns the scoring engine
func (p *Pipeline) Engine() *score.Engine {
	return p.engine
}

// Load reads an evidence file, inferring missing authority weights from urls
func (p *Pipeline) Load(path string) (*model.EvidenceSet, error) {
	return p.loader.Load(path)
}

// ScoreFile loads and scores one evidence file
func (p *Pipeline) ScoreFile(ctx context.Context, path string) (*model.Report, error) {
	set, err := p.Load(path)
	if err != nil {
		return nil, err
	}
	return p.ScoreSet(ctx, set, path)
}

// ScoreSet scores an already-loaded evidence set. Enrichment failures are
// logged and recorded in the report; scoring then falls back to content
// comparison.
func (p *Pipeline) ScoreSet(ctx context.Context, set *model.EvidenceSet, source string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := set.ReferenceTime()
	if now.IsZero() {
		now = p.clock()
	}

	items := set.Evidence
	var meta *model.EmbeddingMeta

	if p.enricher != nil && needsEmbedding(items) {
		meta = &model.EmbeddingMeta{
			Provider: p.enricher.Provider(),
			Model:    p.enricher.Model(),
		}

		enriched, filled, err := p.enricher.Enrich(ctx, items)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("embedding enrichment failed, using content comparison",
				"source", source, "provider", meta.Provider, "error", err)
			meta.Error = err.Error()
		} else {
			items = enriched
			meta.Filled = filled
			slog.Debug("embeddings filled", "source", source, "count", filled)
		}
	}

	result, err := p.engine.ComputeChecked(items, set.Verification(), now)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", describe(source, set.Claim), err)
	}

	return &model.Report{
		Claim:      set.Claim,
		Source:     source,
		ScoredAt:   p.clock().UTC(),
		Now:        now,
		Verified:   set.Verification().String(),
		Evidence:   items,
		Result:     result,
		Principles: model.DefaultPrinciples(),
		Embedding:  meta,
	}, nil
}

func needsEmbedding(items []model.Evidence) bool {
	for _, ev := range items {
		if !ev.HasEmbedding() {
			return true
		}
	}
	return false
}

func describe(source, claim string) string {
	if source != "" {
		return source
	}
	return fmt.Sprintf("%q", claim)
}
