package embed

import (
	"context"
	"fmt"

	"github.com/ppiankov/distrust/internal/worker"
)

// LimitedProvider waits on a per-host limiter before each call
type LimitedProvider struct {
	inner    Provider
	limiter  *worker.Limiter
	endpoint string
}

// NewLimitedProvider wraps inner with limiter keyed on endpoint's host
func NewLimitedProvider(inner Provider, limiter *worker.Limiter, endpoint string) *LimitedProvider {
	return &LimitedProvider{inner: inner, limiter: limiter, endpoint: endpoint}
}

// Name returns the wrapped provider's name
func (p *LimitedProvider) Name() string {
	return p.inner.Name()
}

// Embed waits for rate limit clearance then forwards the call
func (p *LimitedProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if err := p.limiter.Wait(ctx, p.endpoint); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return p.inner.Embed(ctx, texts)
}
