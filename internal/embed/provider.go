package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/distrust/internal/model"
)

// Provider turns texts into embedding vectors. The i-th vector belongs to the i-th text.
type Provider interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Config holds embedding provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	Model string

	// APIKey for OpenAI; optional when BaseURL points at a local server
	APIKey string

	// BaseURL for OpenAI-compatible endpoints or a non-default Ollama host
	BaseURL string

	Timeout   time.Duration
	BatchSize int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

const (
	defaultOpenAIURL = "https://api.openai.com/v1"
	defaultOllamaURL = "http://localhost:11434"
)

// ConfigFromModel builds a provider config from the application config
func ConfigFromModel(e model.EmbeddingConfig, h model.HTTPConfig) Config {
	return Config{
		Provider:   e.Provider,
		Model:      e.Model,
		APIKey:     e.APIKey,
		BaseURL:    e.BaseURL,
		Timeout:    e.Timeout,
		BatchSize:  e.BatchSize,
		HTTPProxy:  h.HTTPProxy,
		HTTPSProxy: h.HTTPSProxy,
		NoProxy:    h.NoProxy,
	}
}

// Enabled reports whether a provider is configured
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Provider) != ""
}

// Endpoint is the base URL requests go to; the rate limiter keys on its host
func (c Config) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	if strings.EqualFold(c.Provider, "ollama") {
		return defaultOllamaURL
	}
	return defaultOpenAIURL
}

// NewProvider creates the configured provider. It returns nil, nil when
// embeddings are disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama)", config.Provider)
	}
}
