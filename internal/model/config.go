package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the full application configuration
type Config struct {
	Engine       EngineConfig       `yaml:"engine" mapstructure:"engine"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// EngineConfig holds the tunable constants of the scoring engine.
// It is read-only for the lifetime of an engine.
type EngineConfig struct {
	Alpha                 float64       `yaml:"alpha" mapstructure:"alpha"`                                   // Final amplification before clamping
	TemporalHalfLife      time.Duration `yaml:"temporal_halflife" mapstructure:"temporal_halflife"`           // Recency half-life
	CoordinationThreshold float64       `yaml:"coordination_threshold" mapstructure:"coordination_threshold"` // Cosine cutoff for coordinated pairs
	PriorDistrust         float64       `yaml:"prior_distrust" mapstructure:"prior_distrust"`                 // Returned when there is no evidence
}

// AuthorityConfig maps source URLs to authority tiers. It is only used for
// evidence items that give a url but no authority_weight.
type AuthorityConfig struct {
	PrimaryDomains   []string      `yaml:"primary_domains" mapstructure:"primary_domains"`     // Institutional sources: gov, intergovernmental, journals of record
	SecondaryDomains []string      `yaml:"secondary_domains" mapstructure:"secondary_domains"` // Established media and reference works
	DomainTiers      []DomainTier  `yaml:"domain_tiers,omitempty" mapstructure:"domain_tiers"` // Exact host overrides, checked first
	PathPatterns     []PathPattern `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
	Weights          TierWeights   `yaml:"weights" mapstructure:"weights"`
}

// DomainTier pins an exact host to a tier. Hosts are a list rather than map
// keys because config keys are split on dots.
type DomainTier struct {
	Domain string `yaml:"domain" mapstructure:"domain"`
	Tier   string `yaml:"tier" mapstructure:"tier"` // "primary", "secondary" or "tertiary"
}

// PathPattern assigns a tier to URLs whose path matches a regular expression
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// TierWeights is the authority weight given to each tier
type TierWeights struct {
	Primary   float64 `yaml:"primary" mapstructure:"primary"`
	Secondary float64 `yaml:"secondary" mapstructure:"secondary"`
	Tertiary  float64 `yaml:"tertiary" mapstructure:"tertiary"`
}

// EmbeddingConfig controls optional embedding enrichment
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"` // Any OpenAI-compatible endpoint
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	BatchSize int           `yaml:"batch_size" mapstructure:"batch_size"`
}

// CacheConfig controls the embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch scoring
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits calls to the embedding endpoint
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig holds outbound HTTP settings for the embedding client
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	LogLevel      string `yaml:"log_level" mapstructure:"log_level"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	ShowSignals   bool   `yaml:"show_signals" mapstructure:"show_signals"`
}

// DefaultEngineConfig returns the documented engine defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Alpha:                 2.7,
		TemporalHalfLife:      30 * 24 * time.Hour,
		CoordinationThreshold: 0.85,
		PriorDistrust:         0.5,
	}
}

// DefaultAuthorityConfig returns the built-in domain tiers
func DefaultAuthorityConfig() AuthorityConfig {
	return AuthorityConfig{
		PrimaryDomains: []string{
			"who.int",
			"un.org",
			"europa.eu",
			"gov.uk",
			"doi.org",
			"nature.com",
			"science.org",
		},
		SecondaryDomains: []string{
			"reuters.com",
			"apnews.com",
			"bbc.co.uk",
			"nytimes.com",
			"wikipedia.org",
			"britannica.com",
		},
		Weights: TierWeights{
			Primary:   0.9,
			Secondary: 0.6,
			Tertiary:  0.2,
		},
	}
}

// DefaultConfig returns the complete default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine:    DefaultEngineConfig(),
		Authority: DefaultAuthorityConfig(),
		Embedding: EmbeddingConfig{
			Provider:  "", // Disabled by default
			Model:     "text-embedding-3-small",
			Timeout:   30 * time.Second,
			BatchSize: 64,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			LogLevel:      "info",
			IncludeFooter: true,
			ShowSignals:   true,
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "distrust-cache")
	}
	return filepath.Join(home, ".distrust", "cache")
}
