package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/distrust/internal/cache"
	"github.com/ppiankov/distrust/internal/model"
	"github.com/ppiankov/distrust/internal/worker"
)

// newOpenAIServer answers /embeddings with a 3-dim vector per input whose
// first component is the input length
func newOpenAIServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if r.URL.Path != "/embeddings" {
			t.Errorf("Expected path /embeddings, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		data := make([]map[string]any, len(req.Input))
		// Reverse order to check that results are placed by index
		for i := range req.Input {
			j := len(req.Input) - 1 - i
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     j,
				"embedding": []float32{float32(len(req.Input[j])), 1, 0},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		desc     string
		config   Config
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{"disabled", Config{}, true, false, ""},
		{"openai", Config{Provider: "openai", APIKey: "k"}, false, false, "openai"},
		{"openai case-insensitive", Config{Provider: "OpenAI", APIKey: "k"}, false, false, "openai"},
		{"openai without key", Config{Provider: "openai"}, false, true, ""},
		{"ollama", Config{Provider: "ollama", Model: "nomic-embed-text"}, false, false, "ollama"},
		{"ollama without model", Config{Provider: "ollama"}, false, true, ""},
		{"unknown", Config{Provider: "cohere"}, false, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if tt.wantNil {
				if p != nil {
					t.Errorf("Expected nil provider, got %T", p)
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, p.Name())
			}
		})
	}
}

func TestConfig_Endpoint(t *testing.T) {
	tests := []struct {
		desc   string
		config Config
		want   string
	}{
		{"openai default", Config{Provider: "openai"}, "https://api.openai.com/v1"},
		{"ollama default", Config{Provider: "ollama"}, "http://localhost:11434"},
		{"explicit", Config{Provider: "openai", BaseURL: "http://local:8080/v1/"}, "http://local:8080/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := tt.config.Endpoint(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.EmbeddingConfig{Provider: "openai", Model: "m", BatchSize: 8, Timeout: time.Second},
		model.HTTPConfig{HTTPSProxy: "http://proxy:3128", NoProxy: "localhost"},
	)
	if !cfg.Enabled() || cfg.Model != "m" || cfg.BatchSize != 8 || cfg.HTTPSProxy != "http://proxy:3128" || cfg.NoProxy != "localhost" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestOpenAIProvider_Embed(t *testing.T) {
	server := newOpenAIServer(t, nil)
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if p.Model() != "text-embedding-3-small" {
		t.Errorf("Expected default model, got %s", p.Model())
	}

	vectors, err := p.Embed(context.Background(), []string{"a", "bbb"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][0] != 3 {
		t.Errorf("Vectors not placed by index: %v", vectors)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Embed(context.Background(), []string{"x"}); err == nil {
		t.Error("Expected error from API")
	}
}

func TestOllamaProvider_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("Expected path /api/embed, got %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "nomic-embed-text" {
			t.Errorf("Expected model nomic-embed-text, got %s", req.Model)
		}
		out := ollamaEmbedResponse{Model: req.Model}
		for range req.Input {
			out.Embeddings = append(out.Embeddings, []float64{0.5, 0.5})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{Model: "nomic-embed-text", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := p.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 3 || vectors[2][1] != 0.5 {
		t.Errorf("Unexpected vectors: %v", vectors)
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	p, _ := NewOllamaProvider(Config{Model: "missing", BaseURL: server.URL})
	_, err := p.Embed(context.Background(), []string{"a"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected model not found error, got %v", err)
	}
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	client := newHTTPClient(Config{
		HTTPSProxy: "http://proxy.internal:3128",
		NoProxy:    "api.internal",
	}, time.Second)

	transport := client.Transport.(*http.Transport)

	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "api.openai.com"}}
	proxyURL, err := transport.Proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if proxyURL == nil || proxyURL.Host != "proxy.internal:3128" {
		t.Errorf("Expected proxy.internal:3128, got %v", proxyURL)
	}

	req = &http.Request{URL: &url.URL{Scheme: "https", Host: "api.internal"}}
	proxyURL, err = transport.Proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if proxyURL != nil {
		t.Errorf("Expected NO_PROXY host to bypass proxy, got %v", proxyURL)
	}
}

// countingProvider returns a 2-dim vector per text and counts calls
type countingProvider struct {
	calls int32
	dim   int
	err   error
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	dim := p.dim
	if dim == 0 {
		dim = 2
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, dim)
		vec[0] = float64(len(text))
		out[i] = vec
	}
	return out, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	store := cache.NewVectorStore(cache.NewMemoryCache(time.Minute, time.Minute), 0)
	p := NewCachedProvider(inner, "m", store)

	first, err := p.Embed(context.Background(), []string{"aa", "bbb"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Embed(context.Background(), []string{"bbb", "c", "aa"})
	if err != nil {
		t.Fatal(err)
	}

	if atomic.LoadInt32(&inner.calls) != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", inner.calls)
	}
	if first[1][0] != 3 || second[0][0] != 3 || second[1][0] != 1 || second[2][0] != 2 {
		t.Errorf("Unexpected vectors: %v %v", first, second)
	}

	// Fully cached request makes no call
	if _, err := p.Embed(context.Background(), []string{"c"}); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&inner.calls) != 2 {
		t.Errorf("Expected cached request to skip upstream, got %d calls", inner.calls)
	}
}

func TestLimitedProvider_ContextCancelled(t *testing.T) {
	inner := &countingProvider{}
	limiter := worker.NewLimiter(0.001, 1)
	p := NewLimitedProvider(inner, limiter, "https://api.openai.com/v1")

	if _, err := p.Embed(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("First call should pass: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Embed(ctx, []string{"b"}); err == nil {
		t.Error("Expected rate limit error on cancelled context")
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", inner.calls)
	}
}

func TestEnricher_FillsOnlyMissing(t *testing.T) {
	inner := &countingProvider{}
	e := NewEnricher(inner, "m", 2)

	evidence := []model.Evidence{
		{Content: "keep", SourceID: "a", Embedding: []float64{9, 9}},
		{Content: "x", SourceID: "b"},
		{Content: "yy", SourceID: "c"},
		{Content: "zzz", SourceID: "d"},
	}

	out, filled, err := e.Enrich(context.Background(), evidence)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if filled != 3 {
		t.Errorf("Expected 3 filled, got %d", filled)
	}
	if out[0].Embedding[0] != 9 {
		t.Error("Existing embedding was overwritten")
	}
	if out[3].Embedding[0] != 3 {
		t.Errorf("Expected vector for zzz, got %v", out[3].Embedding)
	}
	if evidence[1].HasEmbedding() {
		t.Error("Input slice was mutated")
	}
	// 3 texts in batches of 2
	if inner.calls != 2 {
		t.Errorf("Expected 2 batched calls, got %d", inner.calls)
	}
}

func TestEnricher_DimensionMismatch(t *testing.T) {
	e := NewEnricher(&countingProvider{dim: 4}, "m", 0)

	evidence := []model.Evidence{
		{Content: "keep", SourceID: "a", Embedding: []float64{1, 0}},
		{Content: "new", SourceID: "b"},
	}

	out, filled, err := e.Enrich(context.Background(), evidence)
	if err == nil {
		t.Fatal("Expected dimension mismatch error")
	}
	if filled != 0 || out[1].HasEmbedding() {
		t.Error("Expected nothing to be filled on mismatch")
	}
}

func TestEnricher_ProviderError(t *testing.T) {
	e := NewEnricher(&countingProvider{err: fmt.Errorf("boom")}, "m", 0)
	_, _, err := e.Enrich(context.Background(), []model.Evidence{{Content: "a", SourceID: "a"}})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected wrapped provider error, got %v", err)
	}
}

func TestEnricher_NothingMissing(t *testing.T) {
	inner := &countingProvider{}
	e := NewEnricher(inner, "m", 0)
	_, filled, err := e.Enrich(context.Background(), []model.Evidence{{Content: "a", Embedding: []float64{1}}})
	if err != nil || filled != 0 || inner.calls != 0 {
		t.Errorf("Expected no-op, got filled=%d calls=%d err=%v", filled, inner.calls, err)
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	var calls int32
	server := newOpenAIServer(t, &calls)
	defer server.Close()

	store := cache.NewVectorStore(cache.NewMemoryCache(time.Minute, time.Minute), 0)
	e, err := Build(Config{Provider: "openai", APIKey: "test-key", BaseURL: server.URL}, worker.NewLimiter(100, 10), store)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if e.Provider() != "openai" || e.Model() != "text-embedding-3-small" {
		t.Errorf("Unexpected provider/model: %s/%s", e.Provider(), e.Model())
	}

	evidence := []model.Evidence{{Content: "one", SourceID: "a"}, {Content: "two", SourceID: "b"}}
	for i := 0; i < 2; i++ {
		out, filled, err := e.Enrich(context.Background(), evidence)
		if err != nil {
			t.Fatalf("Enrich failed: %v", err)
		}
		if filled != 2 || !out[1].HasEmbedding() {
			t.Errorf("Expected both items filled, got %d", filled)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected second run to be served from cache, got %d calls", calls)
	}
}

func TestBuild_Disabled(t *testing.T) {
	e, err := Build(Config{}, nil, nil)
	if err != nil || e != nil {
		t.Errorf("Expected nil enricher, got %v %v", e, err)
	}
}
