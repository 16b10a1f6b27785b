package score

import (
	"math"
	"time"

	"github.com/ppiankov/distrust/internal/model"
)

const (
	// authorityEpsilon keeps ln(a) finite in the weighted authority mean
	authorityEpsilon = 1e-8

	// componentEpsilon keeps the entropy and coordination components above zero
	componentEpsilon = 0.01

	// meanEpsilon keeps ln(x) finite in the combined geometric mean
	meanEpsilon = 1e-10

	// Astroturfing: low authority together with high coordination
	astroturfAuthorityCeiling  = 0.3
	astroturfCoordinationFloor = 0.8
	astroturfFloor             = 0.75

	verifiedTrueFactor  = 0.8
	verifiedFalseFactor = 1.2
)

// Engine computes the epistemic distrust score of a claim from its evidence.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	cfg        model.EngineConfig
	similarity Similarity
	clock      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithSimilarity sets the similarity used for embedding-based coordination.
// A nil Similarity disables the embedding path; only duplicate content is detected.
func WithSimilarity(s Similarity) Option {
	return func(e *Engine) {
		e.similarity = s
	}
}

// WithClock sets the time source used when Compute is called with a zero "now"
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine creates an engine holding cfg. Cosine similarity is used unless overridden.
func NewEngine(cfg model.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		similarity: Cosine,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration
func (e *Engine) Config() model.EngineConfig {
	return e.cfg
}

// Compute scores the evidence list. A zero now means "use the engine clock".
// Compute never fails: malformed input yields a degenerate but finite-where-possible result.
func (e *Engine) Compute(evidence []model.Evidence, verification model.Verification, now time.Time) model.Result {
	if len(evidence) == 0 {
		return model.Result{
			DistrustScore: e.cfg.PriorDistrust,
			Verdict:       model.VerdictInsufficientEvidence,
		}
	}

	if now.IsZero() {
		now = e.clock()
	}

	// 1. Per-item authority factors, weighted by recency
	factors := make([]float64, len(evidence))
	weights := make([]float64, len(evidence))
	for i, ev := range evidence {
		factors[i] = AuthorityFactor(ev.AuthorityWeight)
		weights[i] = TemporalWeight(ev.Timestamp, now, e.cfg.TemporalHalfLife)
	}
	authority := weightedGeometricMean(factors, weights)

	// 2. Diversity and coordination, unweighted by time
	entropy := ProvenanceEntropy(evidence)
	coordination := e.Coordination(evidence)

	// 3. Geometric mean of the three distrust components
	combined := geometricMean([]float64{
		authority,
		1 - entropy + componentEpsilon,
		coordination + componentEpsilon,
	})

	// 4. Astroturfing floor
	override := IsAstroturfing(authority, coordination)
	if override {
		combined = math.Max(combined, astroturfFloor)
	}

	// 5. Ground truth correction
	combined = ApplyCorrection(combined, verification)

	// 6. Amplify and clamp
	final := clampUnit(e.cfg.Alpha * combined)

	result := model.Result{
		DistrustScore: final,
		Components: map[string]float64{
			model.ComponentAuthority:         authority,
			model.ComponentEntropy:           entropy,
			model.ComponentCoordination:      coordination,
			model.ComponentTemporalAvgWeight: mean(weights),
		},
		SourceCount:   len(evidence),
		UniqueSources: UniqueSources(evidence),
		Verdict:       Classify(final),
		Combined:      combined,
		Override:      override,
	}
	result.Signals = e.signals(evidence, result, verification)

	return result
}

// ComputeChecked validates the evidence before scoring it
func (e *Engine) ComputeChecked(evidence []model.Evidence, verification model.Verification, now time.Time) (model.Result, error) {
	if err := Validate(evidence); err != nil {
		return model.Result{}, err
	}
	return e.Compute(evidence, verification, now), nil
}

// IsAstroturfing reports whether the low-authority/high-coordination floor applies
func IsAstroturfing(authority, coordination float64) bool {
	return authority < astroturfAuthorityCeiling && coordination > astroturfCoordinationFloor
}

// ApplyCorrection adjusts a combined value once the claim's truth is known.
// A claim shown true lowers distrust by 20%; one shown false raises it by 20%, capped at 1.
func ApplyCorrection(combined float64, verification model.Verification) float64 {
	switch verification {
	case model.VerifiedTrue:
		return combined * verifiedTrueFactor
	case model.VerifiedFalse:
		return math.Min(1.0, combined*verifiedFalseFactor)
	default:
		return combined
	}
}

// Classify maps a final score to its verdict
func Classify(score float64) model.Verdict {
	switch {
	case score > 0.7:
		return model.VerdictHighDistrust
	case score > 0.4:
		return model.VerdictMediumDistrust
	case score > 0.2:
		return model.VerdictLowDistrust
	default:
		return model.VerdictTrust
	}
}

// UniqueSources counts distinct source ids
func UniqueSources(evidence []model.Evidence) int {
	seen := make(map[string]struct{}, len(evidence))
	for _, ev := range evidence {
		seen[ev.SourceID] = struct{}{}
	}
	return len(seen)
}

// weightedGeometricMean returns exp(Σ w·ln(a+ε) / Σ w). When every weight has
// decayed to zero (or overflowed) the unweighted mean is used instead.
func weightedGeometricMean(values, weights []float64) float64 {
	var num, den float64
	for i, v := range values {
		num += weights[i] * math.Log(v+authorityEpsilon)
		den += weights[i]
	}
	if den == 0 || math.IsInf(den, 0) || math.IsNaN(den) || math.IsNaN(num) {
		var sum float64
		for _, v := range values {
			sum += math.Log(v + authorityEpsilon)
		}
		return math.Exp(sum / float64(len(values)))
	}
	return math.Exp(num / den)
}

// geometricMean returns exp(mean(ln(x+1e-10)))
func geometricMean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += math.Log(v + meanEpsilon)
	}
	return math.Exp(sum / float64(len(values)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
