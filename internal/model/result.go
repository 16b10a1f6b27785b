package model

// Verdict is the categorical reading of a distrust score
type Verdict string

const (
	VerdictInsufficientEvidence Verdict = "INSUFFICIENT_EVIDENCE"
	VerdictTrust                Verdict = "TRUST"
	VerdictLowDistrust          Verdict = "LOW_DISTRUST"
	VerdictMediumDistrust       Verdict = "MEDIUM_DISTRUST"
	VerdictHighDistrust         Verdict = "HIGH_DISTRUST"
)

// Component names used as keys in Result.Components
const (
	ComponentAuthority         = "authority"
	ComponentEntropy           = "entropy"
	ComponentCoordination      = "coordination"
	ComponentTemporalAvgWeight = "temporal_avg_weight"
)

// ComponentOrder is the stable display order of the four components
var ComponentOrder = []string{
	ComponentAuthority,
	ComponentEntropy,
	ComponentCoordination,
	ComponentTemporalAvgWeight,
}

// Result is the outcome of scoring one evidence list
type Result struct {
	DistrustScore float64            `json:"distrust_score" yaml:"distrust_score"` // Final score in [0,1]
	Components    map[string]float64 `json:"components" yaml:"components"`         // nil when there was no evidence
	SourceCount   int                `json:"source_count" yaml:"source_count"`
	UniqueSources int                `json:"unique_sources" yaml:"unique_sources"`
	Verdict       Verdict            `json:"verdict" yaml:"verdict"`

	Combined float64  `json:"combined" yaml:"combined"`                   // Pre-alpha value after override and correction
	Override bool     `json:"override" yaml:"override"`                   // Astroturfing floor applied
	Signals  []Signal `json:"signals,omitempty" yaml:"signals,omitempty"` // Diagnostics, never affect the score
}

// Component returns a named component value and whether it is present
func (r Result) Component(name string) (float64, bool) {
	v, ok := r.Components[name]
	return v, ok
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType     `json:"type" yaml:"type"`
	Severity    SignalSeverity `json:"severity" yaml:"severity"`
	Description string         `json:"description" yaml:"description"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"` // Inputs and formula behind the value
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalAuthority          SignalType = "authority"           // Weighted authority factor
	SignalProvenanceEntropy  SignalType = "provenance_entropy"  // Diversity of source ids
	SignalCoordination       SignalType = "coordination"        // Near-identical content across sources
	SignalTemporalDecay      SignalType = "temporal_decay"      // Age of evidence
	SignalAstroturfing       SignalType = "astroturfing"        // Low authority + high coordination floor
	SignalBayesianCorrection SignalType = "bayesian_correction" // Ground truth adjustment
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
