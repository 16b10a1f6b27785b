package model

import "time"

// Report is the complete output for one scored evidence set
type Report struct {
	Claim    string     `json:"claim"`            // Claim under assessment
	Source   string     `json:"source,omitempty"` // File the evidence set was loaded from
	ScoredAt time.Time  `json:"scored_at"`        // When scoring ran
	Now      time.Time  `json:"now"`              // Reference time used for decay
	Verified string     `json:"verified"`         // "true", "false" or "unknown"
	Evidence []Evidence `json:"evidence"`         // Evidence as scored (embeddings included if enriched)
	Result   Result     `json:"result"`           // Score, components and signals

	Principles Principles `json:"principles"`

	Embedding *EmbeddingMeta `json:"embedding,omitempty"` // Present when embeddings were fetched
}

// EmbeddingMeta records how missing embeddings were filled in
type EmbeddingMeta struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Filled   int    `json:"filled"`          // Evidence items that received a vector
	Error    string `json:"error,omitempty"` // Set when enrichment failed and scoring fell back
}

// Principles documents how the score should be read
type Principles struct {
	NonNormative bool `json:"non_normative"` // Measures distrust signals, not truth
	Transparent  bool `json:"transparent"`   // Every component and formula is reported
	Inverted     bool `json:"inverted"`      // Higher authority contributes more distrust
}

// DefaultPrinciples returns the standard principles
func DefaultPrinciples() Principles {
	return Principles{
		NonNormative: true,
		Transparent:  true,
		Inverted:     true,
	}
}
