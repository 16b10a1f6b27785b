package model

import "time"

// Evidence represents one observation supporting or describing a claim
type Evidence struct {
	Content         string    `json:"content" yaml:"content"`                         // Free text, only used for duplicate-content coordination
	AuthorityWeight float64   `json:"authority_weight" yaml:"authority_weight"`       // 0 = anonymous/raw measurement, 1 = maximal institutional authority
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`                     // When the evidence was produced or observed
	SourceID        string    `json:"source_id" yaml:"source_id"`                     // Originating source; may repeat across items
	URL             string    `json:"url,omitempty" yaml:"url,omitempty"`             // Where the evidence was found; used to infer a missing authority_weight
	Embedding       []float64 `json:"embedding,omitempty" yaml:"embedding,omitempty"` // Optional semantic vector, nil when absent
}

// HasEmbedding reports whether the evidence carries a semantic vector
func (e Evidence) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// Verification is the tri-state ground truth of a claim, if known
type Verification int

const (
	VerificationUnknown Verification = iota // No ground truth, no correction applied
	VerifiedTrue                            // Claim later shown true
	VerifiedFalse                           // Claim later shown false
)

func (v Verification) String() string {
	switch v {
	case VerifiedTrue:
		return "true"
	case VerifiedFalse:
		return "false"
	default:
		return "unknown"
	}
}

// VerificationFromBool converts an optional bool into a Verification
func VerificationFromBool(b *bool) Verification {
	if b == nil {
		return VerificationUnknown
	}
	if *b {
		return VerifiedTrue
	}
	return VerifiedFalse
}

// EvidenceSet is the on-disk unit: one claim and the evidence gathered for it
type EvidenceSet struct {
	Claim    string     `json:"claim" yaml:"claim"`
	Verified *bool      `json:"verified,omitempty" yaml:"verified,omitempty"` // null = unknown
	Now      *time.Time `json:"now,omitempty" yaml:"now,omitempty"`           // Reference time for decay (default: scoring time)
	Evidence []Evidence `json:"evidence" yaml:"evidence"`
}

// Verification returns the set's ground truth as a Verification
func (s EvidenceSet) Verification() Verification {
	return VerificationFromBool(s.Verified)
}

// ReferenceTime returns the configured reference time, or the zero time
func (s EvidenceSet) ReferenceTime() time.Time {
	if s.Now == nil {
		return time.Time{}
	}
	return *s.Now
}
