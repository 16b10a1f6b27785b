package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/distrust/internal/model"
)

// ValidationError lists every problem found in an evidence list or engine config
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Validate checks evidence against the documented contract: authority in
// [0,1], a timestamp, a source id, and finite embeddings of one dimensionality.
// Compute does not call it; ComputeChecked does.
func Validate(evidence []model.Evidence) error {
	verr := &ValidationError{}
	dim := -1

	for i, ev := range evidence {
		w := ev.AuthorityWeight
		if math.IsNaN(w) || w < 0 || w > 1 {
			verr.add("evidence[%d]: authority_weight %v outside [0,1]", i, w)
		}
		if ev.Timestamp.IsZero() {
			verr.add("evidence[%d]: timestamp is missing", i)
		}
		if strings.TrimSpace(ev.SourceID) == "" {
			verr.add("evidence[%d]: source_id is empty", i)
		}
		if !ev.HasEmbedding() {
			continue
		}
		if dim < 0 {
			dim = len(ev.Embedding)
		} else if len(ev.Embedding) != dim {
			verr.add("evidence[%d]: embedding has %d dimensions, expected %d", i, len(ev.Embedding), dim)
		}
		for _, v := range ev.Embedding {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				verr.add("evidence[%d]: embedding contains non-finite values", i)
				break
			}
		}
	}

	return verr.orNil()
}

// ValidateConfig checks engine constants
func ValidateConfig(cfg model.EngineConfig) error {
	verr := &ValidationError{}

	if math.IsNaN(cfg.Alpha) || math.IsInf(cfg.Alpha, 0) || cfg.Alpha <= 0 {
		verr.add("alpha must be a positive finite number, got %v", cfg.Alpha)
	}
	if cfg.TemporalHalfLife <= 0 {
		verr.add("temporal_halflife must be positive, got %s", cfg.TemporalHalfLife)
	}
	if math.IsNaN(cfg.CoordinationThreshold) || cfg.CoordinationThreshold < 0 || cfg.CoordinationThreshold > 1 {
		verr.add("coordination_threshold must be in [0,1], got %v", cfg.CoordinationThreshold)
	}
	if math.IsNaN(cfg.PriorDistrust) || cfg.PriorDistrust < 0 || cfg.PriorDistrust > 1 {
		verr.add("prior_distrust must be in [0,1], got %v", cfg.PriorDistrust)
	}

	return verr.orNil()
}
