package score

import (
	"fmt"

	"github.com/ppiankov/distrust/internal/model"
)

// signals builds the diagnostic breakdown for a computed result
func (e *Engine) signals(evidence []model.Evidence, r model.Result, verification model.Verification) []model.Signal {
	authority := r.Components[model.ComponentAuthority]
	entropy := r.Components[model.ComponentEntropy]
	coordination := r.Components[model.ComponentCoordination]
	temporal := r.Components[model.ComponentTemporalAvgWeight]

	signals := []model.Signal{
		authoritySignal(authority, len(evidence)),
		entropySignal(entropy, r.SourceCount, r.UniqueSources),
		e.coordinationSignal(evidence, coordination),
		e.temporalSignal(temporal),
	}

	if r.Override {
		signals = append(signals, model.Signal{
			Type:        model.SignalAstroturfing,
			Severity:    model.SeverityCritical,
			Description: "Low authority with highly coordinated content: likely manufactured grassroots",
			Data: map[string]any{
				"authority":    authority,
				"coordination": coordination,
				"floor":        astroturfFloor,
				"formula":      "authority < 0.3 && coordination > 0.8 => combined = max(combined, 0.75)",
			},
		})
	}

	if verification != model.VerificationUnknown {
		factor := verifiedTrueFactor
		if verification == model.VerifiedFalse {
			factor = verifiedFalseFactor
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalBayesianCorrection,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Claim verified %s: combined value scaled by %.1f", verification, factor),
			Data: map[string]any{
				"verified": verification.String(),
				"factor":   factor,
				"combined": r.Combined,
			},
		})
	}

	return signals
}

func authoritySignal(authority float64, count int) model.Signal {
	severity := model.SeverityInfo
	if authority > 0.9 {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalAuthority,
		Severity:    severity,
		Description: fmt.Sprintf("Weighted authority factor: %.4f over %d item(s)", authority, count),
		Data: map[string]any{
			"value":   authority,
			"items":   count,
			"formula": "exp(sum(w_i * ln(sigmoid(10*(a_i-0.5)) + 1e-8)) / sum(w_i))",
		},
	}
}

func entropySignal(entropy float64, count, unique int) model.Signal {
	severity := model.SeverityInfo
	if unique <= 1 {
		severity = model.SeverityCritical
	} else if entropy < 0.5 {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalProvenanceEntropy,
		Severity:    severity,
		Description: fmt.Sprintf("Source diversity: %d unique of %d (entropy %.4f)", unique, count, entropy),
		Data: map[string]any{
			"value":          entropy,
			"unique_sources": unique,
			"source_count":   count,
			"formula":        "-sum(p_i * log2(p_i)) / log2(k)",
		},
	}
}

func (e *Engine) coordinationSignal(evidence []model.Evidence, coordination float64) model.Signal {
	embedded := 0
	for _, ev := range evidence {
		if ev.HasEmbedding() {
			embedded++
		}
	}

	method := "duplicate_content"
	formula := "(max_duplicates - 1) / max(1, n - 1)"
	if len(evidence) < 2 {
		method = "none"
		formula = "n < 2 => 0"
	} else if e.similarity != nil && embedded >= 2 {
		method = "embedding"
		formula = fmt.Sprintf("fraction of embedded pairs with similarity > %.2f", e.cfg.CoordinationThreshold)
	}

	severity := model.SeverityInfo
	if coordination > astroturfCoordinationFloor {
		severity = model.SeverityCritical
	} else if coordination > 0.3 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalCoordination,
		Severity:    severity,
		Description: fmt.Sprintf("Coordination: %.4f (%s)", coordination, method),
		Data: map[string]any{
			"value":    coordination,
			"method":   method,
			"embedded": embedded,
			"formula":  formula,
		},
	}
}

func (e *Engine) temporalSignal(avgWeight float64) model.Signal {
	severity := model.SeverityInfo
	if avgWeight < 0.25 {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalTemporalDecay,
		Severity:    severity,
		Description: fmt.Sprintf("Average recency weight: %.4f (half-life %s)", avgWeight, e.cfg.TemporalHalfLife),
		Data: map[string]any{
			"value":     avgWeight,
			"half_life": e.cfg.TemporalHalfLife.String(),
			"formula":   "2^(-age / half_life)",
		},
	}
}
