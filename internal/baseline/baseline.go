// Package baseline runs the single-factor log formula the engine replaced
// next to the engine itself, so the two can be compared on the same inputs.
package baseline

import (
	"math"
	"time"

	"github.com/ppiankov/distrust/internal/model"
	"github.com/ppiankov/distrust/internal/score"
)

const logEpsilon = 1e-8

// Roemmele returns alpha·(ln(1-w+ε) + entropy)². Unlike the engine it is
// unbounded and only sees the average authority and a caller-supplied
// entropy, so coordinated sources and recency are invisible to it.
func Roemmele(authorityWeight, entropy, alpha float64) float64 {
	d := math.Log(1-authorityWeight+logEpsilon) + entropy
	return alpha * d * d
}

// Scenario is one named evidence list with the inputs the baseline needs
type Scenario struct {
	Name         string
	Evidence     []model.Evidence
	Verification model.Verification
	Now          time.Time

	// Authority and Entropy feed the baseline formula only
	Authority float64
	Entropy   float64
}

// FromEvidenceSet derives a scenario from a loaded set, using the mean
// authority weight and the measured provenance entropy as baseline inputs
func FromEvidenceSet(name string, set *model.EvidenceSet) Scenario {
	return Scenario{
		Name:         name,
		Evidence:     set.Evidence,
		Verification: set.Verification(),
		Now:          set.ReferenceTime(),
		Authority:    meanAuthority(set.Evidence),
		Entropy:      score.ProvenanceEntropy(set.Evidence),
	}
}

// Row is the comparison of one scenario
type Row struct {
	Name       string             `json:"name"`
	Baseline   float64            `json:"baseline"`
	Score      float64            `json:"distrust_score"`
	Verdict    model.Verdict      `json:"verdict"`
	Override   bool               `json:"override"`
	Components map[string]float64 `json:"components"`
}

// Compare scores every scenario with both the baseline and the engine.
// The baseline uses the engine's alpha.
func Compare(engine *score.Engine, scenarios []Scenario) []Row {
	alpha := engine.Config().Alpha

	rows := make([]Row, 0, len(scenarios))
	for _, sc := range scenarios {
		result := engine.Compute(sc.Evidence, sc.Verification, sc.Now)
		rows = append(rows, Row{
			Name:       sc.Name,
			Baseline:   Roemmele(sc.Authority, sc.Entropy, alpha),
			Score:      result.DistrustScore,
			Verdict:    result.Verdict,
			Override:   result.Override,
			Components: result.Components,
		})
	}
	return rows
}

func meanAuthority(evidence []model.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}
	var sum float64
	for _, ev := range evidence {
		sum += ev.AuthorityWeight
	}
	return sum / float64(len(evidence))
}
