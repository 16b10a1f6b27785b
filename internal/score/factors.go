package score

import (
	"math"
	"time"

	"github.com/ppiankov/distrust/internal/model"
)

// AuthorityFactor maps an authority weight to a distrust contribution in (0,1)
// via a logistic curve centred at 0.5 with steepness 10.
// Higher authority means more distrust: official sources are read as more
// likely to carry one-sided framing.
func AuthorityFactor(weight float64) float64 {
	return 1.0 / (1.0 + math.Exp(-10*(weight-0.5)))
}

// TemporalWeight returns 2^(-age/halfLife). Future timestamps yield weights
// above 1 and are not clamped. A non-positive halfLife disables decay.
func TemporalWeight(ts, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1
	}
	age := now.Sub(ts).Seconds()
	return math.Pow(2, -age/halfLife.Seconds())
}

// ProvenanceEntropy is the Shannon entropy of the source id distribution,
// normalised by log2 of the number of distinct ids. 1.0 means evidence is
// spread evenly over many sources, 0.0 means a single source.
func ProvenanceEntropy(evidence []model.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}

	counts := make(map[string]int)
	for _, ev := range evidence {
		counts[ev.SourceID]++
	}

	total := float64(len(evidence))
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}

	maxEntropy := 1.0
	if len(counts) > 1 {
		maxEntropy = math.Log2(float64(len(counts)))
	}

	return h / maxEntropy
}
