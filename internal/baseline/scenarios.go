package baseline

import (
	"time"

	"github.com/ppiankov/distrust/internal/model"
)

// DefaultScenarios returns the illustrative comparison set, timestamped
// relative to now
func DefaultScenarios(now time.Time) []Scenario {
	ev := func(content string, weight float64, sourceID string, age time.Duration) model.Evidence {
		return model.Evidence{
			Content:         content,
			AuthorityWeight: weight,
			Timestamp:       now.Add(-age),
			SourceID:        sourceID,
		}
	}

	scenarios := []Scenario{
		{
			Name: "Government press release (single coordinated source)",
			Evidence: []model.Evidence{
				ev("Official statement", 0.95, "gov", 0),
				ev("Same statement", 0.95, "gov", 0),
				ev("Repeated again", 0.95, "gov", 0),
			},
			Authority: 0.95,
			Entropy:   0,
		},
		{
			Name: "Media echo chamber (5 outlets, same story)",
			Evidence: []model.Evidence{
				ev("Breaking news", 0.80, "cnn", 0),
				ev("Breaking news", 0.80, "msnbc", 0),
				ev("Breaking news", 0.80, "nyt", 0),
				ev("Breaking news", 0.80, "wapo", 0),
				ev("Breaking news", 0.80, "abc", 0),
			},
			Authority: 0.80,
			Entropy:   1,
		},
		{
			Name: "Independent researchers (diverse sources)",
			Evidence: []model.Evidence{
				ev("Study 1", 0.20, "researcher_a", 0),
				ev("Study 2", 0.30, "researcher_b", 0),
				ev("Study 3", 0.15, "researcher_c", 0),
				ev("Study 4", 0.25, "researcher_d", 0),
			},
			Authority: 0.225,
			Entropy:   1,
		},
		{
			Name: "Astroturfed campaign (identical wording)",
			Evidence: []model.Evidence{
				ev("I love product X!", 0.1, "user_1", 0),
				ev("I love product X!", 0.1, "user_2", 0),
				ev("I love product X!", 0.1, "user_3", 0),
				ev("I love product X!", 0.1, "user_4", 0),
			},
			Authority: 0.1,
			Entropy:   1,
		},
		{
			Name: "Old government claim vs recent evidence",
			Evidence: []model.Evidence{
				ev("Old claim", 0.9, "gov_old", 365*24*time.Hour),
				ev("Recent study", 0.3, "researcher_new", 0),
			},
			Authority: 0.6,
			Entropy:   1,
		},
	}

	for i := range scenarios {
		scenarios[i].Now = now
	}
	return scenarios
}
