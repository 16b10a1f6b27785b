// Package authority infers an authority weight from where evidence was found.
package authority

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/distrust/internal/model"
)

// Tier is a coarse authority class for a source
type Tier int

const (
	TierTertiary Tier = iota
	TierSecondary
	TierPrimary
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	default:
		return "tertiary"
	}
}

// Classifier maps URLs to tiers and tiers to authority weights
type Classifier struct {
	config       *model.AuthorityConfig
	exact        map[string]Tier
	primary      []string
	secondary    []string
	pathPatterns []compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    Tier
}

// NewClassifier creates a classifier. A nil config uses the built-in tiers.
// Path patterns that fail to compile are skipped.
func NewClassifier(config *model.AuthorityConfig) *Classifier {
	if config == nil {
		defaults := model.DefaultAuthorityConfig()
		config = &defaults
	}

	c := &Classifier{
		config:    config,
		exact:     make(map[string]Tier, len(config.DomainTiers)),
		primary:   normalizeDomains(config.PrimaryDomains),
		secondary: normalizeDomains(config.SecondaryDomains),
	}

	for _, dt := range config.DomainTiers {
		c.exact[strings.ToLower(strings.TrimSpace(dt.Domain))] = ParseTier(dt.Tier)
	}

	for _, p := range config.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		c.pathPatterns = append(c.pathPatterns, compiledPattern{
			pattern: re,
			tier:    ParseTier(p.Tier),
		})
	}

	return c
}

// Classify returns the tier of rawURL. Anything unparseable is tertiary.
func (c *Classifier) Classify(rawURL string) Tier {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return TierTertiary
	}

	host := strings.ToLower(parsed.Hostname())

	if tier, ok := c.exact[host]; ok {
		return tier
	}

	if matchesDomain(host, c.primary) {
		return TierPrimary
	}
	if matchesDomain(host, c.secondary) {
		return TierSecondary
	}

	for _, cp := range c.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".ac.uk") {
		return TierPrimary
	}

	return TierTertiary
}

// Weight returns the authority weight of rawURL's tier
func (c *Classifier) Weight(rawURL string) float64 {
	return c.TierWeight(c.Classify(rawURL))
}

// TierWeight returns the configured weight for tier
func (c *Classifier) TierWeight(tier Tier) float64 {
	w := c.config.Weights
	switch tier {
	case TierPrimary:
		return w.Primary
	case TierSecondary:
		return w.Secondary
	default:
		return w.Tertiary
	}
}

// ParseTier converts "primary", "secondary", "tertiary" or 1-3 to a Tier.
// Unknown values are tertiary.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "1":
		return TierPrimary
	case "secondary", "2":
		return TierSecondary
	default:
		return TierTertiary
	}
}

func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
