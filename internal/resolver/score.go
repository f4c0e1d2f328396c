package resolver

import (
	"net/url"
	"strings"
)

// ScoringConfig holds the tunable constants of domain relevance scoring.
// The defaults reflect tuning against real search results, not optimal
// values.
type ScoringConfig struct {
	// RelevanceThreshold is the minimum title or domain score considered a
	// confident match.
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`

	// ProbeSkipThreshold is the domain score above which the reachability
	// probe is skipped.
	ProbeSkipThreshold float64 `mapstructure:"probe_skip_threshold"`

	// BlocklistPenalty multiplies the score of blocklisted domains.
	BlocklistPenalty float64 `mapstructure:"blocklist_penalty"`

	// ExactMatchWeight scores an organization word equal to the main domain
	// label.
	ExactMatchWeight float64 `mapstructure:"exact_match_weight"`

	// PartialMatchWeight scores a word contained in the main domain label.
	PartialMatchWeight float64 `mapstructure:"partial_match_weight"`

	// SubdomainMatchWeight scores a word found only in subdomain labels.
	SubdomainMatchWeight float64 `mapstructure:"subdomain_match_weight"`

	// SimpleDomainBonus multiplies scores of domains with no extra
	// subdomains.
	SimpleDomainBonus float64 `mapstructure:"simple_domain_bonus"`

	// DeepDomainPenalty multiplies scores of domains with two or more
	// subdomain labels.
	DeepDomainPenalty float64 `mapstructure:"deep_domain_penalty"`

	// SoleWordBonus multiplies the score when a single distinctive word
	// matches the main label of a domain on a recognized TLD.
	SoleWordBonus float64 `mapstructure:"sole_word_bonus"`
}

// DefaultScoringConfig returns the scoring constants used in production.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RelevanceThreshold:   0.5,
		ProbeSkipThreshold:   0.7,
		BlocklistPenalty:     0.1,
		ExactMatchWeight:     0.9,
		PartialMatchWeight:   0.6,
		SubdomainMatchWeight: 0.3,
		SimpleDomainBonus:    1.2,
		DeepDomainPenalty:    0.8,
		SoleWordBonus:        1.3,
	}
}

// blockedDomains are aggregator, social, Q&A and search-infrastructure
// hosts that never represent an organization's own website.
var blockedDomains = []string{
	"facebook.com", "instagram.com", "twitter.com", "x.com",
	"linkedin.com", "youtube.com", "tiktok.com", "pinterest.com",
	"reddit.com", "stackoverflow.com", "superuser.com", "quora.com",
	"baidu.com", "zhihu.com", "medium.com", "wordpress.com",
	"blogspot.com", "yelp.com", "yellowpages.com", "zoominfo.com",
	"crunchbase.com", "bloomberg.com", "google.com", "bing.com",
	"yahoo.com", "duckduckgo.com", "amazon.com", "ebay.com",
	"alibaba.com", "webcache.googleusercontent.com",
	"translate.google.com", "archive.org",
}

// blockedLabels are subdomain labels that indicate community or derived
// content rather than the organization itself.
var blockedLabels = map[string]struct{}{
	"forum": {}, "forums": {}, "community": {}, "discuss": {},
	"answers": {}, "tieba": {}, "zhidao": {}, "translate": {},
	"webcache": {}, "cached": {},
}

// badURLPatterns mark search-engine artifacts that are not real result
// links.
var badURLPatterns = []string{"/search?", "/q=", "/query=", "/results?"}

// recognizedTLDs qualify a domain for the sole-word bonus.
var recognizedTLDs = map[string]struct{}{
	"com": {}, "org": {}, "net": {}, "io": {}, "co": {}, "gov": {},
	"edu": {}, "it": {}, "de": {}, "fr": {}, "es": {}, "nl": {},
	"ch": {}, "uk": {}, "br": {}, "jp": {}, "us": {}, "ca": {},
	"au": {}, "se": {},
}

// hostOf extracts the lowercase host from a raw URL, stripping any
// leading www label.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// isBlocked reports whether the host matches a blocklisted domain or
// carries a blocklisted subdomain label.
func isBlocked(host string) bool {
	for _, blocked := range blockedDomains {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}

	labels := strings.Split(host, ".")
	if len(labels) > 2 {
		for _, label := range labels[:len(labels)-2] {
			if _, ok := blockedLabels[label]; ok {
				return true
			}
		}
	}
	return false
}

// isValidResultURL filters out search-engine artifacts and malformed
// links before scoring.
func isValidResultURL(rawURL string) bool {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, pattern := range badURLPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return hostOf(rawURL) != ""
}

// domainRelevance scores how likely a host is the organization's own
// website, in [0, 1]. Words matching the main domain label weigh more than
// subdomain matches, simple domains are rewarded and deep subdomain chains
// penalized. Blocklisted hosts are scored below 0.1 so they never win.
func (c ScoringConfig) domainRelevance(host, orgName string) float64 {
	words := distinctiveWords(orgName)
	if host == "" || len(words) == 0 {
		return 0
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return 0
	}
	mainLabel := labels[len(labels)-2]
	tld := labels[len(labels)-1]
	subLabels := labels[:len(labels)-2]
	subdomain := strings.Join(subLabels, ".")

	var total float64
	for _, word := range words {
		switch {
		case mainLabel == word:
			total += c.ExactMatchWeight
		case strings.Contains(mainLabel, word):
			total += c.PartialMatchWeight
		case strings.Contains(subdomain, word):
			total += c.SubdomainMatchWeight
		}
	}
	score := total / float64(len(words))

	if isBlocked(host) {
		return score * c.BlocklistPenalty
	}

	switch {
	case len(subLabels) == 0:
		score *= c.SimpleDomainBonus
	case len(subLabels) >= 2:
		score *= c.DeepDomainPenalty
	}

	if len(subLabels) == 0 && len(words) == 1 && strings.Contains(mainLabel, words[0]) {
		if _, ok := recognizedTLDs[tld]; ok {
			score *= c.SoleWordBonus
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}
