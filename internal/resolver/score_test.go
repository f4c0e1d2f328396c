package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainRelevance(t *testing.T) {
	cfg := DefaultScoringConfig()

	t.Run("exact main label scores high", func(t *testing.T) {
		score := cfg.domainRelevance("coldiretti.it", "Coldiretti")
		assert.GreaterOrEqual(t, score, cfg.RelevanceThreshold)
	})

	t.Run("main label outranks subdomain siblings", func(t *testing.T) {
		direct := cfg.domainRelevance("coldiretti.it", "Coldiretti")
		forum := cfg.domainRelevance("forum.coldiretti.it", "Coldiretti")
		assert.Greater(t, direct, forum)
	})

	t.Run("blocklisted hosts never score competitively", func(t *testing.T) {
		blocked := []struct {
			host string
			org  string
		}{
			{"stackoverflow.com", "Stack Overflow"},
			{"quora.com", "Quora"},
			{"reddit.com", "Reddit"},
			{"baidu.com", "Baidu"},
			{"linkedin.com", "Allianz SE"},
			{"forum.coldiretti.it", "Coldiretti"},
		}
		for _, tc := range blocked {
			score := cfg.domainRelevance(tc.host, tc.org)
			assert.Less(t, score, 0.1, "host %s org %s", tc.host, tc.org)
		}
	})

	t.Run("unrelated domain scores near zero", func(t *testing.T) {
		score := cfg.domainRelevance("example.net", "Zurich Insurance Group")
		assert.Less(t, score, cfg.RelevanceThreshold)
	})

	t.Run("corporate suffixes are ignored", func(t *testing.T) {
		withSuffix := cfg.domainRelevance("allianz.de", "Allianz SE")
		bare := cfg.domainRelevance("allianz.de", "Allianz")
		assert.InDelta(t, bare, withSuffix, 0.001)
	})

	t.Run("deep subdomain chains are penalized", func(t *testing.T) {
		shallow := cfg.domainRelevance("shop.acme.com", "Acme Industries")
		deep := cfg.domainRelevance("eu.shop.acme.com", "Acme Industries")
		assert.Greater(t, shallow, deep)
	})
}

func TestIsValidResultURL(t *testing.T) {
	valid := []string{
		"https://www.allianz.com",
		"http://coldiretti.it/chi-siamo",
	}
	for _, u := range valid {
		assert.True(t, isValidResultURL(u), u)
	}

	invalid := []string{
		"javascript:void(0)",
		"/relative/path",
		"https://www.bing.com/search?q=acme",
		"https://example.com/results?page=2",
		"https://example.com/?q=acme",
	}
	for _, u := range invalid {
		assert.False(t, isValidResultURL(u), u)
	}
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, isBlocked("facebook.com"))
	assert.True(t, isBlocked("m.facebook.com"))
	assert.True(t, isBlocked("translate.google.com"))
	assert.True(t, isBlocked("forum.acme.com"))
	assert.False(t, isBlocked("acme.com"))
	assert.False(t, isBlocked("www-stripped.acme.com"))
}

func TestDistinctiveWords(t *testing.T) {
	assert.Equal(t, []string{"zurich", "insurance"}, distinctiveWords("Zurich Insurance Group Ltd"))
	assert.Equal(t, []string{"coldiretti"}, distinctiveWords("Coldiretti"))

	// All-stopword names fall back to the significant words.
	assert.Equal(t, []string{"the", "group"}, distinctiveWords("The Group"))
}

func TestTitleRelevance(t *testing.T) {
	assert.Equal(t, 1.0, titleRelevance("Zurich Insurance Group", "Zurich Insurance Group Ltd"))
	assert.Equal(t, 0.5, titleRelevance("Zurich (city)", "Zurich Insurance"))
	assert.Equal(t, 0.0, titleRelevance("Unrelated Article", "Coldiretti"))
}
