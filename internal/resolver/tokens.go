package resolver

import "strings"

// minTokenLen is the minimum word length considered significant.
const minTokenLen = 3

// stopwords are corporate suffixes and connectors that carry no identity.
var stopwords = map[string]struct{}{
	"ltd": {}, "inc": {}, "corp": {}, "corporation": {}, "company": {},
	"group": {}, "limited": {}, "co": {}, "llc": {}, "se": {}, "sa": {},
	"ag": {}, "gmbh": {}, "bv": {}, "nv": {}, "spa": {}, "srl": {},
	"the": {}, "and": {}, "of": {}, "for": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "by": {}, "with": {},
}

// distinctiveWords tokenizes an organization name into significant lowercase
// words: longer than two characters with the corporate stoplist removed.
// Falls back to all significant words when the stoplist removes everything.
func distinctiveWords(orgName string) []string {
	var all, distinctive []string
	for _, word := range strings.Fields(strings.ToLower(orgName)) {
		if len(word) < minTokenLen {
			continue
		}
		all = append(all, word)
		if _, stop := stopwords[word]; !stop {
			distinctive = append(distinctive, word)
		}
	}

	if len(distinctive) > 0 {
		return distinctive
	}
	return all
}

// titleRelevance scores how well a Wikipedia title matches an organization
// name: the fraction of distinctive words appearing in the title.
func titleRelevance(title, orgName string) float64 {
	words := distinctiveWords(orgName)
	if len(words) == 0 || title == "" {
		return 0
	}

	titleLower := strings.ToLower(title)
	matches := 0
	for _, word := range words {
		if strings.Contains(titleLower, word) {
			matches++
		}
	}

	return float64(matches) / float64(len(words))
}

// isTitleRelevant applies the relevance threshold: at least half the words
// match, or an exact single-word match.
func (r *Resolver) isTitleRelevant(title, orgName string) bool {
	words := distinctiveWords(orgName)
	if len(words) == 0 {
		return false
	}

	score := titleRelevance(title, orgName)
	if len(words) == 1 {
		return score >= 1
	}
	return score >= r.cfg.Scoring.RelevanceThreshold
}
