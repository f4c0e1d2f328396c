package extractor

import "strings"

// IsRelevant reports whether extracted content plausibly describes the
// organization: at least one significant word of the name must appear in
// the text or title. Used as a quality signal, not a hard gate, since
// legal names often differ from trading names.
func IsRelevant(content, title, orgName string) bool {
	haystack := strings.ToLower(content + " " + title)
	for _, word := range strings.Fields(strings.ToLower(orgName)) {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}
