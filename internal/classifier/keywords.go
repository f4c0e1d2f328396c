package classifier

import "strings"

// insuranceKeywords are strong lexical signals across the languages seen
// in the source data.
var insuranceKeywords = []string{
	"insurance", "insurer", "reinsurance", "underwriting", "actuarial",
	"policyholder", "assicurazioni", "assicurativo", "seguros",
	"versicherung", "assurance", "mutuelle",
}

// keywordHitThreshold is the number of distinct keyword hits treated as
// a confident lexical signal.
const keywordHitThreshold = 2

// KeywordVerdict gives a cheap lexical opinion on the content: true with
// enough insurance terms, false with none at all, nil in between. Used
// to flag disagreements with the model, never to override it.
func KeywordVerdict(content string) *bool {
	lower := strings.ToLower(content)
	hits := 0
	for _, kw := range insuranceKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}

	switch {
	case hits >= keywordHitThreshold:
		return boolPtr(true)
	case hits == 0:
		return boolPtr(false)
	}
	return nil
}
