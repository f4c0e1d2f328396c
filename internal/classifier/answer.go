package classifier

import "strings"

// Affirmative and negative answer vocabularies. The model occasionally
// answers in the language of the page content instead of English.
var (
	yesAnswers = map[string]struct{}{
		"yes": {}, "sim": {}, "sí": {}, "si": {}, "oui": {}, "ja": {},
	}
	noAnswers = map[string]struct{}{
		"no": {}, "não": {}, "nao": {}, "non": {}, "nein": {},
	}
)

// ParseAnswer maps a model response to a yes/no verdict. It returns nil
// when the response matches neither vocabulary, which callers treat as
// an unusable answer rather than a negative.
func ParseAnswer(raw string) *bool {
	answer := strings.ToLower(strings.TrimSpace(raw))
	answer = strings.Trim(answer, ".,!?\"' ")

	if _, ok := yesAnswers[answer]; ok {
		return boolPtr(true)
	}
	if _, ok := noAnswers[answer]; ok {
		return boolPtr(false)
	}

	// Verbose models sometimes prefix the verdict ("Yes, because...").
	switch {
	case strings.HasPrefix(answer, "yes"):
		return boolPtr(true)
	case strings.HasPrefix(answer, "no"):
		return boolPtr(false)
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }
