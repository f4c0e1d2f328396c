package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxContentLength caps the text handed to the classifier.
const maxContentLength = 2000

// relevanceKeywords mark sentences worth keeping when content must be
// truncated.
var relevanceKeywords = []string{
	"company", "organization", "business", "industry", "founded", "headquarters",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// keptPunctuation is the punctuation preserved by CleanText.
var keptPunctuation = map[rune]struct{}{
	'-': {}, '.': {}, ',': {}, ';': {}, ':': {}, '?': {}, '!': {},
	'(': {}, ')': {}, '[': {}, ']': {}, '{': {}, '}': {}, '"': {}, '\'': {},
}

// CleanText normalizes extracted text: whitespace runs collapse to single
// spaces and characters outside letters, digits and basic punctuation are
// dropped. Accented characters survive untouched.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			if _, keep := keptPunctuation[r]; keep {
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		}
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(b.String(), " "))
}

// LimitContent truncates text to maxLen characters, keeping sentences that
// mention organizational facts ahead of the rest. Sentence order within
// each group is preserved. When not even one sentence fits, the text is
// cut mid-sentence rather than returned empty. Lengths count runes, not
// bytes: accented text must not get a smaller budget.
func LimitContent(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	sentences := strings.Split(text, ".")
	var relevant, other []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if containsKeyword(s) {
			relevant = append(relevant, s)
		} else {
			other = append(other, s)
		}
	}

	var b strings.Builder
	used := 0
	for _, s := range append(relevant, other...) {
		runeCount := utf8.RuneCountInString(s)
		if used+runeCount+2 > maxLen {
			break
		}
		b.WriteString(s)
		b.WriteString(". ")
		used += runeCount + 2
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		runes := []rune(text)
		if len(runes) > maxLen {
			runes = runes[:maxLen]
		}
		result = string(runes)
	}
	return result
}

func containsKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range relevanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
