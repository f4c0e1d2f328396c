package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	yes := []string{"Yes", "yes", "YES", "Yes.", " yes ", "Sim", "SIM", "sí", "oui", "ja", "Yes, it is"}
	for _, raw := range yes {
		verdict := ParseAnswer(raw)
		require.NotNil(t, verdict, "raw %q", raw)
		assert.True(t, *verdict, "raw %q", raw)
	}

	no := []string{"No", "no", "No.", "não", "non", "nein", "No, it is not"}
	for _, raw := range no {
		verdict := ParseAnswer(raw)
		require.NotNil(t, verdict, "raw %q", raw)
		assert.False(t, *verdict, "raw %q", raw)
	}

	unparseable := []string{"Maybe", "I cannot determine that", "", "42", "Possibly yes"}
	for _, raw := range unparseable {
		assert.Nil(t, ParseAnswer(raw), "raw %q", raw)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Acme Mutual", "Acme sells life insurance.")

	assert.Contains(t, prompt, `"Acme Mutual"`)
	assert.Contains(t, prompt, "Acme sells life insurance.")
	assert.Contains(t, prompt, `Respond with ONLY "Yes" or "No"`)
	// The prompt must keep the verdict binary regardless of content.
	assert.Equal(t, 1, strings.Count(prompt, "Acme sells life insurance."))
}

func TestKeywordVerdict(t *testing.T) {
	strong := KeywordVerdict("A leading insurance and reinsurance provider.")
	require.NotNil(t, strong)
	assert.True(t, *strong)

	none := KeywordVerdict("A bakery selling bread and pastries.")
	require.NotNil(t, none)
	assert.False(t, *none)

	assert.Nil(t, KeywordVerdict("An insurance adjacent consultancy."))
}
