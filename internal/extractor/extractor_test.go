package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

const wikipediaArticle = `<html><body>
<h1 class="firstHeading">Zurich Insurance Group</h1>
<table class="infobox">
<tr><th>Type</th><td>Public</td></tr>
<tr><th>Industry</th><td>Insurance</td></tr>
<tr><th>Founded</th><td>1872</td></tr>
<tr><th>Irrelevant</th><td>Should be skipped</td></tr>
</table>
<div class="mw-parser-output">
<p>Zurich Insurance Group Ltd is a Swiss insurance company headquartered in Zurich, Switzerland.</p>
<p>tiny</p>
<p>The company is Switzerland's largest insurer and operates in more than 200 countries and territories worldwide.</p>
</div>
<h2>History</h2>
<p>The company was founded in 1872 as a reinsurer of marine risks and became independent shortly after.</p>
<h2>Trivia</h2>
<p>This section heading does not match and must not be extracted at all.</p>
</body></html>`

func newTestExtractor() *Extractor {
	client := &http.Client{Timeout: 5 * time.Second}
	return New(DefaultConfig(), client, logger.NewNoOp())
}

func TestExtractWikipedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, wikipediaArticle)
	}))
	defer server.Close()

	e := newTestExtractor()
	content, err := e.extractWikipedia(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Zurich Insurance Group", content.Title)
	assert.Equal(t, domain.SourceWikipedia, content.SourceType)
	assert.Contains(t, content.Text, "Swiss insurance company")
	assert.Contains(t, content.Text, "largest insurer")
	assert.Contains(t, content.Text, "Industry: Insurance")
	assert.Contains(t, content.Text, "founded in 1872")
	assert.NotContains(t, content.Text, "tiny")
	assert.NotContains(t, content.Text, "Should be skipped")
	assert.NotContains(t, content.Text, "must not be extracted")
}

func TestExtractWikipediaHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := newTestExtractor()
	_, err := e.extractWikipedia(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestExtractWebsite(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
<title>Acme Mutual</title>
<meta name="description" content="Acme Mutual protects families since 1950.">
</head><body>
<h1>Acme Mutual</h1>
<main>Acme Mutual is a mutual insurance company offering life and property coverage to members across the country.</main>
<a href="/about">Chi siamo</a>
</body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<main>Founded by farmers in 1950, Acme Mutual remains member-owned and serves half a million policyholders.</main>
</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	e := newTestExtractor()
	content, err := e.Extract(context.Background(), server.URL, "Acme Mutual")
	require.NoError(t, err)

	assert.Equal(t, "Acme Mutual", content.Title)
	assert.Equal(t, domain.SourceWebsite, content.SourceType)
	assert.Equal(t, server.URL, content.SourceURL)
	assert.Contains(t, content.Text, "mutual insurance company")
	assert.Contains(t, content.Text, "member-owned")
	assert.Contains(t, content.Text, "protects families")
}

func TestExtractTooShort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>hi</p></body></html>`)
	}))
	defer server.Close()

	e := newTestExtractor()
	_, err := e.Extract(context.Background(), server.URL, "Acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContentTooShort)
}

func TestExtractTooShortCountsCharacters(t *testing.T) {
	// 30 accented characters are 60 bytes; the minimum-content gate must
	// still reject them.
	short := strings.Repeat("é", 30)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><main>%s</main></body></html>`, short)
	}))
	defer server.Close()

	e := newTestExtractor()
	_, err := e.Extract(context.Background(), server.URL, "Acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContentTooShort)
}

func TestExtractInvalidURL(t *testing.T) {
	e := newTestExtractor()
	_, err := e.Extract(context.Background(), "not a url", "Acme")
	assert.Error(t, err)
}

func TestExtractRespectsContentCap(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += fmt.Sprintf("The company sentence number %d describes the business in detail. ", i)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><main>%s</main></body></html>`, long)
	}))
	defer server.Close()

	e := newTestExtractor()
	content, err := e.Extract(context.Background(), server.URL, "Acme Company")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(content.Text), maxContentLength)
}
