package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

func newTestResolver(t *testing.T, wikiURL, searchURL string) *Resolver {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WikipediaAPIURL = wikiURL
	cfg.SearchURL = searchURL
	client := &http.Client{Timeout: 5 * time.Second}
	return New(cfg, client, logger.NewNoOp())
}

func wikiHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if title == "" {
			fmt.Fprint(w, `{"query":{"search":[]}}`)
			return
		}
		fmt.Fprintf(w, `{"query":{"search":[{"title":%q}]}}`, title)
	}
}

func searchHandler(links ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><ol>")
		for _, link := range links {
			fmt.Fprintf(w, `<li class="b_algo"><h2><a href=%q>result</a></h2></li>`, link)
		}
		fmt.Fprint(w, "</ol></body></html>")
	}
}

func TestResolveViaWikipedia(t *testing.T) {
	wiki := httptest.NewServer(wikiHandler("Zurich Insurance Group"))
	defer wiki.Close()
	search := httptest.NewServer(searchHandler())
	defer search.Close()

	r := newTestResolver(t, wiki.URL, search.URL)
	res := r.Resolve(context.Background(), "Zurich Insurance Group Ltd")

	require.True(t, res.Found())
	assert.Equal(t, domain.MethodWikipedia, res.Method)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Zurich_Insurance_Group", res.URL)
}

func TestResolveFallsBackToSearch(t *testing.T) {
	// The Wikipedia hit is about something unrelated, so the resolver must
	// move on to web search.
	wiki := httptest.NewServer(wikiHandler("List of Italian cheeses"))
	defer wiki.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer site.Close()

	search := httptest.NewServer(searchHandler(site.URL + "/?ref=search"))
	defer search.Close()

	r := newTestResolver(t, wiki.URL, search.URL)
	// Probe always runs here since an httptest host never matches the name.
	res := r.Resolve(context.Background(), "Coldiretti")

	require.True(t, res.Found())
	assert.Equal(t, domain.MethodSearchEngine, res.Method)
}

func TestResolveWikipediaFallback(t *testing.T) {
	// Irrelevant title, empty search results: the Wikipedia page is still
	// better than nothing.
	wiki := httptest.NewServer(wikiHandler("Agriculture in Italy"))
	defer wiki.Close()
	search := httptest.NewServer(searchHandler())
	defer search.Close()

	r := newTestResolver(t, wiki.URL, search.URL)
	res := r.Resolve(context.Background(), "Coldiretti")

	require.True(t, res.Found())
	assert.Equal(t, domain.MethodWikipediaFallback, res.Method)
	assert.Contains(t, res.URL, "en.wikipedia.org/wiki/")
}

func TestResolveExhaustedChain(t *testing.T) {
	wiki := httptest.NewServer(wikiHandler(""))
	defer wiki.Close()
	search := httptest.NewServer(searchHandler())
	defer search.Close()

	r := newTestResolver(t, wiki.URL, search.URL)
	res := r.Resolve(context.Background(), "Nonexistent Org 1234")

	assert.False(t, res.Found())
	assert.Equal(t, domain.MethodFailed, res.Method)
	assert.Empty(t, res.URL)
}

func TestResolveSkipsBlockedResults(t *testing.T) {
	wiki := httptest.NewServer(wikiHandler(""))
	defer wiki.Close()
	search := httptest.NewServer(searchHandler(
		"https://www.linkedin.com/company/acme",
		"https://facebook.com/acme",
	))
	defer search.Close()

	r := newTestResolver(t, wiki.URL, search.URL)
	res := r.Resolve(context.Background(), "Acme")

	assert.Equal(t, domain.MethodFailed, res.Method)
}

func TestResolveSurvivesEndpointErrors(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	r := newTestResolver(t, broken.URL, broken.URL)
	res := r.Resolve(context.Background(), "Acme")

	assert.Equal(t, domain.MethodFailed, res.Method)
}

func TestAcceptableProbeStatus(t *testing.T) {
	for _, code := range []int{200, 301, 302, 303, 307, 308, 403, 405} {
		assert.True(t, acceptableProbeStatus(code), "status %d", code)
	}
	for _, code := range []int{404, 410, 500, 503} {
		assert.False(t, acceptableProbeStatus(code), "status %d", code)
	}
}
