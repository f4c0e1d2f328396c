package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

// maxSearchResults caps how many search-engine links are scored per query.
const maxSearchResults = 5

// resultSelectors locate result links in a search results page, tried in
// order from most to least specific.
var resultSelectors = []string{"li.b_algo h2 a", ".b_algo a", "h2 a"}

// Config controls the resolution endpoints and scoring behavior. The URL
// fields exist so tests can point the resolver at local servers.
type Config struct {
	WikipediaAPIURL string        `mapstructure:"wikipedia_api_url"`
	SearchURL       string        `mapstructure:"search_url"`
	Scoring         ScoringConfig `mapstructure:"scoring"`
}

// DefaultConfig returns the production endpoints and scoring constants.
func DefaultConfig() Config {
	return Config{
		WikipediaAPIURL: "https://en.wikipedia.org/w/api.php",
		SearchURL:       "https://www.bing.com/search",
		Scoring:         DefaultScoringConfig(),
	}
}

// Resolver finds the most likely official website for an organization
// name. It tries Wikipedia first, falls back to web search with domain
// relevance scoring, and finally settles for the Wikipedia page itself.
type Resolver struct {
	cfg    Config
	client *http.Client
	log    logger.Interface
}

// New creates a Resolver with the given HTTP client and logger.
func New(cfg Config, client *http.Client, log logger.Interface) *Resolver {
	return &Resolver{cfg: cfg, client: client, log: log.WithComponent("resolver")}
}

// Resolve runs the lookup chain for an organization name. It never fails
// hard: every step degrades to the next one, and a fully exhausted chain
// returns a resolution with MethodFailed.
func (r *Resolver) Resolve(ctx context.Context, orgName string) domain.WebsiteResolution {
	log := r.log.WithOrganization(orgName)
	log.Debug("Resolving website")

	wikiURL, title, err := r.searchWikipedia(ctx, orgName)
	if err != nil {
		log.Warn("Wikipedia search failed", "error", err.Error())
	}

	if wikiURL != "" && r.isTitleRelevant(title, orgName) {
		log.Info("Resolved via Wikipedia", "url", wikiURL, "title", title)
		return domain.WebsiteResolution{URL: wikiURL, Method: domain.MethodWikipedia}
	}

	if searchHit := r.searchWeb(ctx, orgName); searchHit != "" {
		log.Info("Resolved via web search", "url", searchHit)
		return domain.WebsiteResolution{URL: searchHit, Method: domain.MethodSearchEngine}
	}

	if wikiURL != "" {
		log.Info("Falling back to Wikipedia page", "url", wikiURL, "title", title)
		return domain.WebsiteResolution{URL: wikiURL, Method: domain.MethodWikipediaFallback}
	}

	log.Warn("No website found")
	return domain.WebsiteResolution{Method: domain.MethodFailed}
}

// wikiSearchResponse is the subset of the MediaWiki search API response
// the resolver needs.
type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// searchWikipedia queries the MediaWiki search API and returns the page
// URL and title of the top hit, or empty strings when nothing matches.
func (r *Resolver) searchWikipedia(ctx context.Context, orgName string) (pageURL, title string, err error) {
	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {orgName},
		"srlimit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.cfg.WikipediaAPIURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("building wikipedia request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("querying wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var parsed wikiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decoding wikipedia response: %w", err)
	}

	if len(parsed.Query.Search) == 0 {
		return "", "", nil
	}

	title = parsed.Query.Search[0].Title
	pageURL = "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	return pageURL, title, nil
}

// scoredCandidate pairs a search result URL with its domain relevance.
type scoredCandidate struct {
	url   string
	host  string
	score float64
}

// searchWeb queries the search engine with the quoted organization name,
// scores the result domains and returns the best reachable candidate, or
// an empty string when none qualifies.
func (r *Resolver) searchWeb(ctx context.Context, orgName string) string {
	query := url.Values{"q": {fmt.Sprintf("%q", orgName)}, "count": {"10"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.cfg.SearchURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("Web search failed", "organization", orgName, "error", err.Error())
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Warn("Web search returned non-OK status",
			"organization", orgName, "status", resp.StatusCode)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	candidates := r.scoreResults(doc, orgName)
	for _, candidate := range candidates {
		if candidate.score >= r.cfg.Scoring.ProbeSkipThreshold {
			return candidate.url
		}
		if r.isReachable(ctx, candidate.url) {
			return candidate.url
		}
		r.log.Debug("Candidate unreachable", "url", candidate.url)
	}
	return ""
}

// scoreResults extracts result links from a search page, scores each
// candidate domain and returns them best first. Ties break toward simpler
// domains.
func (r *Resolver) scoreResults(doc *goquery.Document, orgName string) []scoredCandidate {
	seen := make(map[string]struct{})
	var candidates []scoredCandidate

	for _, selector := range resultSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, ok := sel.Attr("href")
			if !ok || !isValidResultURL(href) {
				return true
			}

			host := hostOf(href)
			if _, dup := seen[host]; dup {
				return true
			}
			seen[host] = struct{}{}

			if isBlocked(host) {
				return true
			}
			score := r.cfg.Scoring.domainRelevance(host, orgName)
			candidates = append(candidates, scoredCandidate{url: href, host: host, score: score})
			return len(candidates) < maxSearchResults
		})
		if len(candidates) > 0 {
			break
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return strings.Count(candidates[i].host, ".") < strings.Count(candidates[j].host, ".")
	})
	return candidates
}

// acceptableProbeStatus reports whether a probe response means the site
// exists. Redirects count, and so do 403 and 405 since many sites reject
// automated clients while serving browsers fine.
func acceptableProbeStatus(code int) bool {
	switch code {
	case http.StatusOK,
		http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect,
		http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}

// isReachable probes a URL with HEAD, falling back to GET for servers
// that reject HEAD outright.
func (r *Resolver) isReachable(ctx context.Context, rawURL string) bool {
	if ok, done := r.probe(ctx, http.MethodHead, rawURL); done {
		return ok
	}
	ok, _ := r.probe(ctx, http.MethodGet, rawURL)
	return ok
}

// probe issues a single request. done is false when the transport failed
// in a way worth retrying with a different method.
func (r *Resolver) probe(ctx context.Context, method, rawURL string) (ok, done bool) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return false, true
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return acceptableProbeStatus(resp.StatusCode), true
}
