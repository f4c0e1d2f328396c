package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/chsoares/org-classifier/internal/domain"
)

// maxAboutChars caps how much about-page text is appended to the main
// page content.
const maxAboutChars = 800

// contentSelectors locate the descriptive body of a generic website, in
// priority order.
var contentSelectors = []string{
	"main", "article", ".content", ".main-content", ".about", ".company",
	".overview", ".description", "#about", "#company", "#overview", "#main",
}

// aboutKeywords match about-page links across the languages the source
// data covers.
var aboutKeywords = []string{
	"about", "chi siamo", "azienda", "quienes somos", "empresa", "sobre",
	"über uns", "unternehmen", "à propos", "qui sommes", "company", "profile",
}

// websitePage accumulates fragments while the collector walks the site.
type websitePage struct {
	mu       sync.Mutex
	title    string
	meta     string
	main     []string
	about    []string
	visited  bool
	aboutHit bool
}

// extractWebsite crawls the organization's website: the landing page
// plus at most one hop into an about page on the same host.
func (e *Extractor) extractWebsite(ctx context.Context, target *url.URL) (*domain.ExtractedContent, error) {
	host := strings.TrimPrefix(strings.ToLower(target.Hostname()), "www.")

	c := colly.NewCollector(
		colly.UserAgent(e.cfg.UserAgent),
		colly.MaxDepth(2),
		colly.AllowedDomains(host, "www."+host),
	)
	c.SetRequestTimeout(e.cfg.Timeout)

	page := &websitePage{}
	var lastErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnError(func(_ *colly.Response, err error) {
		lastErr = err
	})

	c.OnHTML("html", func(el *colly.HTMLElement) {
		page.mu.Lock()
		defer page.mu.Unlock()

		if el.Request.Depth > 1 {
			page.about = append(page.about, selectContent(el.DOM))
			return
		}

		page.visited = true
		page.title = pageTitle(el.DOM)
		page.meta = el.DOM.Find(`meta[name="description"]`).AttrOr("content", "")
		page.main = append(page.main, selectContent(el.DOM))

		if href := aboutLink(el.DOM); href != "" && !page.aboutHit {
			page.aboutHit = true
			el.Request.Visit(href)
		}
	})

	if err := c.Visit(target.String()); err != nil {
		return nil, fmt.Errorf("visiting %s: %w", target, err)
	}
	c.Wait()

	page.mu.Lock()
	defer page.mu.Unlock()

	if !page.visited {
		if lastErr != nil {
			return nil, fmt.Errorf("fetching %s: %w", target, lastErr)
		}
		return nil, fmt.Errorf("no page content at %s", target)
	}

	return &domain.ExtractedContent{
		Title:      page.title,
		Text:       page.assemble(),
		SourceType: domain.SourceWebsite,
	}, nil
}

// assemble joins the collected fragments: main content first, then a
// capped slice of the about page, then the meta description.
func (p *websitePage) assemble() string {
	var parts []string
	for _, m := range p.main {
		if m != "" {
			parts = append(parts, m)
		}
	}

	aboutText := strings.TrimSpace(strings.Join(p.about, " "))
	if aboutText != "" {
		runes := []rune(aboutText)
		if len(runes) > maxAboutChars {
			runes = runes[:maxAboutChars]
		}
		parts = append(parts, string(runes))
	}

	if p.meta != "" {
		parts = append(parts, p.meta)
	}
	return strings.Join(parts, " ")
}

// pageTitle prefers the first h1 over the document title.
func pageTitle(doc *goquery.Selection) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// selectContent returns the text of the first content selector yielding
// substantial text, falling back to the whole body.
func selectContent(doc *goquery.Selection) string {
	for _, selector := range contentSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(text) >= minParagraphLen {
			return text
		}
	}
	return strings.TrimSpace(doc.Find("body").First().Text())
}

// aboutLink finds the first same-site link whose text or path looks like
// an about page.
func aboutLink(doc *goquery.Selection) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return true
		}

		label := strings.ToLower(strings.TrimSpace(a.Text()) + " " + href)
		for _, kw := range aboutKeywords {
			if strings.Contains(label, kw) {
				found = href
				return false
			}
		}
		return true
	})
	return found
}
