package extractor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/retry"
)

const (
	maxIntroParagraphs  = 3
	maxInfoboxFields    = 5
	maxInfoboxValueLen  = 200
	maxSections         = 3
	maxSectionParas     = 2
	maxSectionLen       = 500
	minParagraphLen     = 50
	minSectionParaLen   = 30
)

// infoboxFields is the allowlist of infobox rows worth keeping.
var infoboxFields = map[string]struct{}{
	"type": {}, "industry": {}, "founded": {}, "headquarters": {},
	"founder": {}, "products": {}, "services": {}, "revenue": {},
	"employees": {}, "website": {},
}

// sectionKeywords select article sections that describe what the
// organization does.
var sectionKeywords = []string{"history", "operations", "business", "overview", "activities"}

// extractWikipedia pulls the article title, lead paragraphs, selected
// infobox fields and relevant sections from a Wikipedia article. The
// fetch retries on transient failures and rate limiting.
func (e *Extractor) extractWikipedia(ctx context.Context, pageURL string) (*domain.ExtractedContent, error) {
	var doc *goquery.Document
	err := retry.Do(ctx, retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		IsRetryable:  isRetryableFetch,
	}, func() error {
		var fetchErr error
		doc, fetchErr = e.fetchDocument(ctx, pageURL)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.firstHeading").First().Text())

	var parts []string
	if intro := wikipediaIntro(doc); intro != "" {
		parts = append(parts, intro)
	}
	if infobox := wikipediaInfobox(doc); infobox != "" {
		parts = append(parts, infobox)
	}
	if sections := wikipediaSections(doc); sections != "" {
		parts = append(parts, sections)
	}

	return &domain.ExtractedContent{
		Title:      title,
		Text:       strings.Join(parts, " "),
		SourceType: domain.SourceWikipedia,
	}, nil
}

// fetchDocument fetches and parses one page.
func (e *Extractor) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching wikipedia page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing wikipedia page: %w", err)
	}
	return doc, nil
}

// isRetryableFetch extends the default transient checks with the HTTP
// statuses a fetch can recover from.
func isRetryableFetch(err error) bool {
	if retry.DefaultIsRetryable(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "status 5")
}

// wikipediaIntro returns the first substantial lead paragraphs.
func wikipediaIntro(doc *goquery.Document) string {
	var paras []string
	doc.Find("div.mw-parser-output > p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) >= minParagraphLen {
			paras = append(paras, text)
		}
		return len(paras) < maxIntroParagraphs
	})
	return strings.Join(paras, " ")
}

// wikipediaInfobox renders allowlisted infobox rows as "Label: value"
// pairs. Long values are skipped since they tend to be reference lists.
func wikipediaInfobox(doc *goquery.Document) string {
	var fields []string
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		if label == "" || value == "" || len(value) >= maxInfoboxValueLen {
			return true
		}
		if _, ok := infoboxFields[strings.ToLower(label)]; !ok {
			return true
		}
		fields = append(fields, label+": "+value)
		return len(fields) < maxInfoboxFields
	})
	return strings.Join(fields, ". ")
}

// wikipediaSections collects paragraphs from sections whose headings
// match the keyword list.
func wikipediaSections(doc *goquery.Document) string {
	var sections []string
	doc.Find("h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !sectionHeadingMatches(heading.Text()) {
			return true
		}

		var paras []string
		total := 0
		heading.NextUntil("h2, h3").Filter("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			text := strings.TrimSpace(p.Text())
			if len(text) >= minSectionParaLen && total+len(text) <= maxSectionLen {
				paras = append(paras, text)
				total += len(text)
			}
			return len(paras) < maxSectionParas
		})

		if len(paras) > 0 {
			sections = append(sections, strings.Join(paras, " "))
		}
		return len(sections) < maxSections
	})
	return strings.Join(sections, " ")
}

func sectionHeadingMatches(heading string) bool {
	lower := strings.ToLower(heading)
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
