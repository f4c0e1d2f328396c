package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

// minContentLength is the shortest text considered a successful
// extraction. Anything below this is noise.
const minContentLength = 50

// Config controls extraction behavior.
type Config struct {
	// UserAgent identifies the extractor to target sites.
	UserAgent string `mapstructure:"user_agent"`

	// Timeout bounds each page fetch.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxContentLength caps extracted text before classification.
	MaxContentLength int `mapstructure:"max_content_length"`
}

// DefaultConfig returns extraction defaults matching production use.
func DefaultConfig() Config {
	return Config{
		UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		Timeout:          15 * time.Second,
		MaxContentLength: maxContentLength,
	}
}

// Extractor pulls descriptive text about an organization from a resolved
// URL. Wikipedia pages get structured extraction, everything else goes
// through the generic website path.
type Extractor struct {
	cfg    Config
	client *http.Client
	log    logger.Interface
}

// New creates an Extractor using the given HTTP client for Wikipedia
// fetches. Generic website crawling manages its own transport.
func New(cfg Config, client *http.Client, log logger.Interface) *Extractor {
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = maxContentLength
	}
	return &Extractor{cfg: cfg, client: client, log: log.WithComponent("extractor")}
}

// Extract fetches the page at rawURL and returns cleaned descriptive
// content. It fails when the fetch fails or when the page yields less
// than the minimum useful text.
func (e *Extractor) Extract(ctx context.Context, rawURL, orgName string) (*domain.ExtractedContent, error) {
	log := e.log.WithOrganization(orgName)

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	var content *domain.ExtractedContent
	if isWikipediaHost(parsed.Host) {
		log.Debug("Extracting from Wikipedia", "url", rawURL)
		content, err = e.extractWikipedia(ctx, rawURL)
	} else {
		log.Debug("Extracting from website", "url", rawURL)
		content, err = e.extractWebsite(ctx, parsed)
	}
	if err != nil {
		return nil, err
	}

	content.Text = LimitContent(CleanText(content.Text), e.cfg.MaxContentLength)
	content.SourceURL = rawURL

	if chars := utf8.RuneCountInString(content.Text); chars < minContentLength {
		return nil, fmt.Errorf("extracted %d chars from %s: %w",
			chars, rawURL, domain.ErrContentTooShort)
	}

	if !IsRelevant(content.Text, content.Title, orgName) {
		log.Warn("Extracted content does not mention the organization", "url", rawURL)
	}

	log.Info("Content extracted",
		"source", string(content.SourceType),
		"chars", utf8.RuneCountInString(content.Text))
	return content, nil
}

func isWikipediaHost(host string) bool {
	host = strings.ToLower(host)
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}
