// Package domain provides domain models used across the application.
package domain

import (
	"time"
)

// SearchMethod identifies how a website was resolved for an organization.
type SearchMethod string

const (
	// MethodWikipedia means the Wikipedia search API returned a relevant hit.
	MethodWikipedia SearchMethod = "wikipedia"
	// MethodSearchEngine means a general web search found a validated candidate.
	MethodSearchEngine SearchMethod = "search_engine"
	// MethodWikipediaFallback means an irrelevant Wikipedia hit was used as a
	// last resort after the search engine found nothing.
	MethodWikipediaFallback SearchMethod = "wikipedia_fallback"
	// MethodFailed means no website could be resolved.
	MethodFailed SearchMethod = "failed"
)

// SourceType identifies the kind of page content was extracted from.
type SourceType string

const (
	// SourceWikipedia is a Wikipedia article page.
	SourceWikipedia SourceType = "wikipedia"
	// SourceWebsite is an organization's own website.
	SourceWebsite SourceType = "website"
)

// Stage identifies a pipeline stage for error reporting.
type Stage string

const (
	// StageWebsiteLookup is the website resolution stage.
	StageWebsiteLookup Stage = "website_lookup"
	// StageContentExtraction is the content extraction stage.
	StageContentExtraction Stage = "content_extraction"
	// StageClassification is the AI classification stage.
	StageClassification Stage = "classification"
	// StageUnexpected marks a failure outside any single stage.
	StageUnexpected Stage = "unexpected"
)

// WebsiteResolution is the outcome of the website lookup stage.
// URL is empty iff Method == MethodFailed.
type WebsiteResolution struct {
	URL    string       `json:"url,omitempty"`
	Method SearchMethod `json:"method"`
}

// Found reports whether a website was resolved.
func (r WebsiteResolution) Found() bool {
	return r.Method != MethodFailed && r.URL != ""
}

// ExtractedContent is the outcome of the content extraction stage.
type ExtractedContent struct {
	Text       string     `json:"text"`
	Title      string     `json:"title"`
	SourceType SourceType `json:"source_type"`
	SourceURL  string     `json:"source_url"`
}

// StageTiming records per-stage durations in seconds.
type StageTiming struct {
	WebsiteLookup     float64 `json:"website_lookup"`
	ContentExtraction float64 `json:"content_extraction"`
	Classification    float64 `json:"classification"`
}

// Result is the complete record produced for one organization.
// Success is true iff all three stages succeeded and IsInsurance is set.
// ErrorStage is set iff Success is false.
type Result struct {
	OrganizationName string `json:"organization_name"`
	Success          bool   `json:"success"`

	IsInsurance *bool `json:"is_insurance,omitempty"`

	WebsiteURL   string       `json:"website_url,omitempty"`
	SearchMethod SearchMethod `json:"search_method"`

	ContentSourceType SourceType `json:"content_source_type,omitempty"`
	ContentTitle      string     `json:"content_title,omitempty"`

	ErrorStage   Stage  `json:"error_stage,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	Timing StageTiming `json:"per_stage_timing"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Classified reports whether the record carries a definite classification.
func (r *Result) Classified() bool {
	return r.IsInsurance != nil
}
