// Package engine coordinates the three-stage pipeline and makes runs
// idempotent through the cache.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chsoares/org-classifier/internal/cache"
	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

// WebsiteResolver finds the most likely website for an organization.
type WebsiteResolver interface {
	Resolve(ctx context.Context, orgName string) domain.WebsiteResolution
}

// ContentExtractor pulls descriptive text from a resolved URL.
type ContentExtractor interface {
	Extract(ctx context.Context, rawURL, orgName string) (*domain.ExtractedContent, error)
}

// Classifier decides whether content describes an insurance organization.
type Classifier interface {
	Classify(ctx context.Context, orgName, content string) (*bool, error)
}

// classificationRecord is the cached payload of the classification stage.
type classificationRecord struct {
	IsInsurance bool `json:"is_insurance"`
}

// Engine runs the pipeline for single organizations. Each stage consults
// its cache namespace before doing work and stores successful outcomes,
// so interrupted runs resume where they stopped.
type Engine struct {
	resolver   WebsiteResolver
	extractor  ContentExtractor
	classifier Classifier
	store      cache.Store
	log        logger.Interface
	useCache   bool
}

// New assembles an Engine. A nil store disables caching entirely.
func New(resolver WebsiteResolver, extractor ContentExtractor, classifier Classifier,
	store cache.Store, log logger.Interface) *Engine {
	return &Engine{
		resolver:   resolver,
		extractor:  extractor,
		classifier: classifier,
		store:      store,
		log:        log.WithComponent("engine"),
		useCache:   store != nil,
	}
}

// Process runs the full pipeline for one organization. The returned
// error is non-nil only for failures that must abort the whole run,
// such as rejected API credentials; every other failure is contained in
// the Result. Panics inside stages are contained the same way.
func (e *Engine) Process(ctx context.Context, orgName string) (result *domain.Result, err error) {
	log := e.log.WithOrganization(orgName)

	if cached := e.cachedResult(orgName); cached != nil {
		log.Debug("Full result served from cache")
		return cached, nil
	}

	started := time.Now()
	result = &domain.Result{
		OrganizationName: orgName,
		SearchMethod:     domain.MethodFailed,
		ProcessedAt:      started.UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Stage panicked", "panic", fmt.Sprint(r))
			result.Success = false
			result.ErrorStage = domain.StageUnexpected
			result.ErrorMessage = fmt.Sprintf("panic: %v", r)
			err = nil
		}
	}()

	resolution, ok := e.resolveWebsite(ctx, orgName, result)
	if !ok {
		return result, nil
	}

	content, ok := e.extractContent(ctx, orgName, resolution, result)
	if !ok {
		return result, nil
	}

	verdict, fatal := e.classify(ctx, orgName, content, result)
	if fatal != nil {
		return nil, fatal
	}
	if verdict == nil {
		return result, nil
	}

	result.Success = true
	result.IsInsurance = verdict
	e.cachePut(cache.NamespaceFullResult, orgName, result)

	log.WithDuration(time.Since(started)).Info("Organization processed",
		"is_insurance", *verdict,
		"method", string(result.SearchMethod))
	return result, nil
}

// resolveWebsite runs stage one and records its outcome on the result.
func (e *Engine) resolveWebsite(ctx context.Context, orgName string, result *domain.Result) (domain.WebsiteResolution, bool) {
	started := time.Now()
	defer func() { result.Timing.WebsiteLookup = time.Since(started).Seconds() }()

	var resolution domain.WebsiteResolution
	if e.cacheGet(cache.NamespaceWebsiteLookup, orgName, &resolution) && resolution.Found() {
		result.WebsiteURL = resolution.URL
		result.SearchMethod = resolution.Method
		return resolution, true
	}

	resolution = e.resolver.Resolve(ctx, orgName)
	result.SearchMethod = resolution.Method

	if !resolution.Found() {
		result.ErrorStage = domain.StageWebsiteLookup
		result.ErrorMessage = domain.ErrNoWebsiteFound.Error()
		e.log.WithOrganization(orgName).
			WithStage(string(domain.StageWebsiteLookup)).
			Warn("Stage failed", "error", result.ErrorMessage)
		return resolution, false
	}

	result.WebsiteURL = resolution.URL
	e.cachePut(cache.NamespaceWebsiteLookup, orgName, resolution)
	return resolution, true
}

// extractContent runs stage two and records its outcome on the result.
func (e *Engine) extractContent(ctx context.Context, orgName string, resolution domain.WebsiteResolution, result *domain.Result) (*domain.ExtractedContent, bool) {
	started := time.Now()
	defer func() { result.Timing.ContentExtraction = time.Since(started).Seconds() }()

	var cached domain.ExtractedContent
	if e.cacheGet(cache.NamespaceContentExtraction, orgName, &cached) && cached.Text != "" {
		result.ContentSourceType = cached.SourceType
		result.ContentTitle = cached.Title
		return &cached, true
	}

	content, err := e.extractor.Extract(ctx, resolution.URL, orgName)
	if err != nil {
		result.ErrorStage = domain.StageContentExtraction
		result.ErrorMessage = err.Error()
		e.log.WithOrganization(orgName).
			WithStage(string(domain.StageContentExtraction)).
			WithError(err).
			Warn("Stage failed")
		return nil, false
	}

	result.ContentSourceType = content.SourceType
	result.ContentTitle = content.Title
	e.cachePut(cache.NamespaceContentExtraction, orgName, content)
	return content, true
}

// classify runs stage three. It returns a fatal error only when the run
// must abort; stage-level failures are recorded on the result and return
// a nil verdict.
func (e *Engine) classify(ctx context.Context, orgName string, content *domain.ExtractedContent, result *domain.Result) (*bool, error) {
	started := time.Now()
	defer func() { result.Timing.Classification = time.Since(started).Seconds() }()

	var record classificationRecord
	if e.cacheGet(cache.NamespaceClassification, orgName, &record) {
		verdict := record.IsInsurance
		return &verdict, nil
	}

	verdict, err := e.classifier.Classify(ctx, orgName, content.Text)
	if err != nil {
		if domain.IsFatalConfig(err) {
			return nil, err
		}
		result.ErrorStage = domain.StageClassification
		result.ErrorMessage = err.Error()
		return nil, nil
	}
	if verdict == nil {
		result.ErrorStage = domain.StageClassification
		result.ErrorMessage = "content not classifiable"
		return nil, nil
	}

	e.cachePut(cache.NamespaceClassification, orgName, classificationRecord{IsInsurance: *verdict})
	return verdict, nil
}

// cachedResult returns the fully processed record when one exists. The
// stage timings are zeroed so a cache hit reports what this call cost,
// not what the original run cost.
func (e *Engine) cachedResult(orgName string) *domain.Result {
	var result domain.Result
	if e.cacheGet(cache.NamespaceFullResult, orgName, &result) && result.Success {
		result.Timing = domain.StageTiming{}
		return &result
	}
	return nil
}

func (e *Engine) cacheGet(ns cache.Namespace, orgName string, out any) bool {
	if !e.useCache {
		return false
	}
	hit, err := e.store.Get(ns, orgName, out)
	if err != nil {
		e.log.Warn("Cache read failed", "namespace", string(ns), "error", err.Error())
		return false
	}
	return hit
}

func (e *Engine) cachePut(ns cache.Namespace, orgName string, payload any) {
	if !e.useCache {
		return
	}
	if err := e.store.Put(ns, orgName, payload); err != nil {
		e.log.Warn("Cache write failed", "namespace", string(ns), "error", err.Error())
	}
}
