package cmd

import (
	"fmt"

	"github.com/chsoares/org-classifier/internal/cache"
	"github.com/chsoares/org-classifier/internal/classifier"
	"github.com/chsoares/org-classifier/internal/config"
	"github.com/chsoares/org-classifier/internal/engine"
	"github.com/chsoares/org-classifier/internal/extractor"
	"github.com/chsoares/org-classifier/internal/httpx"
	"github.com/chsoares/org-classifier/internal/logger"
	"github.com/chsoares/org-classifier/internal/resolver"
)

// deps bundles everything a command needs after wiring.
type deps struct {
	cfg    *config.Config
	log    logger.Interface
	store  cache.Store
	engine *engine.Engine
	api    *classifier.Client
}

// buildLogger creates the application logger from configuration.
func buildLogger(cfg *config.Config) (logger.Interface, error) {
	return logger.New(&logger.Config{
		Level:       logger.Level(cfg.Log.Level),
		Development: cfg.Log.Development,
		Encoding:    cfg.Log.Encoding,
		OutputPaths: logger.DefaultOutputPaths,
	})
}

// buildStore creates the disk cache, or nil when caching is disabled.
func buildStore(cfg *config.Config, log logger.Interface) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	return cache.NewDiskStore(cfg.Cache.Dir, log)
}

// buildDeps wires the full pipeline from configuration.
func buildDeps() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := buildStore(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	httpClient := httpx.NewClient(&httpx.ClientConfig{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	})

	api, err := classifier.NewClient(cfg.Classifier, httpClient, log)
	if err != nil {
		return nil, err
	}

	eng := engine.New(
		resolver.New(cfg.Resolver, httpClient, log),
		extractor.New(cfg.Extractor, httpClient, log),
		classifier.New(api, log),
		store,
		log,
	)

	return &deps{cfg: cfg, log: log, store: store, engine: eng, api: api}, nil
}

// buildCacheDeps wires only what cache commands need, skipping the API
// client so they work without credentials.
func buildCacheDeps() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := cache.NewDiskStore(cfg.Cache.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &deps{cfg: cfg, log: log, store: store}, nil
}
