// Package config loads application configuration from files, environment
// variables and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chsoares/org-classifier/internal/classifier"
	"github.com/chsoares/org-classifier/internal/engine"
	"github.com/chsoares/org-classifier/internal/extractor"
	"github.com/chsoares/org-classifier/internal/resolver"
)

// LogConfig controls logging output.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"`
}

// CacheConfig controls the disk cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// HTTPConfig controls the shared HTTP client.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Config is the full application configuration.
type Config struct {
	Log        LogConfig               `mapstructure:"log"`
	Cache      CacheConfig             `mapstructure:"cache"`
	HTTP       HTTPConfig              `mapstructure:"http"`
	Resolver   resolver.Config         `mapstructure:"resolver"`
	Extractor  extractor.Config        `mapstructure:"extractor"`
	Classifier classifier.ClientConfig `mapstructure:"classifier"`
	Batch      engine.BatchConfig      `mapstructure:"batch"`
}

// Load reads configuration from the given viper instance into a typed
// Config, applying defaults first.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers every configuration default on the viper
// instance and binds the environment variables the application honors.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.encoding", "console")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "cache")

	v.SetDefault("http.timeout", 15*time.Second)
	v.SetDefault("http.user_agent", extractor.DefaultConfig().UserAgent)

	resolverDefaults := resolver.DefaultConfig()
	v.SetDefault("resolver.wikipedia_api_url", resolverDefaults.WikipediaAPIURL)
	v.SetDefault("resolver.search_url", resolverDefaults.SearchURL)
	v.SetDefault("resolver.scoring.relevance_threshold", resolverDefaults.Scoring.RelevanceThreshold)
	v.SetDefault("resolver.scoring.probe_skip_threshold", resolverDefaults.Scoring.ProbeSkipThreshold)
	v.SetDefault("resolver.scoring.blocklist_penalty", resolverDefaults.Scoring.BlocklistPenalty)
	v.SetDefault("resolver.scoring.exact_match_weight", resolverDefaults.Scoring.ExactMatchWeight)
	v.SetDefault("resolver.scoring.partial_match_weight", resolverDefaults.Scoring.PartialMatchWeight)
	v.SetDefault("resolver.scoring.subdomain_match_weight", resolverDefaults.Scoring.SubdomainMatchWeight)
	v.SetDefault("resolver.scoring.simple_domain_bonus", resolverDefaults.Scoring.SimpleDomainBonus)
	v.SetDefault("resolver.scoring.deep_domain_penalty", resolverDefaults.Scoring.DeepDomainPenalty)
	v.SetDefault("resolver.scoring.sole_word_bonus", resolverDefaults.Scoring.SoleWordBonus)

	extractorDefaults := extractor.DefaultConfig()
	v.SetDefault("extractor.user_agent", extractorDefaults.UserAgent)
	v.SetDefault("extractor.timeout", extractorDefaults.Timeout)
	v.SetDefault("extractor.max_content_length", extractorDefaults.MaxContentLength)

	classifierDefaults := classifier.DefaultClientConfig()
	v.SetDefault("classifier.base_url", classifierDefaults.BaseURL)
	v.SetDefault("classifier.model", classifierDefaults.Model)
	v.SetDefault("classifier.temperature", classifierDefaults.Temperature)
	v.SetDefault("classifier.max_tokens", classifierDefaults.MaxTokens)
	v.SetDefault("classifier.max_retries", classifierDefaults.MaxRetries)
	v.SetDefault("classifier.retry_delay", classifierDefaults.RetryDelay)
	v.SetDefault("classifier.min_interval", classifierDefaults.MinInterval)

	batchDefaults := engine.DefaultBatchConfig()
	v.SetDefault("batch.checkpoint_interval", batchDefaults.CheckpointInterval)
	v.SetDefault("batch.checkpoint_path", batchDefaults.CheckpointPath)
	v.SetDefault("batch.org_delay", batchDefaults.OrgDelay)

	bindEnvVars(v)
}

// bindEnvVars connects the environment variables users actually set to
// their configuration keys. OPENROUTER_API_KEY is the one that matters:
// secrets never belong in config files.
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("ORGCLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("classifier.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("classifier.base_url", "OPENROUTER_BASE_URL")
	v.BindEnv("classifier.model", "OPENROUTER_MODEL")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("cache.dir", "CACHE_DIR")
}
