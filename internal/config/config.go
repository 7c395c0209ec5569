// Package config loads the router's deployment configuration from YAML with
// environment overrides for credentials. Every tunable the fusion engine,
// feedback store, cache, and router expose lives here with a sane default;
// a missing config file runs the defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"skillrouter/internal/embedding"
	"skillrouter/internal/feedback"
	"skillrouter/internal/fusion"
	"skillrouter/internal/router"
)

// Config is the on-disk configuration schema. Durations are strings
// ("2s", "1h") parsed at build time.
type Config struct {
	Fusion    fusion.Config       `yaml:"fusion"`
	Verbs     map[string][]string `yaml:"verbs,omitempty"`
	Router    RouterSection       `yaml:"router"`
	Feedback  feedback.Config     `yaml:"feedback"`
	Embedding EmbeddingSection    `yaml:"embedding"`
	Logging   LoggingSection      `yaml:"logging"`
}

// RouterSection configures orchestration and the routing cache.
type RouterSection struct {
	CandidatesPerIndex int     `yaml:"candidates_per_index"`
	RetryBandCeiling   float64 `yaml:"retry_band_ceiling"`
	ExplainTopN        int     `yaml:"explain_top_n"`
	EmbedTimeout       string  `yaml:"embed_timeout"`
	CacheMaxEntries    int     `yaml:"cache_max_entries"`
	CacheTTL           string  `yaml:"cache_ttl"`
}

// EmbeddingSection configures the embedding provider.
type EmbeddingSection struct {
	Provider       string `yaml:"provider"`
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	GenAIAPIKey    string `yaml:"genai_api_key"`
	GenAIModel     string `yaml:"genai_model"`
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	OpenAIModel    string `yaml:"openai_model"`
	Timeout        string `yaml:"timeout"`
}

// LoggingSection configures the zap logger.
type LoggingSection struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the full default configuration.
func Default() Config {
	ec := embedding.DefaultConfig()
	return Config{
		Fusion:   fusion.DefaultConfig(),
		Feedback: feedback.DefaultConfig("skillrouter_feedback.json"),
		Router: RouterSection{
			CandidatesPerIndex: 20,
			RetryBandCeiling:   0.4,
			ExplainTopN:        5,
			EmbedTimeout:       "2s",
			CacheMaxEntries:    1000,
			CacheTTL:           "1h",
		},
		Embedding: EmbeddingSection{
			Provider:       ec.Provider,
			OllamaEndpoint: ec.OllamaEndpoint,
			OllamaModel:    ec.OllamaModel,
			GenAIModel:     ec.GenAIModel,
			OpenAIModel:    ec.OpenAIModel,
			Timeout:        "2s",
		},
		Logging: LoggingSection{Level: "info"},
	}
}

// Load reads a YAML config over the defaults. An empty path or missing file
// returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides credentials from the environment so API keys stay out
// of config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		c.Embedding.GenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Embedding.OpenAIAPIKey = v
	}
	if v := os.Getenv("SKILLROUTER_EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
}

// RouterConfig materializes the router section.
func (c *Config) RouterConfig() (router.Config, error) {
	embedTimeout, err := parseDuration(c.Router.EmbedTimeout, 2*time.Second)
	if err != nil {
		return router.Config{}, fmt.Errorf("router.embed_timeout: %w", err)
	}
	cacheTTL, err := parseDuration(c.Router.CacheTTL, time.Hour)
	if err != nil {
		return router.Config{}, fmt.Errorf("router.cache_ttl: %w", err)
	}

	return router.Config{
		CandidatesPerIndex: c.Router.CandidatesPerIndex,
		RetryBandCeiling:   c.Router.RetryBandCeiling,
		ExplainTopN:        c.Router.ExplainTopN,
		EmbedTimeout:       embedTimeout,
		CacheMaxEntries:    c.Router.CacheMaxEntries,
		CacheTTL:           cacheTTL,
	}, nil
}

// EmbeddingConfig materializes the embedding section.
func (c *Config) EmbeddingConfig() (embedding.Config, error) {
	timeout, err := parseDuration(c.Embedding.Timeout, 2*time.Second)
	if err != nil {
		return embedding.Config{}, fmt.Errorf("embedding.timeout: %w", err)
	}

	return embedding.Config{
		Provider:       c.Embedding.Provider,
		OllamaEndpoint: c.Embedding.OllamaEndpoint,
		OllamaModel:    c.Embedding.OllamaModel,
		GenAIAPIKey:    c.Embedding.GenAIAPIKey,
		GenAIModel:     c.Embedding.GenAIModel,
		OpenAIAPIKey:   c.Embedding.OpenAIAPIKey,
		OpenAIModel:    c.Embedding.OpenAIModel,
		Timeout:        timeout,
	}, nil
}

// Logger builds a zap logger from the logging section.
func (c *Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Logging.Level != "" {
		level, err := zapcore.ParseLevel(c.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return d, nil
}
