// Package embedding provides pluggable vector embedding providers for the
// router. Supported backends: Ollama (local), Google GenAI, and OpenAI.
//
// Providers are pure functions over text: deterministic for the same text
// and model version, and they return an error on failure rather than a zero
// vector, so callers can distinguish "no signal" from "failed to compute".
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Provider generates vector embeddings for text.
type Provider interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of produced embeddings.
	Dimensions() int

	// Name returns the provider name, e.g. "ollama:embeddinggemma".
	Name() string
}

// Config holds embedding provider configuration.
type Config struct {
	// Provider: "ollama", "genai", "openai", or "none" to disable semantic
	// scoring entirely (keyword-only deployment).
	Provider string `yaml:"provider" json:"provider"`

	// Ollama configuration.
	OllamaEndpoint string `yaml:"ollama_endpoint" json:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model" json:"ollama_model"`

	// GenAI configuration.
	GenAIAPIKey string `yaml:"genai_api_key" json:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model" json:"genai_model"`

	// OpenAI configuration.
	OpenAIAPIKey string `yaml:"openai_api_key" json:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model" json:"openai_model"`

	// Timeout bounds a single Embed call. The router degrades to
	// keyword-only scoring when this elapses.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns sensible defaults: local Ollama with a 2s timeout.
func DefaultConfig() Config {
	return Config{
		Provider:       "ollama",
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		GenAIModel:     "gemini-embedding-001",
		OpenAIModel:    "text-embedding-3-small",
		Timeout:        2 * time.Second,
	}
}

// NewProvider creates a provider from configuration. Returns (nil, nil) for
// provider "none": a nil Provider means the router runs keyword-only.
func NewProvider(cfg Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", "none":
		logger.Info("embedding disabled, routing is keyword-only")
		return nil, nil
	case "ollama":
		logger.Info("initializing ollama embedding provider",
			zap.String("endpoint", cfg.OllamaEndpoint),
			zap.String("model", cfg.OllamaModel))
		return NewOllamaProvider(cfg.OllamaEndpoint, cfg.OllamaModel)
	case "genai":
		logger.Info("initializing genai embedding provider",
			zap.String("model", cfg.GenAIModel))
		return NewGenAIProvider(cfg.GenAIAPIKey, cfg.GenAIModel)
	case "openai":
		logger.Info("initializing openai embedding provider",
			zap.String("model", cfg.OpenAIModel))
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'ollama', 'genai', 'openai', or 'none')", cfg.Provider)
	}
}

// EmbedWithTimeout wraps a single Embed call in a timeout. Used at routing
// time so a stalled provider degrades the call to keyword-only scoring
// instead of blocking the session.
func EmbedWithTimeout(ctx context.Context, p Provider, text string, timeout time.Duration) ([]float32, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.Embed(ctx, text)
}
