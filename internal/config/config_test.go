package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileRunsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Fusion.Weights.Vector)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)

	rc, err := cfg.RouterConfig()
	require.NoError(t, err)
	assert.Equal(t, 20, rc.CandidatesPerIndex)
	assert.Equal(t, 2*time.Second, rc.EmbedTimeout)
	assert.Equal(t, time.Hour, rc.CacheTTL)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fusion:
  weights:
    vector: 0.7
    keyword: 0.3
  rerank_top_n: 5
verbs:
  publish: [blog]
router:
  candidates_per_index: 40
  cache_ttl: 30m
feedback:
  backend: sqlite
  path: /var/lib/skillrouter/feedback.db
embedding:
  provider: none
logging:
  level: debug
  development: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Fusion.Weights.Vector)
	assert.Equal(t, 5, cfg.Fusion.RerankTopN)
	assert.Equal(t, []string{"blog"}, cfg.Verbs["publish"])
	assert.Equal(t, "sqlite", cfg.Feedback.Backend)
	assert.Equal(t, "none", cfg.Embedding.Provider)

	rc, err := cfg.RouterConfig()
	require.NoError(t, err)
	assert.Equal(t, 40, rc.CandidatesPerIndex)
	assert.Equal(t, 30*time.Minute, rc.CacheTTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.4, rc.RetryBandCeiling)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	logger.Sync()
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fusion: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverridesCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SKILLROUTER_EMBEDDING_PROVIDER", "openai")

	cfg, err := Load("")
	require.NoError(t, err)

	ec, err := cfg.EmbeddingConfig()
	require.NoError(t, err)
	assert.Equal(t, "openai", ec.Provider)
	assert.Equal(t, "sk-test", ec.OpenAIAPIKey)
}

func TestRouterConfig_BadDuration(t *testing.T) {
	cfg := Default()
	cfg.Router.CacheTTL = "one hour"

	_, err := cfg.RouterConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_ttl")
}

func TestLogger_BadLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"

	_, err := cfg.Logger()
	require.Error(t, err)
}

func TestLoadManifest_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tools:
  - id: git.commit
    description: Commit staged changes
    routing_keywords: [commit, save changes]
    intents: [record a commit]
  - id: crawl4ai.crawl
    description: Crawl a url
    routing_keywords: [crawl website, research url]
    domains: [crawl4ai, web]
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Tools, 2)
	assert.Equal(t, "git.commit", m.Tools[0].ID)
	assert.Equal(t, []string{"crawl4ai", "web"}, m.Tools[1].Domains)
}

func TestLoadManifest_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "tools": [
    {"id": "git.commit", "description": "Commit staged changes", "routing_keywords": ["commit"]}
  ]
}`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Tools, 1)
	assert.Equal(t, "git.commit", m.Tools[0].ID)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
