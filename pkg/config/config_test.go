package config_test

import (
	"testing"
	"time"

	"github.com/effective-security/inkeep-mcp/pkg/config"
	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvAnalyticsBaseURL, "")
}

func Test_Load_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.False(t, cfg.HasAPIKey())
	assert.Empty(t, cfg.AnalyticsKey())
	assert.Equal(t, "https://api.inkeep.com/v1", cfg.BaseURL)
	assert.Equal(t, "inkeep-rag", cfg.RAGModel)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout.D())
	assert.Equal(t, 300*time.Second, cfg.MaxDuration.D())
	assert.Equal(t, config.PolicyDisableAll, cfg.MissingKeyPolicy)
	assert.Equal(t, "https://api.analytics.inkeep.com", cfg.Analytics.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Analytics.Timeout.D())
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.Equal(t, "/mcp", cfg.HTTP.Endpoint)
	assert.True(t, cfg.HTTP.IsStateless())
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func Test_Load_Env(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "envkey")
	t.Setenv(config.EnvBaseURL, "https://proxy.example.com/v1")
	t.Setenv(config.EnvAnalyticsBaseURL, "https://proxy.example.com/analytics")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.True(t, cfg.HasAPIKey())
	assert.Equal(t, "envkey", cfg.APIKey)
	assert.Equal(t, "envkey", cfg.AnalyticsKey())
	assert.Equal(t, "https://proxy.example.com/v1", cfg.BaseURL)
	assert.Equal(t, "https://proxy.example.com/analytics", cfg.Analytics.BaseURL)
}

func Test_Load_YAML(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAPIKey, "yamlkey")

	cfg, err := config.Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "yamlkey", cfg.APIKey)
	assert.Equal(t, "https://rag.example.com/v1", cfg.BaseURL)
	assert.Equal(t, "inkeep-qa", cfg.RAGModel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout.D())
	assert.Equal(t, 2*time.Minute, cfg.MaxDuration.D())
	assert.Equal(t, config.PolicyDisableSearch, cfg.MissingKeyPolicy)
	assert.Equal(t, "https://analytics.example.com", cfg.Analytics.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Analytics.Timeout.D())
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Listen)
	assert.Equal(t, "/inkeep/mcp", cfg.HTTP.Endpoint)
	assert.False(t, cfg.HTTP.IsStateless())
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func Test_Load_TOML(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_INKEEP_KEY", "tomlkey")

	cfg, err := config.Load("testdata/config.toml")
	require.NoError(t, err)

	assert.Equal(t, "tomlkey", cfg.APIKey)
	assert.Equal(t, 90*time.Second, cfg.MaxDuration.D())
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout.D())
	assert.True(t, cfg.Analytics.Disabled)
	assert.Empty(t, cfg.AnalyticsKey())
	assert.Equal(t, ":7070", cfg.HTTP.Listen)
	assert.Equal(t, "/mcp", cfg.HTTP.Endpoint)
}

func Test_Load_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := config.Load("testdata/invalid_policy.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "MissingKeyPolicy")

	_, err = config.Load("testdata/invalid_duration.yaml")
	require.Error(t, err)

	_, err = config.Load("testdata/missing.yaml")
	require.Error(t, err)

	_, err = config.Load("testdata/missing.toml")
	require.Error(t, err)

	t.Setenv(config.EnvBaseURL, "not a url")
	_, err = config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BaseURL")
}

func Test_AnalyticsKey(t *testing.T) {
	cfg := &config.Config{APIKey: "key"}
	assert.Equal(t, "key", cfg.AnalyticsKey())

	cfg.Analytics.APIKey = "integration"
	assert.Equal(t, "integration", cfg.AnalyticsKey())

	cfg.Analytics.Disabled = true
	assert.Empty(t, cfg.AnalyticsKey())
}

func Test_Redacted(t *testing.T) {
	stateless := false
	cfg := &config.Config{
		APIKey:      "secret",
		RAGModel:    "inkeep-rag",
		MaxDuration: config.Duration(90 * time.Second),
		Analytics:   config.AnalyticsConfig{APIKey: "secret2"},
		HTTP:        config.HTTPConfig{Stateless: &stateless},
	}

	r := cfg.Redacted()
	assert.Equal(t, "[REDACTED]", r.APIKey)
	assert.Equal(t, "[REDACTED]", r.Analytics.APIKey)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "secret2", cfg.Analytics.APIKey)

	*r.HTTP.Stateless = true
	assert.False(t, stateless)

	y := llmutils.ToYAML(r)
	assert.NotContains(t, y, "secret")
	assert.Contains(t, y, "max_duration: 1m30s")
	assert.Contains(t, y, "rag_model: inkeep-rag")

	assert.Empty(t, (&config.Config{}).Redacted().APIKey)
}

func Test_Duration(t *testing.T) {
	var d config.Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m ")))
	assert.Equal(t, time.Minute, d.D())
	assert.Equal(t, "1m0s", d.String())

	require.NoError(t, d.UnmarshalText(nil))
	assert.Equal(t, time.Duration(0), d.D())

	assert.EqualError(t, d.UnmarshalText([]byte("soon")), `invalid duration: "soon": time: invalid duration "soon"`)
}
