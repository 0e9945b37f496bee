// Package config provides the server configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

// Environment variables
const (
	EnvAPIKey           = "INKEEP_API_KEY"
	EnvBaseURL          = "INKEEP_API_BASE_URL"
	EnvAnalyticsBaseURL = "INKEEP_ANALYTICS_BASE_URL"
)

// Missing key policies
const (
	// PolicyDisableAll registers no tools without the API key
	PolicyDisableAll = "disable_all"
	// PolicyDisableSearch registers only the tools that do not need the API key
	PolicyDisableSearch = "disable_search"
)

// Defaults
const (
	DefaultBaseURL          = "https://api.inkeep.com/v1"
	DefaultRAGModel         = "inkeep-rag"
	DefaultRequestTimeout   = 60 * time.Second
	DefaultMaxDuration      = 300 * time.Second
	DefaultAnalyticsBaseURL = "https://api.analytics.inkeep.com"
	DefaultAnalyticsTimeout = 10 * time.Second
	DefaultListen           = ":8080"
	DefaultEndpoint         = "/mcp"
	DefaultLogLevel         = "INFO"

	redacted = "[REDACTED]"
)

// Config of the server
type Config struct {
	// APIKey is the Inkeep API key, used for RAG and analytics
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key"`
	// BaseURL of the RAG endpoint
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url" validate:"omitempty,url"`
	RAGModel string `json:"rag_model,omitempty" yaml:"rag_model,omitempty" toml:"rag_model"`
	// RequestTimeout limits a single RAG request
	RequestTimeout Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty" toml:"request_timeout" validate:"gte=0"`
	// MaxDuration limits a tool call
	MaxDuration Duration `json:"max_duration,omitempty" yaml:"max_duration,omitempty" toml:"max_duration" validate:"gte=0"`
	// MissingKeyPolicy is applied when APIKey is empty:
	// disable_all|disable_search
	MissingKeyPolicy string `json:"missing_key_policy,omitempty" yaml:"missing_key_policy,omitempty" toml:"missing_key_policy" validate:"omitempty,oneof=disable_all disable_search"`

	Analytics AnalyticsConfig `json:"analytics" yaml:"analytics" toml:"analytics"`
	HTTP      HTTPConfig      `json:"http" yaml:"http" toml:"http"`

	// LogLevel is ERROR|WARNING|INFO|DEBUG
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level" validate:"omitempty,oneof=ERROR WARNING INFO DEBUG"`
}

// AnalyticsConfig for Inkeep Analytics
type AnalyticsConfig struct {
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled"`
	// APIKey overrides the integration key
	APIKey  string   `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key"`
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url" validate:"omitempty,url"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout" validate:"gte=0"`
}

// HTTPConfig for the streamable HTTP transport
type HTTPConfig struct {
	Listen   string `json:"listen,omitempty" yaml:"listen,omitempty" toml:"listen"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint" validate:"omitempty,startswith=/"`
	// Stateless disables the session management
	Stateless *bool `json:"stateless,omitempty" yaml:"stateless,omitempty" toml:"stateless"`
}

// IsStateless returns the stateless option, true by default
func (c *HTTPConfig) IsStateless() bool {
	return c.Stateless == nil || *c.Stateless
}

var validate = validator.New()

// Load returns the configuration from the file, with the environment
// overrides and defaults applied.
// Empty file name means the environment and defaults only.
func Load(file string) (*Config, error) {
	cfg, err := LoadFile(file)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes the file as is.
// Files with .toml extension are decoded as TOML,
// others as YAML or JSON with the environment variables expanded.
func LoadFile(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(file), ".toml") {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config: %s", file)
		}
		if _, err := toml.Decode(os.ExpandEnv(string(b)), cfg); err != nil {
			return nil, errors.Wrapf(err, "unable to decode config: %s", file)
		}
		return cfg, nil
	}

	if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to load config: %s", file)
	}
	return cfg, nil
}

// ApplyEnv overrides the values with the environment variables that are set
func (c *Config) ApplyEnv() {
	c.APIKey = values.StringsCoalesce(os.Getenv(EnvAPIKey), c.APIKey)
	c.BaseURL = values.StringsCoalesce(os.Getenv(EnvBaseURL), c.BaseURL)
	c.Analytics.BaseURL = values.StringsCoalesce(os.Getenv(EnvAnalyticsBaseURL), c.Analytics.BaseURL)
}

// SetDefaults sets the values that are not specified
func (c *Config) SetDefaults() {
	c.BaseURL = values.StringsCoalesce(c.BaseURL, DefaultBaseURL)
	c.RAGModel = values.StringsCoalesce(c.RAGModel, DefaultRAGModel)
	c.MissingKeyPolicy = values.StringsCoalesce(c.MissingKeyPolicy, PolicyDisableAll)
	c.LogLevel = strings.ToUpper(values.StringsCoalesce(c.LogLevel, DefaultLogLevel))
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = Duration(DefaultMaxDuration)
	}

	c.Analytics.BaseURL = values.StringsCoalesce(c.Analytics.BaseURL, DefaultAnalyticsBaseURL)
	if c.Analytics.Timeout == 0 {
		c.Analytics.Timeout = Duration(DefaultAnalyticsTimeout)
	}

	c.HTTP.Listen = values.StringsCoalesce(c.HTTP.Listen, DefaultListen)
	c.HTTP.Endpoint = values.StringsCoalesce(c.HTTP.Endpoint, DefaultEndpoint)
}

// Validate returns error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// HasAPIKey returns true if the Inkeep API key is configured
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// AnalyticsKey returns the analytics integration key,
// or empty string when analytics is disabled
func (c *Config) AnalyticsKey() string {
	if c.Analytics.Disabled {
		return ""
	}
	return values.StringsCoalesce(c.Analytics.APIKey, c.APIKey)
}

// Redacted returns a copy of the configuration with secrets redacted
func (c *Config) Redacted() *Config {
	r := *c
	if r.APIKey != "" {
		r.APIKey = redacted
	}
	if r.Analytics.APIKey != "" {
		r.Analytics.APIKey = redacted
	}
	if c.HTTP.Stateless != nil {
		v := *c.HTTP.Stateless
		r.HTTP.Stateless = &v
	}
	return &r
}

// Duration is time.Duration that is encoded as a string, like `60s`
type Duration time.Duration

// D returns the time.Duration
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// String returns the duration string
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration: %q", s)
	}
	*d = Duration(v)
	return nil
}
