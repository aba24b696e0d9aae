// Package config loads and validates application configuration with viper.
// Values come from an optional config file plus SCOUT_* environment
// overrides; missing files fall back to the built-in defaults so the CLI
// works out of the box with just an API key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research pipeline.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Research  ResearchConfig  `mapstructure:"research"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig selects and configures the summarisation backend.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"` // openai or anthropic
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	switch l.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be 'openai' or 'anthropic', got %q", l.Provider)
	}
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required (or set SCOUT_LLM_API_KEY)")
	}
	return nil
}

// ResearchConfig holds mode presets and pipeline defaults.
type ResearchConfig struct {
	DefaultMode         string        `mapstructure:"default_mode"`
	DefaultSources      int           `mapstructure:"default_sources"`
	DefaultSnippetChars int           `mapstructure:"default_snippet_chars"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

func (r ResearchConfig) Validate() error {
	if r.DefaultSources < 1 {
		return fmt.Errorf("research.default_sources must be >= 1")
	}
	if r.DefaultSnippetChars < 100 {
		return fmt.Errorf("research.default_snippet_chars must be >= 100")
	}
	if r.CacheTTL < 0 {
		return fmt.Errorf("research.cache_ttl must be >= 0")
	}
	return nil
}

// CacheConfig selects the search cache backend.
type CacheConfig struct {
	Backend  string      `mapstructure:"backend"` // memory or redis
	Capacity int         `mapstructure:"capacity"`
	Redis    RedisConfig `mapstructure:"redis"`
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "redis":
		return c.Redis.Validate()
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Backend)
	}
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("cache.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("cache.redis.port required")
	}
	return nil
}

// Addr returns host:port for the Redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// FetchConfig selects the page-fetch strategy.
type FetchConfig struct {
	Fetcher string        `mapstructure:"fetcher"` // http, readability, or chromedp
	Timeout time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig controls the metrics endpoint.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from path (or the default locations when
// empty) and the SCOUT_* environment, returning validated config.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":10010")
	v.SetDefault("llm.provider", "openai")
	// Empty default registers the key so SCOUT_LLM_API_KEY is picked up.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("research.default_mode", "default")
	v.SetDefault("research.default_sources", 5)
	v.SetDefault("research.default_snippet_chars", 1200)
	v.SetDefault("research.cache_ttl", 180*time.Second)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.capacity", 256)
	v.SetDefault("cache.redis.host", "")
	v.SetDefault("cache.redis.port", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("fetch.fetcher", "http")
	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("telemetry.enabled", true)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine (defaults + env apply); anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Research.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
