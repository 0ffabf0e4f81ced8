package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Stats    StatsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UpstreamConfig points at the GNews-compatible search API.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// AuthConfig enables bearer-token auth on the /api routes when Enabled is set.
type AuthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// StatsConfig locates the lookup log. Retention bounds how long rows are kept;
// Buffer is how many lookups may queue for the writer before new ones are dropped.
type StatsConfig struct {
	DSN       string        `mapstructure:"dsn"`
	Retention time.Duration `mapstructure:"retention"`
	Buffer    int           `mapstructure:"buffer"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from <configPath>/config.yaml (optional) and the
// environment. Environment variables win over the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	setDefaults(v)

	// Names used by the previous deployment are still honoured.
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("upstream.base_url", "UPSTREAM_BASE_URL", "GNEWS_API_URL")
	v.BindEnv("upstream.api_key", "UPSTREAM_API_KEY", "GNEWS_API_KEY")
	v.BindEnv("auth.secret", "AUTH_SECRET", "JWT_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8008)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("upstream.base_url", "https://gnews.io/api/v4")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("cache.ttl", "300s")
	v.SetDefault("cache.max_entries", 100)
	v.SetDefault("cache.purge_interval", "1m")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "news-search-api")
	v.SetDefault("auth.audience", "news-search-clients")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("stats.dsn", "file::memory:?cache=shared")
	v.SetDefault("stats.retention", "24h")
	v.SetDefault("stats.buffer", 1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate rejects settings the service cannot run with. A missing upstream
// API key is not an error here; callers log it as a warning.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth.enabled is true")
	}
	return nil
}
