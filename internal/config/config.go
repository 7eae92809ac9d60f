// Package config handles TOML configuration loading with environment
// variable substitution, plus the JSON selection document describing
// which builds to sync.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Log   LogConfig   `toml:"log"`
	Fetch FetchConfig `toml:"fetch"`
	Cache CacheConfig `toml:"cache"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type FetchConfig struct {
	// BaseURL overrides the Archon.gg builds root (mainly for testing).
	BaseURL string `toml:"base_url"`
	// Concurrency bounds in-flight requests.
	Concurrency int `toml:"concurrency"`
	// RequestsPerSecond feeds the shared token-bucket rate limiter.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// Burst is the rate limiter's bucket size.
	Burst int `toml:"burst"`
	// Timeout is the per-request HTTP timeout.
	Timeout duration `toml:"timeout"`
	// UserAgent overrides the request User-Agent header.
	UserAgent string `toml:"user_agent"`
}

type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	Path    string   `toml:"path"`
	TTL     duration `toml:"ttl"`
}

// duration wraps time.Duration with TOML string decoding ("30s", "6h").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 5
	}
	if c.Fetch.RequestsPerSecond == 0 {
		c.Fetch.RequestsPerSecond = 2
	}
	if c.Fetch.Burst == 0 {
		c.Fetch.Burst = 1
	}
	if c.Fetch.Timeout.Duration == 0 {
		c.Fetch.Timeout.Duration = 180 * time.Second
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "./archonup-cache.db"
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 6 * time.Hour
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
