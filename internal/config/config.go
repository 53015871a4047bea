package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// ErrMissingAPIURL is returned when no book API base URL is configured.
var ErrMissingAPIURL = errors.New("book API URL is not configured (set api_url or BOOKDASH_API_URL)")

// Config is the runtime configuration for bookdash.
type Config struct {
	APIURL       string        `env:"API_URL"`
	RetryLimit   int           `env:"RETRY_LIMIT"`
	PollInterval time.Duration `env:"POLL_INTERVAL"`
	CacheTTL     time.Duration `env:"CACHE_TTL"`
	RedisURL     string        `env:"REDIS_URL"`
	RateLimit    float64       `env:"RATE_LIMIT"`
	MetricsAddr  string        `env:"METRICS_ADDR"`
	OTLPEndpoint string        `env:"OTLP_ENDPOINT"`
	LogPath      string        `env:"LOG_PATH"`
	LogLevel     string        `env:"LOG_LEVEL"`
}

const (
	envPrefix = "BOOKDASH_"

	defaultConfigPath   = "~/.config/bookdash/config.toml"
	defaultDotenvPath   = ".env"
	defaultLogPath      = "~/.local/state/bookdash/bookdash.log"
	defaultRetryLimit   = 3
	defaultPollInterval = 30 * time.Second
	defaultCacheTTL     = 25 * time.Second
	defaultMetricsAddr  = "127.0.0.1:9464"
	defaultLogLevel     = "info"
)

// Default returns the configuration used before any file or environment
// override is applied.
func Default() Config {
	return Config{
		RetryLimit:   defaultRetryLimit,
		PollInterval: defaultPollInterval,
		CacheTTL:     defaultCacheTTL,
		MetricsAddr:  defaultMetricsAddr,
		LogPath:      mustExpand(defaultLogPath),
		LogLevel:     defaultLogLevel,
	}
}

// Load builds the configuration from defaults, the TOML file at path, a .env
// file in the working directory and finally the process environment. Later
// layers win. A missing file at any layer is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := applyFile(&cfg, resolved); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(defaultDotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", defaultDotenvPath, err)
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that prevents the dashboard from starting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return ErrMissingAPIURL
	}
	return nil
}

type fileConfig struct {
	APIURL       string   `toml:"api_url"`
	RetryLimit   *int     `toml:"retry_limit"`
	PollInterval string   `toml:"poll_interval"`
	CacheTTL     string   `toml:"cache_ttl"`
	RedisURL     string   `toml:"redis_url"`
	RateLimit    *float64 `toml:"rate_limit"`
	MetricsAddr  *string  `toml:"metrics_addr"`
	OTLPEndpoint string   `toml:"otlp_endpoint"`
	LogPath      string   `toml:"log_path"`
	LogLevel     string   `toml:"log_level"`
}

func applyFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.RetryLimit != nil {
		cfg.RetryLimit = *raw.RetryLimit
	}
	if v := strings.TrimSpace(raw.PollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if v := strings.TrimSpace(raw.CacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if raw.RateLimit != nil {
		cfg.RateLimit = *raw.RateLimit
	}
	if raw.MetricsAddr != nil {
		cfg.MetricsAddr = strings.TrimSpace(*raw.MetricsAddr)
	}
	if v := strings.TrimSpace(raw.OTLPEndpoint); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.RetryLimit < 1 {
		c.RetryLimit = defaultRetryLimit
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	c.clampCacheTTL()
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if strings.TrimSpace(c.LogPath) == "" {
		c.LogPath = defaultLogPath
	}
	c.LogPath = mustExpand(c.LogPath)
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
}

// SetPollInterval overrides the poll interval. Non-positive values are
// ignored.
func (c *Config) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.PollInterval = d
	c.clampCacheTTL()
}

// clampCacheTTL keeps cached responses younger than one poll interval so
// every poll reaches the API.
func (c *Config) clampCacheTTL() {
	if c.PollInterval > 0 && c.CacheTTL >= c.PollInterval {
		c.CacheTTL = c.PollInterval - c.PollInterval/6
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
