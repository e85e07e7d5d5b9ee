// Package config holds the YAML configuration shared by the gospin CLI and
// its tool server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Limits  LimitsConfig  `yaml:"limits" json:"limits"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig configures the HTTP tool server.
type ServerConfig struct {
	Addr              string `yaml:"addr" json:"addr"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes" json:"max_body_bytes"`
	ReadHeaderTimeout string `yaml:"read_header_timeout" json:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout" json:"idle_timeout"`
}

// LimitsConfig bounds the work a single request may ask for.
type LimitsConfig struct {
	MaxTwoJ   int64 `yaml:"max_two_j" json:"max_two_j"`   // largest 2j accepted in a tool call
	CacheSize int   `yaml:"cache_size" json:"cache_size"` // memoised coupling coefficients
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, console
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MaxBodyBytes:      1 << 20,
			ReadHeaderTimeout: "5s",
			ReadTimeout:       "15s",
			WriteTimeout:      "15s",
			IdleTimeout:       "60s",
		},
		Limits: LimitsConfig{
			MaxTwoJ:   40,
			CacheSize: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("server.max_body_bytes must be >= 1")
	}
	for name, v := range map[string]string{
		"read_header_timeout": c.Server.ReadHeaderTimeout,
		"read_timeout":        c.Server.ReadTimeout,
		"write_timeout":       c.Server.WriteTimeout,
		"idle_timeout":        c.Server.IdleTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("server.%s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("server.%s must be positive", name)
		}
	}
	if c.Limits.MaxTwoJ < 1 {
		return fmt.Errorf("limits.max_two_j must be >= 1")
	}
	if c.Limits.CacheSize < 1 {
		return fmt.Errorf("limits.cache_size must be >= 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}

// Timeouts returns the parsed server timeouts: read header, read, write and
// idle. Call after Validate.
func (s ServerConfig) Timeouts() (readHeader, read, write, idle time.Duration) {
	parse := func(v string) time.Duration {
		d, _ := time.ParseDuration(v)
		return d
	}
	return parse(s.ReadHeaderTimeout), parse(s.ReadTimeout), parse(s.WriteTimeout), parse(s.IdleTimeout)
}
