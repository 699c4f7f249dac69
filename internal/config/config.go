// Package config loads the process-wide service configuration once at
// startup: defaults, then an optional YAML file, then environment overrides,
// then validation. The result is passed explicitly to the components that
// need it and is never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/neo-orbit-api/pkg/client"
	"github.com/Sternrassler/neo-orbit-api/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	NeoWs   NeoWsConfig   `yaml:"neows"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// NeoWsConfig configures the upstream browse client.
type NeoWsConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CatalogConfig points at the optional local CSV catalog.
type CatalogConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Pretty     bool   `yaml:"pretty"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	nc := client.DefaultConfig("")
	lc := logging.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		NeoWs: NeoWsConfig{
			BaseURL:   nc.BaseURL,
			APIKey:    nc.APIKey,
			UserAgent: nc.UserAgent,
			Timeout:   nc.Timeout,
		},
		Catalog: CatalogConfig{
			CSVPath: "data/asteroides.csv",
		},
		Logging: LoggingConfig{
			Level:      string(lc.Level),
			Pretty:     lc.Pretty,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxAgeDays: lc.MaxAgeDays,
		},
	}
}

// Load merges Default() + the YAML file at path (skipped when path is empty)
// + environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies the environment variables on top of cfg.
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("PORT %q is not a valid port", val)
		}
		cfg.Server.Addr = ":" + val
	}

	if val := os.Getenv("NASA_API_KEY"); val != "" {
		cfg.NeoWs.APIKey = val
	}

	if val := os.Getenv("NEOWS_BASE_URL"); val != "" {
		cfg.NeoWs.BaseURL = val
	}

	if val := os.Getenv("NEOWS_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("NEOWS_TIMEOUT: %w", err)
		}
		cfg.NeoWs.Timeout = d
	}

	if val := os.Getenv("USER_AGENT"); val != "" {
		cfg.NeoWs.UserAgent = val
	}

	if val, ok := os.LookupEnv("CSV_PATH"); ok {
		// An explicitly empty CSV_PATH disables the catalog.
		cfg.Catalog.CSVPath = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}

	if val := os.Getenv("LOG_PRETTY"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		cfg.Logging.Pretty = b
	}

	if val := os.Getenv("LOG_FILE"); val != "" {
		cfg.Logging.File = val
	}

	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be > 0"))
	}

	if u, err := url.Parse(c.NeoWs.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("neows.base_url %q must be an absolute http(s) URL", c.NeoWs.BaseURL))
	}
	if c.NeoWs.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("neows.timeout must be > 0 (got %s)", c.NeoWs.Timeout))
	}
	if c.NeoWs.UserAgent == "" {
		errs = append(errs, errors.New("neows.user_agent is required"))
	}

	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// ClientConfig converts the NeoWs section to a client.Config. An empty API
// key falls back to the public demo key.
func (c *Config) ClientConfig() client.Config {
	cc := client.DefaultConfig(c.NeoWs.APIKey)
	cc.BaseURL = c.NeoWs.BaseURL
	cc.UserAgent = c.NeoWs.UserAgent
	cc.Timeout = c.NeoWs.Timeout
	return cc
}

// LoggingConfig converts the logging section to a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.LogLevel(strings.ToLower(c.Logging.Level))
	lc.Pretty = c.Logging.Pretty
	lc.File = c.Logging.File
	if c.Logging.MaxSizeMB > 0 {
		lc.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxAgeDays > 0 {
		lc.MaxAgeDays = c.Logging.MaxAgeDays
	}
	return lc
}
