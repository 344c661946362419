// Package config provides configuration loading and structs for the cdpdocs server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	LogFile string        `yaml:"log_file"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string  `yaml:"host"`
	Port         int     `yaml:"port"`
	RateLimit    float64 `yaml:"rate_limit"` // requests per second; 0 disables limiting
	RateBurst    int     `yaml:"rate_burst"`
	MaxBodyBytes int64   `yaml:"max_body_bytes"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the document source and its location.
type StorageConfig struct {
	Backend      string `yaml:"backend"`
	DocsPath     string `yaml:"docs_path"`
	DatabasePath string `yaml:"database_path"`
}

// IndexConfig lists the collections loaded at startup.
type IndexConfig struct {
	Collections []string `yaml:"collections"`
	Workers     int      `yaml:"workers"`
}

// SearchConfig holds query defaults and limits.
type SearchConfig struct {
	DefaultTopK   int      `yaml:"default_top_k"`
	MaxTopK       int      `yaml:"max_top_k"`
	MinScore      *float64 `yaml:"min_score"`
	SnippetLength int      `yaml:"snippet_length"`
}

// MinScoreOrDefault returns the configured threshold, or models.DefaultMinScore when unset.
func (s *SearchConfig) MinScoreOrDefault() float64 {
	if s.MinScore != nil {
		return *s.MinScore
	}
	return models.DefaultMinScore
}

// WatchConfig holds docs directory watch settings.
type WatchConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Patterns   []string `yaml:"patterns"` // doublestar globs matched against docs file names
	DebounceMS int      `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.expandPaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the default configuration with "./" paths resolved against the
// working directory. Used when no config file exists.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg.expandPaths(wd)
	return &cfg
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend %q (supported: json, sqlite)", c.Storage.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("default_top_k (%d) exceeds max_top_k (%d)", c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	if m := c.Search.MinScoreOrDefault(); m < 0 || m > 1 {
		return fmt.Errorf("min_score must be within [0, 1], got %v", m)
	}
	return nil
}

// Save writes the config to path. Used by the init command to write a starter config.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) expandPaths(baseDir string) {
	c.Storage.DocsPath = expandPath(c.Storage.DocsPath, baseDir)
	c.Storage.DatabasePath = expandPath(c.Storage.DatabasePath, baseDir)
	if c.LogFile != "" {
		c.LogFile = expandPath(c.LogFile, baseDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
