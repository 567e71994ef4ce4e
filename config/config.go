// Package config loads service configuration from a YAML file with
// environment variable overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Crawl  CrawlConfig  `yaml:"crawl"`
	Chunk  ChunkConfig  `yaml:"chunk"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// DBConfig controls SQLite storage.
type DBConfig struct {
	Path string `yaml:"path"`
}

// CrawlConfig controls the page fetcher.
type CrawlConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// ChunkConfig controls text chunking.
type ChunkConfig struct {
	Size     int    `yaml:"size"`
	Overlap  int    `yaml:"overlap"`
	Strategy string `yaml:"strategy"` // words | sentences
}

// SearchConfig controls similarity retrieval.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

func (c *Config) defaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		// Crawls run inside request handlers and can take a while.
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.DB.Path == "" {
		c.DB.Path = "chatlas.db"
	}
	if c.Crawl.Timeout <= 0 {
		c.Crawl.Timeout = 30 * time.Second
	}
	if c.Crawl.MaxBytes <= 0 {
		c.Crawl.MaxBytes = 5 << 20
	}
	if c.Chunk.Size <= 0 {
		c.Chunk.Size = 200
	}
	if c.Chunk.Overlap <= 0 {
		c.Chunk.Overlap = 40
	}
	if c.Chunk.Strategy == "" {
		c.Chunk.Strategy = "words"
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// Load reads a YAML config file, applies defaults, then environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.defaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers deployment overrides on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	if c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			c.Chunk.Overlap, c.Chunk.Size)
	}
	switch c.Chunk.Strategy {
	case "words", "sentences":
	default:
		return fmt.Errorf("invalid chunk strategy: %q", c.Chunk.Strategy)
	}
	return nil
}
