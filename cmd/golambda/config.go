package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration, read from YAML:
//
//	max_depth: 64
//	caching: true
//	cache_size: 512
//	timeout: 5s
//	debug: false
type Config struct {
	MaxDepth  int           `yaml:"max_depth"`
	Caching   bool          `yaml:"caching"`
	CacheSize int           `yaml:"cache_size"`
	Timeout   time.Duration `yaml:"timeout"`
	Debug     bool          `yaml:"debug"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		MaxDepth:  128,
		CacheSize: 256,
		Timeout:   defaultTimeout,
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects negative limits.
func (c Config) Validate() error {
	switch {
	case c.MaxDepth < 0:
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	case c.CacheSize < 0:
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
