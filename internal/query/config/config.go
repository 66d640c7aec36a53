// Package config provides configuration for the query engine.
package config

import "fmt"

// Config bounds what a client query may ask for.
type Config struct {
	// MaxLimit is the largest accepted "limit" option.
	// Defaults to 100.
	MaxLimit int `yaml:"max_limit"`

	// MaxDepth bounds field path flattening, query-string bracket nesting
	// and nested embeds. Defaults to 5.
	MaxDepth int `yaml:"max_depth"`
}

// DefaultConfig returns the default query configuration.
func DefaultConfig() Config {
	return Config{
		MaxLimit: 100,
		MaxDepth: 5,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.MaxLimit == 0 {
		c.MaxLimit = defaults.MaxLimit
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = defaults.MaxDepth
	}
}

// ApplyEnvOverrides applies environment variable overrides.
// No env vars for query config currently.
func (c *Config) ApplyEnvOverrides() { _ = c }

// ResolvePaths resolves relative paths using the given base directory.
// No paths to resolve in query config.
func (c *Config) ResolvePaths(_ string) { _ = c }

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.MaxLimit < 1 {
		return fmt.Errorf("query.max_limit must be positive, got %d", c.MaxLimit)
	}
	if c.MaxDepth < 1 || c.MaxDepth > 10 {
		return fmt.Errorf("query.max_depth must be between 1 and 10, got %d", c.MaxDepth)
	}
	return nil
}
