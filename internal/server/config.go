package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/syntrixbase/wallpaper/internal/server/ratelimit"
)

// Config holds the configuration for the HTTP server module.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// BaseEndpoint prefixes every API route, e.g. "/api".
	BaseEndpoint string `yaml:"base_endpoint"`

	CORS      CORSConfig       `yaml:"cors"`
	RateLimit ratelimit.Config `yaml:"rate_limit"`

	// Lifecycle Configuration
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	Enabled bool `yaml:"enabled"`
	// AllowedOrigins lists exact origins; "*" allows any. Empty allows any.
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	MaxAge           int      `yaml:"max_age"`
}

// DefaultConfig returns safe defaults for development.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         3000,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseEndpoint: "/api",
		CORS: CORSConfig{
			Enabled:          true,
			AllowCredentials: true,
			AllowedMethods:   []string{"GET", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			MaxAge:           86400,
		},
		RateLimit:       ratelimit.DefaultConfig(),
		ShutdownTimeout: 10 * time.Second,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaults.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
	if c.BaseEndpoint == "" {
		c.BaseEndpoint = defaults.BaseEndpoint
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = defaults.CORS.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = defaults.CORS.AllowedHeaders
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = defaults.CORS.MaxAge
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = defaults.RateLimit.Requests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = defaults.RateLimit.Window
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// ApplyEnvOverrides applies PORT, BASE_ENDPOINT and CORS_ORIGINS.
// CORS_ORIGINS is a comma separated list.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Port = port
		}
	}
	if val := os.Getenv("BASE_ENDPOINT"); val != "" {
		c.BaseEndpoint = val
	}
	if val := os.Getenv("CORS_ORIGINS"); val != "" {
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
}

// ResolvePaths resolves relative paths using the given base directory.
// No paths to resolve in server config.
func (c *Config) ResolvePaths(_ string) { _ = c }

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Port)
	}
	if !strings.HasPrefix(c.BaseEndpoint, "/") {
		return fmt.Errorf("server.base_endpoint must start with '/', got %q", c.BaseEndpoint)
	}
	if c.RateLimit.Enabled && c.RateLimit.Requests < 1 {
		return fmt.Errorf("server.rate_limit.requests must be at least 1")
	}
	return nil
}

// Route joins the base endpoint with a sub path.
func (c *Config) Route(path string) string {
	return strings.TrimSuffix(c.BaseEndpoint, "/") + path
}
