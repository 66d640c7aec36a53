// Package ratelimit provides per-client request limiting for HTTP endpoints.
package ratelimit

import (
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	// Allowed reports whether the request fits in the current window.
	Allowed bool

	// Limit is the number of requests permitted per window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// Reset is the moment the current window ends.
	Reset time.Time
}

// Limiter defines the interface for rate limiting implementations.
type Limiter interface {
	// Allow counts one request against key and reports the resulting decision.
	Allow(key string) Decision

	// Reset clears the rate limit counter for the given key.
	Reset(key string)
}

// Config holds the configuration for rate limiting.
type Config struct {
	// Enabled controls whether rate limiting is active.
	Enabled bool `yaml:"enabled"`

	// Requests is the maximum number of requests allowed per window.
	Requests int `yaml:"requests"`

	// Window is the duration of the rate limiting window.
	Window time.Duration `yaml:"window"`
}

// DefaultConfig returns the default rate limiting configuration:
// 30 requests per client per minute.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Requests: 30,
		Window:   time.Minute,
	}
}
