package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/syntrixbase/wallpaper/internal/server/ratelimit"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "/api", cfg.BaseEndpoint)
	assert.True(t, cfg.CORS.Enabled)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, ratelimit.DefaultConfig(), cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name    string
		initial Config
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "empty config gets all defaults",
			initial: Config{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.Host)
				assert.Equal(t, 3000, cfg.Port)
				assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
				assert.Equal(t, "/api", cfg.BaseEndpoint)
				assert.Equal(t, []string{"GET", "DELETE", "OPTIONS"}, cfg.CORS.AllowedMethods)
				assert.Equal(t, 30, cfg.RateLimit.Requests)
				assert.Equal(t, time.Minute, cfg.RateLimit.Window)
				assert.False(t, cfg.RateLimit.Enabled)
				assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
			},
		},
		{
			name: "custom values preserved",
			initial: Config{
				Host:            "0.0.0.0",
				Port:            8081,
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
				BaseEndpoint:    "/v1",
				CORS:            CORSConfig{AllowedMethods: []string{"GET"}, MaxAge: 60},
				RateLimit:       ratelimit.Config{Enabled: true, Requests: 5, Window: time.Second},
				ShutdownTimeout: 30 * time.Second,
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.Host)
				assert.Equal(t, 8081, cfg.Port)
				assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
				assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
				assert.Equal(t, "/v1", cfg.BaseEndpoint)
				assert.Equal(t, []string{"GET"}, cfg.CORS.AllowedMethods)
				assert.Equal(t, 60, cfg.CORS.MaxAge)
				assert.Equal(t, 5, cfg.RateLimit.Requests)
				assert.Equal(t, time.Second, cfg.RateLimit.Window)
				assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			cfg.ApplyDefaults()
			tt.check(t, &cfg)
		})
	}
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BASE_ENDPOINT", "/v2")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,,")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/v2", cfg.BaseEndpoint)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestConfig_ApplyEnvOverrides_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 3000, cfg.Port)
}

func TestConfig_ResolvePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResolvePaths("/some/base/dir")
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative port", func(c *Config) { c.Port = -1 }, "server.port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "server.port"},
		{"relative base endpoint", func(c *Config) { c.BaseEndpoint = "api" }, "server.base_endpoint"},
		{"zero rate limit", func(c *Config) { c.RateLimit.Requests = 0 }, "server.rate_limit.requests"},
		{"zero rate limit disabled", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.Requests = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Route(t *testing.T) {
	cfg := Config{BaseEndpoint: "/api"}
	assert.Equal(t, "/api/images", cfg.Route("/images"))

	cfg.BaseEndpoint = "/api/"
	assert.Equal(t, "/api/images", cfg.Route("/images"))

	cfg.BaseEndpoint = "/"
	assert.Equal(t, "/images", cfg.Route("/images"))
}
