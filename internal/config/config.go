package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	query "github.com/syntrixbase/wallpaper/internal/query/config"
	"github.com/syntrixbase/wallpaper/internal/server"
	storage "github.com/syntrixbase/wallpaper/internal/storage/config"
	"gopkg.in/yaml.v3"
)

// DefaultDir is the directory LoadConfig reads from.
const DefaultDir = "config"

// Config holds the application configuration
type Config struct {
	Environment Environment   `yaml:"environment"`
	Server      server.Config `yaml:"server"`

	Query   query.Config   `yaml:"query"`
	Storage storage.Config `yaml:"storage"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used before any file is read.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server:      server.DefaultConfig(),
		Query:       query.DefaultConfig(),
		Storage:     storage.DefaultConfig(),
		Logging:     DefaultLoggingConfig(),
	}
}

// Load reads configuration from dir.
// Order: defaults -> config.yml -> config.local.yml -> ApplyDefaults ->
// ApplyEnvOverrides -> ResolvePaths -> Validate
func Load(dir string) (*Config, error) {
	// Defaults first so YAML can override them, including bool fields.
	cfg := Default()

	loadFile(filepath.Join(dir, "config.yml"), cfg)
	loadFile(filepath.Join(dir, "config.local.yml"), cfg)

	if err := ApplyServiceConfigs(dir,
		&cfg.Environment,
		&cfg.Server,
		&cfg.Query,
		&cfg.Storage,
		&cfg.Logging,
	); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads configuration from DefaultDir and exits on error.
func LoadConfig() *Config {
	cfg, err := Load(DefaultDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return // File doesn't exist, skip
		}
		log.Printf("Warning: Error reading %s: %v", filename, err)
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("Warning: Error parsing %s: %v", filename, err)
	}
}
