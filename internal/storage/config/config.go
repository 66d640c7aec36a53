package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Mongo MongoConfig `yaml:"mongo"`
}

type MongoConfig struct {
	URI              string        `yaml:"uri"`
	DatabaseName     string        `yaml:"database_name"`
	ImagesCollection string        `yaml:"images_collection"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		Mongo: MongoConfig{
			URI:              "mongodb://localhost:27017",
			DatabaseName:     "wallpaper",
			ImagesCollection: "images",
			ConnectTimeout:   10 * time.Second,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Mongo.URI == "" {
		c.Mongo.URI = defaults.Mongo.URI
	}
	if c.Mongo.DatabaseName == "" {
		c.Mongo.DatabaseName = defaults.Mongo.DatabaseName
	}
	if c.Mongo.ImagesCollection == "" {
		c.Mongo.ImagesCollection = defaults.Mongo.ImagesCollection
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = defaults.Mongo.ConnectTimeout
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("MONGODB_URI"); val != "" {
		c.Mongo.URI = val
	}
}

// ResolvePaths resolves relative paths using the given base directory.
// No paths to resolve in storage config.
func (c *Config) ResolvePaths(_ string) { _ = c }

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("storage.mongo.uri is required")
	}
	if c.Mongo.DatabaseName == "" {
		return fmt.Errorf("storage.mongo.database_name is required")
	}
	if c.Mongo.ImagesCollection == "" {
		return fmt.Errorf("storage.mongo.images_collection is required")
	}
	if c.Mongo.ConnectTimeout < 0 {
		return fmt.Errorf("storage.mongo.connect_timeout cannot be negative")
	}
	return nil
}
