package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment names the runtime environment the service is deployed in.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

// ApplyDefaults sets development when no environment is configured.
func (e *Environment) ApplyDefaults() {
	if *e == "" {
		*e = EnvDevelopment
	}
}

// ApplyEnvOverrides reads APP_ENV.
func (e *Environment) ApplyEnvOverrides() {
	if val := os.Getenv("APP_ENV"); val != "" {
		*e = Environment(strings.ToLower(strings.TrimSpace(val)))
	}
}

func (e *Environment) ResolvePaths(_ string) {}

func (e *Environment) Validate() error {
	switch *e {
	case EnvDevelopment, EnvProduction, EnvTest:
		return nil
	}
	return fmt.Errorf("invalid environment: %q (must be development, production, or test)", string(*e))
}
