package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironment_Lifecycle(t *testing.T) {
	var env Environment
	env.ApplyDefaults()
	assert.Equal(t, EnvDevelopment, env)
	assert.False(t, env.IsProduction())

	t.Setenv("APP_ENV", " Production ")
	env.ApplyEnvOverrides()
	assert.Equal(t, EnvProduction, env)
	assert.True(t, env.IsProduction())
	assert.NoError(t, env.Validate())
}

func TestEnvironment_Validate(t *testing.T) {
	for _, env := range []Environment{EnvDevelopment, EnvProduction, EnvTest} {
		assert.NoError(t, env.Validate(), string(env))
	}

	bad := Environment("staging")
	assert.ErrorContains(t, bad.Validate(), `invalid environment: "staging"`)
}
