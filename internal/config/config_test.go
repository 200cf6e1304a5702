package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:          "development",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBPassword:   "secure-password",
		DBSSLMode:    "require",
		Port:         "8080",
		RedisURL:     "redis://localhost:6379",
		DBSchemaMode: "hybrid",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateEnums(t *testing.T) {
	c := validConfig()
	c.DBSchemaMode = "magic"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.TracingExporter = "zipkin"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.TracingSamplerRatio = 1.5
	assert.Error(t, c.Validate())
}

func TestConfig_Helpers(t *testing.T) {
	c := validConfig()
	c.AllowedOrigins = " http://a.test , ,http://b.test"
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())

	assert.Equal(t, 7*24*time.Hour, c.SessionTTL())
	c.SessionTTLHours = 2
	assert.Equal(t, 2*time.Hour, c.SessionTTL())
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_SCHEMA_MODE", " SQL ")
	t.Setenv("PORT", "9191")
	t.Setenv("SESSION_TTL_HOURS", "12")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sql", c.DBSchemaMode)
	assert.Equal(t, "9191", c.Port)
	assert.Equal(t, 12*time.Hour, c.SessionTTL())
}
