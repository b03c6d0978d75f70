package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", DBName: "returns_db", SSLMode: "disable"},
		App:      AppConfig{Environment: "development"},
		Notifications: NotificationConfig{
			Workers:   2,
			QueueSize: 100,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database host is required"},
		{"missing db name", func(c *Config) { c.Database.DBName = "" }, "database name is required"},
		{"production without jwt secret", func(c *Config) {
			c.App.Environment = "production"
			c.Nuvemshop.StateSecret = "state"
		}, "JWT secret is required"},
		{"production without state secret", func(c *Config) {
			c.App.Environment = "production"
			c.App.JWTSecret = "jwt"
		}, "OAuth state secret is required"},
		{"production with secrets", func(c *Config) {
			c.App.Environment = "production"
			c.App.JWTSecret = "jwt"
			c.Nuvemshop.StateSecret = "state"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateClampsNotificationSizing(t *testing.T) {
	cfg := validConfig()
	cfg.Notifications = NotificationConfig{Workers: 0, QueueSize: -5}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Notifications.Workers)
	assert.Equal(t, 1, cfg.Notifications.QueueSize)
}

func TestDerivedValues(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "secret"

	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=returns_db sslmode=disable", cfg.GetDatabaseDSN())
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	assert.False(t, cfg.IsProduction())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("RETURNS_TEST_INT", "42")
	t.Setenv("RETURNS_TEST_BAD_INT", "forty")
	t.Setenv("RETURNS_TEST_BOOL", "true")

	assert.Equal(t, 42, getEnvAsInt("RETURNS_TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("RETURNS_TEST_BAD_INT", 1))
	assert.True(t, getEnvBool("RETURNS_TEST_BOOL", false))
	assert.False(t, getEnvBool("RETURNS_TEST_UNSET_BOOL", false))
	assert.Equal(t, "fallback", getEnv("RETURNS_TEST_UNSET", "fallback"))
}
