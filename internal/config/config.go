package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	App           AppConfig
	Redis         RedisConfig
	NatsURL       string
	MelhorEnvio   MelhorEnvioConfig
	Nuvemshop     NuvemshopConfig
	Resend        ResendConfig
	Notifications NotificationConfig
	CacheTTL      time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string
	LogLevel    string
	JWTSecret   string
}

// RedisConfig holds the optional query cache backend
type RedisConfig struct {
	URL      string
	Password string
}

// MelhorEnvioConfig holds carrier aggregator credentials
type MelhorEnvioConfig struct {
	Token      string
	UseSandbox bool
	BaseURL    string // overrides the production/sandbox URL when set
}

// NuvemshopConfig holds commerce platform app credentials
type NuvemshopConfig struct {
	ClientID     string
	ClientSecret string
	AuthBaseURL  string
	APIBaseURL   string
	StateSecret  string
	StateTTL     time.Duration
}

// ResendConfig holds transactional email settings
type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
}

// NotificationConfig sizes the background notification executor
type NotificationConfig struct {
	Workers   int
	QueueSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: secrets.GetDBPassword(),
			DBName:   getEnv("DB_NAME", "returns_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			JWTSecret:   secrets.GetJWTSecret(),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: secrets.GetRedisPassword(),
		},
		NatsURL: getEnv("NATS_URL", "nats://nats.nats.svc.cluster.local:4222"),
		MelhorEnvio: MelhorEnvioConfig{
			Token:      secrets.GetSecretOrEnv("MELHOR_ENVIO_TOKEN_SECRET_NAME", "MELHOR_ENVIO_TOKEN", ""),
			UseSandbox: getEnvBool("MELHOR_ENVIO_SANDBOX", false),
			BaseURL:    getEnv("MELHOR_ENVIO_BASE_URL", ""),
		},
		Nuvemshop: NuvemshopConfig{
			ClientID:     getEnv("NUVEMSHOP_CLIENT_ID", ""),
			ClientSecret: secrets.GetSecretOrEnv("NUVEMSHOP_CLIENT_SECRET_NAME", "NUVEMSHOP_CLIENT_SECRET", ""),
			AuthBaseURL:  getEnv("NUVEMSHOP_AUTH_BASE_URL", "https://www.tiendanube.com"),
			APIBaseURL:   getEnv("NUVEMSHOP_API_BASE_URL", "https://api.tiendanube.com/v1"),
			StateSecret:  secrets.GetSecretOrEnv("OAUTH_STATE_SECRET_NAME", "OAUTH_STATE_SECRET", ""),
			StateTTL:     time.Duration(getEnvAsInt("OAUTH_STATE_TTL_MINUTES", 15)) * time.Minute,
		},
		Resend: ResendConfig{
			APIKey:  secrets.GetSecretOrEnv("RESEND_API_KEY_SECRET_NAME", "RESEND_API_KEY", ""),
			BaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			From:    getEnv("NOTIFICATION_FROM", "Notificações <onboarding@resend.dev>"),
		},
		Notifications: NotificationConfig{
			Workers:   getEnvAsInt("NOTIFICATION_WORKERS", 2),
			QueueSize: getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 100),
		},
		CacheTTL: time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the configuration can actually serve requests
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.IsProduction() {
		if c.App.JWTSecret == "" {
			return fmt.Errorf("JWT secret is required in production")
		}
		if c.Nuvemshop.StateSecret == "" {
			return fmt.Errorf("OAuth state secret is required in production")
		}
	}
	if c.Notifications.Workers < 1 {
		c.Notifications.Workers = 1
	}
	if c.Notifications.QueueSize < 1 {
		c.Notifications.QueueSize = 1
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
