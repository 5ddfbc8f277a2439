package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Scoring   ScoringConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Dashboard DashboardConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig controls logrus level and output format
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// ScoringConfig holds the weighted scorer's weights, keyed by feature name
type ScoringConfig struct {
	Weights map[string]float64 `mapstructure:"weights"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // only "memory" for now
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int     `mapstructure:"per_ip"` // requests per minute per client IP, 0 disables
	Client float64 `mapstructure:"client"` // dashboard -> API requests per second
}

// DatabaseConfig holds the SQLite location for account storage
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// DashboardConfig configures how the dashboard reaches the scoring API
type DashboardConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into an existing viper instance. Callers that
// bind command-line flags do so before calling it.
func LoadWith(v *viper.Viper) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sodam/")

	v.SetEnvPrefix("SODAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Dashboard.APIBaseURL == "" {
		config.Dashboard.APIBaseURL = "http://127.0.0.1:" + config.Server.Port
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if there is one.
// Variables already present in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return gotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("scoring.weights", map[string]float64{
		"foot_traffic":     0.35,
		"competitors_500m": -0.25,
		"avg_income":       0.20,
		"rent_cost":        -0.10,
		"age_20s_ratio":    0.10,
	})

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.client", 5.0)

	v.SetDefault("database.path", "instance/sodam.db")

	v.SetDefault("auth.jwt_secret", "dev-jwt-secret-change-me")
	v.SetDefault("auth.token_ttl", "15m")

	v.SetDefault("dashboard.api_base_url", "")
	v.SetDefault("dashboard.request_timeout", "0s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set SODAM_SERVER_PORT)")
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.Logging.Format != "text" && config.Logging.Format != "json" {
		return fmt.Errorf("logging format must be 'text' or 'json', got: %s", config.Logging.Format)
	}

	if len(config.Scoring.Weights) == 0 {
		return fmt.Errorf("at least one scoring weight is required")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set SODAM_AUTH_JWT_SECRET)")
	}

	if config.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token TTL must be positive, got: %s", config.Auth.TokenTTL)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set SODAM_DATABASE_PATH)")
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Client < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}
