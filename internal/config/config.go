package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tech-dispatch/internal/models"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Registry RegistryConfig `mapstructure:"registry"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port          string          `mapstructure:"port" validate:"required,numeric"`
	SessionName   string          `mapstructure:"session_name" validate:"required"`
	SessionSecret string          `mapstructure:"session_secret" validate:"required,min=16"`
	SessionMaxAge time.Duration   `mapstructure:"session_max_age" validate:"required"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds how fast submissions are accepted
type RateLimitConfig struct {
	Requests float64 `mapstructure:"requests" validate:"gt=0"`
	Burst    int     `mapstructure:"burst" validate:"min=1"`
}

// DispatchConfig holds assignment settings
type DispatchConfig struct {
	// Used when the reporter's location is unavailable
	DefaultLocation LocationConfig `mapstructure:"default_location"`

	// Radius for the nearby-technicians listing
	NearbyRadiusKm float64 `mapstructure:"nearby_radius_km" validate:"gt=0"`
}

type LocationConfig struct {
	Lat float64 `mapstructure:"lat" validate:"min=-90,max=90"`
	Lon float64 `mapstructure:"lon" validate:"min=-180,max=180"`
}

func (l LocationConfig) Coordinate() (models.Coordinate, error) {
	return models.NewCoordinate(l.Lat, l.Lon)
}

// RegistryConfig selects where the technician roster comes from
type RegistryConfig struct {
	// builtin, xlsx or database
	Source string `mapstructure:"source" validate:"required,oneof=builtin xlsx database"`

	// Workbook path and sheet, for source xlsx
	Path  string `mapstructure:"path" validate:"required_if=Source xlsx"`
	Sheet string `mapstructure:"sheet"`

	// Insert the built-in roster when the database table is empty
	SeedIfEmpty bool `mapstructure:"seed_if_empty"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Connection type: "postgres" or "sqlite"
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// Full connection URL for postgres
	URL string `mapstructure:"url"`

	// SQLite path (file or ":memory:")
	Path string `mapstructure:"path"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// PORT without prefix, as most hosting platforms set it
	if port := os.Getenv("PORT"); port != "" {
		v.Set("server.port", port)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
