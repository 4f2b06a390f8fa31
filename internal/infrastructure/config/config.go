// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Values from .env and .env.local are exported into the environment first,
// so both the YAML ${VAR} expansion and the fallback can see them.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	days := cfg.Birthdays.DefaultDays
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied to fields left empty.
const (
	DefaultDatabasePath = "contacts.db"
	DefaultPort         = 8080
	DefaultBirthdayDays = 7
	DefaultTimezone     = "Local"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Birthdays     BirthdaysConfig     `yaml:"birthdays"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,url"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
}

// BirthdaysConfig holds settings for the upcoming birthdays query
type BirthdaysConfig struct {
	DefaultDays int `yaml:"default_days" validate:"min=0,max=36600"`
	// Timezone decides what "today" is. "Local" or an IANA name.
	Timezone string `yaml:"timezone" validate:"location"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Location resolves the configured timezone.
func (b BirthdaysConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(b.Timezone)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("location", func(fl validator.FieldLevel) bool {
			tz := fl.Field().String()
			if tz == "" {
				return true
			}
			_, err := time.LoadLocation(tz)
			return err == nil
		})
	})
	return validate
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if err := configValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadDotEnv exports variables from .env files into the environment.
// Variables already set are kept; missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${CONTACTS_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	// Start from defaults so keys missing from the file keep them
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	cfg := Config{
		Birthdays: BirthdaysConfig{DefaultDays: DefaultBirthdayDays},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("CONTACTS_PORT", DefaultPort),
			AllowedOrigins: getEnvList("CONTACTS_ALLOWED_ORIGINS"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("CONTACTS_DB_PATH", DefaultDatabasePath),
		},
		Birthdays: BirthdaysConfig{
			DefaultDays: getEnvInt("BIRTHDAYS_DEFAULT_DAYS", DefaultBirthdayDays),
			Timezone:    getEnv("BIRTHDAYS_TIMEZONE", DefaultTimezone),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.Birthdays.Timezone == "" {
		c.Birthdays.Timezone = DefaultTimezone
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvList splits a comma-separated environment variable
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
