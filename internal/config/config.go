package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopetro/internal/errors"

	"gopkg.in/yaml.v3"
)

// Data source kinds
const (
	SourceFile      = "file"
	SourcePostgres  = "postgres"
	SourceSQLite    = "sqlite"
	SourceSynthetic = "synthetic"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
	Profiling ProfilingConfig `yaml:"profiling"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// DataConfig selects and tunes the sample source
type DataConfig struct {
	Source          string        `yaml:"source"`
	File            string        `yaml:"file"`
	Sheet           string        `yaml:"sheet"`
	SyntheticCount  int           `yaml:"synthetic_count"`
	SyntheticSeed   int64         `yaml:"synthetic_seed"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	WatchFile       bool          `yaml:"watch_file"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	SamplesTable string `yaml:"samples_table"`
}

// SessionConfig holds view-session settings
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProfilingConfig holds the admin/pprof server settings
type ProfilingConfig struct {
	Port    string `yaml:"port"`
	Enabled bool   `yaml:"enabled"`
}

// Load reads configuration from environment variables, applies the optional
// YAML overlay named by CONFIG_FILE, and validates the result
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Database:  *loadDatabaseConfig(),
		Session:   *loadSessionConfig(),
		Logging:   LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
		Profiling: *loadProfilingConfig(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(config, path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// applyFile overlays the YAML file at path onto config. Keys absent from the
// file keep their environment values.
func applyFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source:          strings.ToLower(getEnvOrDefault("DATA_SOURCE", SourceSynthetic)),
		File:            getEnvOrDefault("DATA_FILE", ""),
		Sheet:           getEnvOrDefault("DATA_SHEET", ""),
		SyntheticCount:  getEnvIntOrDefault("SYNTHETIC_COUNT", 200),
		SyntheticSeed:   int64(getEnvIntOrDefault("SYNTHETIC_SEED", 42)),
		RefreshInterval: getEnvDurationOrDefault("REFRESH_INTERVAL", 0),
		WatchFile:       getEnvBoolOrDefault("WATCH_FILE", true),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:          getEnvOrDefault("DATABASE_URL", ""),
		SamplesTable: getEnvOrDefault("SAMPLES_TABLE", "core_samples"),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		TTL: getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("ADMIN_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}

	config.Data.Source = strings.ToLower(config.Data.Source)
	switch config.Data.Source {
	case SourceFile:
		if config.Data.File == "" {
			return errors.ConfigInvalid("DATA_FILE is required when DATA_SOURCE=file")
		}
	case SourcePostgres, SourceSQLite:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATA_SOURCE=" + config.Data.Source)
		}
		if !validTableName(config.Database.SamplesTable) {
			return errors.ConfigInvalid("SAMPLES_TABLE must be a plain identifier")
		}
	case SourceSynthetic:
		if config.Data.SyntheticCount <= 0 {
			return errors.ConfigInvalid("SYNTHETIC_COUNT must be positive")
		}
	default:
		return errors.ConfigInvalid("unknown DATA_SOURCE " + config.Data.Source)
	}

	if config.Data.RefreshInterval < 0 {
		return errors.ConfigInvalid("REFRESH_INTERVAL cannot be negative")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	return nil
}

// validTableName accepts [A-Za-z_][A-Za-z0-9_]*, the table name is spliced into SQL
func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
