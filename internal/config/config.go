package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	ESI      ESIConfig
	Sync     SyncConfig
	Logging  LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ESIConfig holds configuration for the upstream ESI API client
type ESIConfig struct {
	BaseURL           string
	UserAgent         string
	RequestTimeout    time.Duration
	RequestInterval   time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RateLimitWait     time.Duration
	MaxRateLimitWaits int
}

// SyncConfig holds configuration for the sync jobs and scheduler
type SyncConfig struct {
	Enabled        bool
	QuarterlyDays  int
	StructurePause time.Duration
	SnapshotPath   string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// ESI client defaults
	v.SetDefault("esi.baseURL", "https://esi.evetech.net/latest")
	v.SetDefault("esi.userAgent", "EVE-Trade/1.0")
	v.SetDefault("esi.requestTimeout", "30s")
	v.SetDefault("esi.requestInterval", "100ms")
	v.SetDefault("esi.maxRetries", 3)
	v.SetDefault("esi.retryBaseDelay", "1s")
	v.SetDefault("esi.rateLimitWait", "60s")
	v.SetDefault("esi.maxRateLimitWaits", 5)

	// Sync defaults
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.quarterlyDays", 90)
	v.SetDefault("sync.structurePause", "100ms")
	v.SetDefault("sync.snapshotPath", "public/data/marketTree.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
