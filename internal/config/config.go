package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Upstream  UpstreamConfig
	Snapshot  SnapshotConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	MaxUpload int64 // Maximum statement upload size in bytes
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// UpstreamConfig points at the aggregation service that builds snapshots.
type UpstreamConfig struct {
	BaseURL     string
	Timeout     time.Duration
	ExternalURL string // Statement download page returned by /api/config
}

// SnapshotConfig controls how cached snapshots are stored.
type SnapshotConfig struct {
	EncryptionKey string // Fernet key; empty stores snapshots in plain JSON
}

// SchedulerConfig holds cron schedules. An empty schedule disables the job.
type SchedulerConfig struct {
	NAVRefresh string
}

// LoggingConfig holds zerolog settings
type LoggingConfig struct {
	Level  string
	Pretty bool
}

const defaultExternalURL = "https://www.camsonline.com/Investors/Statements/Consolidated-Account-Statement"

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getDuration("UPSTREAM_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, err
	}
	pretty, err := getBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}
	maxUploadMB, err := getInt("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_analytics.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Upstream: UpstreamConfig{
			BaseURL:     strings.TrimRight(getEnv("UPSTREAM_URL", "http://localhost:5000"), "/"),
			Timeout:     timeout,
			ExternalURL: getEnv("EXTERNAL_STATEMENT_URL", defaultExternalURL),
		},
		Snapshot: SnapshotConfig{
			EncryptionKey: os.Getenv("SNAPSHOT_ENCRYPTION_KEY"),
		},
		Scheduler: SchedulerConfig{
			NAVRefresh: os.Getenv("NAV_REFRESH_SCHEDULE"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
		MaxUpload: int64(maxUploadMB) << 20,
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getList splits a comma-separated variable, dropping blanks.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration such as 90s", key, value)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", key, value)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, value)
	}
	return n, nil
}
