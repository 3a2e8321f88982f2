// Package config provides configuration for the application
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
	Database       DatabaseConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	JWT            JWTConfig
	RateLimit      RateLimitConfig
	APIKey         string
	MigrationsPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           int
	MaxRequestSize int64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

// RateLimitConfig holds per-IP rate limiting settings
type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	godotenv.Load()

	cfg := &Config{}

	if err := loadDatabase(cfg, ""); err != nil {
		return nil, err
	}

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	maxRequestSize, err := intEnv("MAX_REQUEST_SIZE", 1<<20)
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxRequestSize = int64(maxRequestSize)

	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret
	cfg.JWT.Issuer = stringEnv("JWT_ISSUER", "kbti")

	accessExpiry, err := time.ParseDuration(stringEnv("JWT_ACCESS_TOKEN_EXPIRY", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	rpm, err := intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.RequestsPerMinute = rpm

	// Maintenance routes are only mounted when an API key is configured
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.MigrationsPath = stringEnv("MIGRATIONS_PATH", "migrations")

	return cfg, nil
}

// loadDatabase reads the DB_* variables, each prefixed with prefix
func loadDatabase(cfg *Config, prefix string) error {
	dbHost := os.Getenv(prefix + "DB_HOST")
	if dbHost == "" {
		return fmt.Errorf("%sDB_HOST is required", prefix)
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv(prefix + "DB_PORT")
	if dbPortStr == "" {
		return fmt.Errorf("%sDB_PORT is required", prefix)
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return fmt.Errorf("invalid %sDB_PORT: %w", prefix, err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv(prefix + "DB_USER")
	if dbUser == "" {
		return fmt.Errorf("%sDB_USER is required", prefix)
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv(prefix + "DB_PASSWORD")
	if dbPassword == "" {
		return fmt.Errorf("%sDB_PASSWORD is required", prefix)
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv(prefix + "DB_NAME")
	if dbName == "" {
		return fmt.Errorf("%sDB_NAME is required", prefix)
	}
	cfg.Database.DBName = dbName

	return nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// parseOrigins splits a comma-separated origin list, allowing all origins when empty
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// DSN returns the database connection string.
// clientFoundRows makes UPDATE report matched rows instead of changed rows,
// which the conditional state transitions rely on.
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
