package config

import (
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from TEST_* variables.
// When the TEST_DB_* variables are incomplete it returns a Config with an empty
// database section, so tests can fall back to a containerized database.
func LoadTestConfig() (*Config, error) {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	if err := loadDatabase(cfg, "TEST_"); err != nil {
		cfg.Database = DatabaseConfig{}
	}

	cfg.JWT.Secret = stringEnv("TEST_JWT_SECRET", "test-secret-key-for-integration-tests")
	cfg.JWT.Issuer = "kbti-test"

	accessExpiry, err := time.ParseDuration(stringEnv("TEST_JWT_ACCESS_TOKEN_EXPIRY", "1h"))
	if err != nil {
		return nil, err
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry
	cfg.APIKey = stringEnv("TEST_API_KEY", "test-api-key")
	cfg.MigrationsPath = stringEnv("TEST_MIGRATIONS_PATH", "../../migrations")

	return cfg, nil
}
