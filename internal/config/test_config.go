package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig reads the TEST_DB_* variables used by integration tests.
// When TEST_DB_HOST is unset an empty Config is returned and the test suite
// is expected to skip itself.
func LoadTestConfig() (*Config, error) {
	// .env is optional; tests run from the package directory
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	if cfg.Database.Host == "" {
		return cfg, nil
	}

	dbPortStr := os.Getenv("TEST_DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "3306"
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	cfg.Database.User = os.Getenv("TEST_DB_USER")
	if cfg.Database.User == "" {
		cfg.Database.User = "root"
	}
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")

	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "securelearn_test"
	}

	return cfg, nil
}
