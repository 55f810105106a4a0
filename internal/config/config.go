package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	ServerPort       string
	DatabaseURL      string
	RedisURL         string
	BlobRoot         string
	MaxItemsPerOwner int
	DefaultPageSize  int
}

func LoadConfig() (*Config, error) {
	maxItems, err := getEnvInt("MAX_ITEMS_PER_OWNER", 200)
	if err != nil {
		return nil, err
	}
	pageSize, err := getEnvInt("DEFAULT_PAGE_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		BlobRoot:         os.Getenv("BLOB_ROOT"),
		MaxItemsPerOwner: maxItems,
		DefaultPageSize:  pageSize,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.BlobRoot == "" {
		return nil, errors.New("BLOB_ROOT is required")
	}
	if cfg.MaxItemsPerOwner <= 0 {
		return nil, errors.New("MAX_ITEMS_PER_OWNER must be positive")
	}
	if cfg.DefaultPageSize <= 0 {
		return nil, errors.New("DEFAULT_PAGE_SIZE must be positive")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, value)
	}
	return n, nil
}
