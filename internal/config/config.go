// Package config loads application configuration from the environment,
// with optional .env file support.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	EmbeddingSize      int
	DBPath             string
	RemoteURL          string
	RemoteAPIKey       string
	Collection         string
	APIAddr            string
	LogLevel           string
	LogFormat          string
}

// Load reads configuration from environment variables and returns a
// Config struct. A .env file in the current directory or an ancestor
// (up to the project root) is loaded first; variables already set in
// the environment take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env next to the project root
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		DBPath:             getEnv("DB_PATH", "./data/zipdex.db"),
		RemoteURL:          getEnv("REMOTE_URL", "http://localhost:6333"),
		RemoteAPIKey:       getEnv("REMOTE_API_KEY", ""),
		Collection:         getEnv("COLLECTION", "zipdex"),
		APIAddr:            getEnv("API_ADDR", ":9000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// The embedding size must match the model's output dimension. If the
	// size changes, the remote collection must be recreated.
	sizeStr := getEnv("EMBEDDING_SIZE", "")
	if sizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_SIZE is required")
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_SIZE must be a valid integer: %w", err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("EMBEDDING_SIZE must be greater than 0")
	}
	cfg.EmbeddingSize = size

	// Create the data directory up front so the first build can open
	// the catalog.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
