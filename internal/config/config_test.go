package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var configEnvVars = []string{
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY", "EMBEDDING_SIZE",
	"DB_PATH", "REMOTE_URL", "REMOTE_API_KEY", "COLLECTION", "API_ADDR",
	"LOG_LEVEL", "LOG_FORMAT",
}

func saveEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string)
	for _, key := range configEnvVars {
		original[key] = os.Getenv(key)
		unsetEnv(key)
	}
	t.Cleanup(func() {
		for key, value := range original {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	saveEnv(t)

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with required fields",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "zipdex.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingSize == 768
			},
		},
		{
			name:     "missing EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "invalid EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "negative EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "-1")
			},
			wantErr: true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "zipdex.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingBaseURL == "http://localhost:8081" &&
					cfg.EmbeddingModelName == "granite-embedding-278m-multilingual" &&
					cfg.RemoteURL == "http://localhost:6333" &&
					cfg.Collection == "zipdex" &&
					cfg.APIAddr == ":9000" &&
					cfg.LogLevel == "info" &&
					cfg.LogFormat == "text"
			},
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "1024")
				setEnv("EMBEDDING_BASE_URL", "http://custom:9090")
				setEnv("EMBEDDING_MODEL_NAME", "custom-model")
				setEnv("COLLECTION", "archive")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "custom", "db.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingBaseURL == "http://custom:9090" &&
					cfg.EmbeddingModelName == "custom-model" &&
					cfg.Collection == "archive" &&
					filepath.Base(cfg.DBPath) == "db.db"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Change to a temp directory without a .env file
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir)
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			for _, key := range configEnvVars {
				unsetEnv(key)
			}

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed")
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	saveEnv(t)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data", "db.db")

	setEnv("EMBEDDING_SIZE", "768")
	setEnv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}

	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		key          string
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}
