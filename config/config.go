package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// AI gateway configuration
	AIAPIKey string
	AIAPIURL string
	AIModel  string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI, Test:
		loadEnvConfig(cfg)
	case Development:
		loadEnvConfig(cfg)
		// Docker secrets override plain env vars when present
		overlaySecrets(cfg)
	case Production:
		loadSecretsConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyAIDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig loads configuration from environment variables
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.AIAPIKey = os.Getenv("AI_API_KEY")
	cfg.AIAPIURL = os.Getenv("AI_API_URL")
	cfg.AIModel = os.Getenv("AI_MODEL")
}

// loadSecretsConfig loads configuration for production using ONLY Docker secrets
func loadSecretsConfig(cfg *Config) {
	cfg.ServerPort = readSecret("server_port")
	cfg.ServerHost = readSecret("server_host")
	cfg.DBHost = readSecret("db_host")
	cfg.DBPort = readSecret("db_port")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = readSecret("db_name")
	cfg.DBSSLMode = readSecret("db_ssl_mode")
	cfg.RedisHost = readSecret("redis_host")
	cfg.RedisPort = readSecret("redis_port")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.AIAPIKey = readSecret("ai_api_key")
	cfg.AIAPIURL = readSecret("ai_api_url")
	cfg.AIModel = readSecret("ai_model")
}

// overlaySecrets replaces sensitive values with Docker secrets when available
func overlaySecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("ai_api_key"); v != "" {
		cfg.AIAPIKey = v
	}
}

// applyAIDefaults fills gateway defaults and supports file-based API keys
func applyAIDefaults(cfg *Config) {
	if cfg.AIAPIKey == "" {
		if keyFile := os.Getenv("AI_API_KEY_FILE"); keyFile != "" {
			if data, err := os.ReadFile(keyFile); err == nil {
				cfg.AIAPIKey = strings.TrimSpace(string(data))
			}
		}
	}
	if cfg.AIAPIURL == "" {
		cfg.AIAPIURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	}
	if cfg.AIModel == "" {
		cfg.AIModel = "google/gemini-2.5-flash"
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
