package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that all values the server cannot run without are set
func ValidateConfig(cfg *Config) error {
	var errors []string

	required := map[string]string{
		"server port": cfg.ServerPort,
		"db host":     cfg.DBHost,
		"db port":     cfg.DBPort,
		"db user":     cfg.DBUser,
		"db password": cfg.DBPassword,
		"db name":     cfg.DBName,
		"jwt secret":  cfg.JWTSecret,
		"ai api key":  cfg.AIAPIKey,
	}
	for field, value := range required {
		if value == "" {
			errors = append(errors, fmt.Sprintf("required value %s is not set", field))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
