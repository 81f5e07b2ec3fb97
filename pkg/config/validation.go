package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization is handled in ApplyDefaults; validation accepts
// both cases.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs validation that can't be expressed in tags.
func validateCustomRules(cfg *Config) error {
	http := &cfg.Adapters.HTTP

	if !http.Enabled {
		return fmt.Errorf("adapters: at least one adapter must be enabled")
	}
	if http.Port < 1 {
		return fmt.Errorf("adapters.http.port: must be 1-65535, got %d", http.Port)
	}
	if http.Threads < 1 {
		return fmt.Errorf("adapters.http.threads: must be >= 1, got %d", http.Threads)
	}
	if http.Backlog < 1 {
		return fmt.Errorf("adapters.http.backlog: must be >= 1, got %d", http.Backlog)
	}
	if http.Timeout < time.Millisecond {
		return fmt.Errorf("adapters.http.timeout: %v is below 1ms; give a unit, e.g. 1000ms or 1s", http.Timeout)
	}

	if cfg.Server.Metrics.Enabled && cfg.Server.Metrics.Port == http.Port {
		return fmt.Errorf("server.metrics.port: %d is already used by the HTTP adapter", http.Port)
	}

	if cfg.Stats.Type == "badger" {
		path, _ := cfg.Stats.Badger["db_path"].(string)
		inMemory, _ := cfg.Stats.Badger["in_memory"].(bool)
		if path == "" && !inMemory {
			return fmt.Errorf("stats.badger.db_path: required when stats.type is badger")
		}
	}

	if http.HTMLRoot == "" {
		return fmt.Errorf("adapters.http.html_root: must not be empty")
	}
	if info, err := os.Stat(http.HTMLRoot); err == nil && !info.IsDir() {
		return fmt.Errorf("adapters.http.html_root: %s is not a directory", http.HTMLRoot)
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
