package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePort validates a TCP port number
func (v *Validator) ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateThrottle validates login throttle thresholds
func (v *Validator) ValidateThrottle(maxAttempts int, window, block time.Duration) error {
	if maxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", maxAttempts)
	}
	if window <= 0 {
		return fmt.Errorf("window must be positive, got %s", window)
	}
	if block <= 0 {
		return fmt.Errorf("block must be positive, got %s", block)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateDirectory checks that path exists and is a directory
func (v *Validator) ValidateDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// ValidateConfig collects every problem instead of stopping at the first.
// Missing credentials are reported here but not by Config.Validate, since
// the gateway can start without them and answers logins with an error.
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errs []error

	if err := v.ValidatePort(cfg.Server.Port); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if cfg.Paths.BaseDir == "" {
		errs = append(errs, fmt.Errorf("paths.base_dir is required"))
	} else if err := v.ValidateDirectory(cfg.Paths.BaseDir); err != nil {
		errs = append(errs, fmt.Errorf("paths.base_dir: %w", err))
	}
	if err := v.ValidateThrottle(cfg.Auth.MaxAttempts, cfg.Auth.Window, cfg.Auth.Block); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}
	if cfg.Auth.Password == "" {
		errs = append(errs, fmt.Errorf("auth.password is not set; logins will be refused"))
	}
	if cfg.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret is not set"))
	}
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if cfg.Server.StaticDir != "" {
		if err := v.ValidateDirectory(cfg.Server.StaticDir); err != nil {
			errs = append(errs, fmt.Errorf("server.static_dir: %w", err))
		}
	}

	return errs
}
