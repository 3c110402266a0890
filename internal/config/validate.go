package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateForRun checks the settings the service cannot start without.
func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}

// Warnings reports settings that do not block start-up but will make some requests fail.
func Warnings(cfg *Config) []string {
	var warnings []string

	if missing := cfg.Email.MissingCredentials(); len(missing) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"real email delivery via %s is enabled but %s not set; sends will fail",
			cfg.Email.Provider, strings.Join(missing, ", "),
		))
	}
	if cfg.CronSecret == "" && cfg.IsProduction() {
		warnings = append(warnings, "CRON_SECRET is not set; trigger endpoints are unauthenticated")
	}
	if !cfg.Redis.Enabled {
		warnings = append(warnings, "redis is disabled; deduplication and run locking are process-local")
	}
	return warnings
}
