package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	for _, key := range []string{"vector_len", "matrix_size", "repeat"} {
		if viper.IsSet(key) {
			if v := viper.GetInt(key); v <= 0 {
				errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", key, v))
			}
		}
	}

	if viper.IsSet("tolerance") {
		if tol := viper.GetFloat64("tolerance"); tol < 0 {
			errors = append(errors, fmt.Sprintf("tolerance must not be negative, got: %g", tol))
		}
	}

	for _, key := range []string{"threshold", "fail_threshold"} {
		if viper.IsSet(key) {
			if v := viper.GetFloat64(key); v < 0 {
				errors = append(errors, fmt.Sprintf("%s must not be negative, got: %g", key, v))
			}
		}
	}

	if viper.IsSet("store.type") {
		switch t := strings.ToLower(viper.GetString("store.type")); t {
		case "", "sqlite", "sqlite3", "json", "file":
		case "postgres", "postgresql":
			if viper.GetString("store.dsn") == "" {
				errors = append(errors, "store.dsn is required for the postgres store")
			}
		default:
			errors = append(errors, fmt.Sprintf("store.type must be one of sqlite, postgres, json, got: %s", t))
		}
	}

	// Validate metrics_addr (if set, must be host:port with a valid port)
	if addr := viper.GetString("metrics_addr"); addr != "" {
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			errors = append(errors, fmt.Sprintf("metrics_addr must be host:port, got: %s", addr))
		} else if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
			errors = append(errors, fmt.Sprintf("metrics_addr port must be between 1 and 65535, got: %s", port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}
