package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the confirmation service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	LinkSecret    string
	NotifySecret  string
	NotifyURL     string
	NotifyTimeout time.Duration
	DefaultTTL    time.Duration
}

// NotifyEnabled reports whether an outbound notification endpoint is configured.
func (c Config) NotifyEnabled() bool {
	return strings.TrimSpace(c.NotifyURL) != ""
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, collecting every missing or malformed entry into a single error so
// operators see the full picture at once. The notification secret is only
// required when a notification endpoint is configured.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:confirmations.db?_pragma=busy_timeout(5000)",
		NotifyTimeout: 8 * time.Second,
		DefaultTTL:    24 * time.Hour,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CONFIRM_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CONFIRM_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONFIRM_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("CONFIRM_LINK_SECRET")); secret == "" {
		missing = append(missing, "CONFIRM_LINK_SECRET")
	} else {
		cfg.LinkSecret = secret
	}

	cfg.NotifyURL = strings.TrimSpace(os.Getenv("CONFIRM_NOTIFY_URL"))
	cfg.NotifySecret = strings.TrimSpace(os.Getenv("CONFIRM_NOTIFY_SECRET"))
	if cfg.NotifyURL != "" && cfg.NotifySecret == "" {
		missing = append(missing, "CONFIRM_NOTIFY_SECRET")
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CONFIRM_NOTIFY_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CONFIRM_NOTIFY_TIMEOUT")
		} else {
			cfg.NotifyTimeout = timeout
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CONFIRM_DEFAULT_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CONFIRM_DEFAULT_TTL")
		} else {
			cfg.DefaultTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
