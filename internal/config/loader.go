package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	Timezone        string
	SMTPAddr        string
	SenderEmail     string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// the entries that are present. Mail delivery stays disabled until both
// ROOMBOOKING_SMTP_ADDR and ROOMBOOKING_SENDER_EMAIL are set.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:roombooking.db",
		Timezone:        "UTC",
		ShutdownTimeout: 10 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("ROOMBOOKING_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "ROOMBOOKING_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	smtpAddr := strings.TrimSpace(os.Getenv("ROOMBOOKING_SMTP_ADDR"))
	senderEmail := strings.TrimSpace(os.Getenv("ROOMBOOKING_SENDER_EMAIL"))
	if smtpAddr != "" && senderEmail == "" {
		missing = append(missing, "ROOMBOOKING_SENDER_EMAIL")
	}
	if smtpAddr == "" && senderEmail != "" {
		missing = append(missing, "ROOMBOOKING_SMTP_ADDR")
	}
	cfg.SMTPAddr = smtpAddr
	cfg.SenderEmail = senderEmail

	if timeoutValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "ROOMBOOKING_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
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

// Location resolves the configured timezone. Load already validated the name.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MailEnabled reports whether outgoing mail is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPAddr != "" && c.SenderEmail != ""
}
