package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment variables that lock site settings when set.
const (
	EnvEmailFrom    = "BUILDNOTIFY_EMAIL_FROM"
	EnvDashboardURL = "BUILDNOTIFY_DASHBOARD_URL"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8995.
	Port int `envconfig:"PORT" default:"8995"`

	// DataDir is the root data directory. Defaults to ~/.buildnotify.
	DataDir string `envconfig:"BUILDNOTIFY_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// ProductTag is the bracketed prefix of every subject line.
	ProductTag string `envconfig:"BUILDNOTIFY_PRODUCT_TAG" default:"CruiseControl"`

	// EmailFrom is the site default sender. Setting it locks the value
	// against changes through the API.
	EmailFrom string `envconfig:"BUILDNOTIFY_EMAIL_FROM"`

	// DashboardURL is the base URL of the build dashboard. Setting it locks
	// the value against changes through the API.
	DashboardURL string `envconfig:"BUILDNOTIFY_DASHBOARD_URL"`

	// DashboardNote replaces the note appended to e-mails sent while no
	// dashboard URL is configured.
	DashboardNote string `envconfig:"BUILDNOTIFY_DASHBOARD_NOTE"`

	// NotifiersFile seeds project notifiers on first start. Defaults to
	// <DataDir>/notifiers.yaml.
	NotifiersFile string `envconfig:"BUILDNOTIFY_NOTIFIERS_FILE"`

	// LogRetention is how long delivery log entries are kept.
	LogRetention time.Duration `envconfig:"BUILDNOTIFY_LOG_RETENTION" default:"720h"`

	// SMTP connection parameters for outgoing mail.
	SMTPHost       string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"25"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"none"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.buildnotify if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".buildnotify")
	}
	if c.NotifiersFile == "" {
		c.NotifiersFile = filepath.Join(c.DataDir, "notifiers.yaml")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (<DataDir>/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DatabasePath returns the path to the SQLite database.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "buildnotify.db")
}
