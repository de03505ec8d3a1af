package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AppConfig{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestAppConfig_Paths(t *testing.T) {
	c := &AppConfig{DataDir: "/data"}
	assert.Equal(t, "/data/logs", c.LogDir())
	assert.Equal(t, "/data/buildnotify.db", c.DatabasePath())
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BUILDNOTIFY_DATA_DIR", "/tmp/test-buildnotify")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SMTP_HOST", "mail.example.com")
	unsetEnv(t, "BUILDNOTIFY_PRODUCT_TAG", "BUILDNOTIFY_NOTIFIERS_FILE", "BUILDNOTIFY_LOG_RETENTION", "SMTP_PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/test-buildnotify", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "CruiseControl", cfg.ProductTag)
	assert.Equal(t, "/tmp/test-buildnotify/notifiers.yaml", cfg.NotifiersFile)
	assert.Equal(t, 720*time.Hour, cfg.LogRetention)
	assert.Equal(t, "mail.example.com", cfg.SMTPHost)
	assert.Equal(t, 25, cfg.SMTPPort)
}

// unsetEnv removes keys for the duration of the test. Empty values are not
// enough because envconfig only applies defaults to missing variables.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
