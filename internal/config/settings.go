package config

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"
)

// SiteSettings holds the site-wide notification defaults.
type SiteSettings struct {
	EmailFrom    string `json:"email_from"`
	DashboardURL string `json:"dashboard_url"`
}

// LockedError is returned by SettingsManager.Update when a field set through
// the environment would change.
type LockedError struct {
	Field string
	Env   string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s is locked by environment variable %s", e.Field, e.Env)
}

// SiteSettingsStore defines the interface for persisting site settings.
type SiteSettingsStore interface {
	Load() (SiteSettings, error)
	Save(settings SiteSettings) error
}

// SettingsManager loads and saves site settings via a SiteSettingsStore, and
// exposes which fields are locked by environment variables. It is safe for
// concurrent use; notifiers read it on every send.
type SettingsManager struct {
	store    SiteSettingsStore
	mu       sync.RWMutex
	settings SiteSettings
	locked   map[string]string // field name → env var name
}

// NewSettingsManager creates a SettingsManager backed by the given store.
// Fields that are set via AppConfig environment variables are marked as locked.
func NewSettingsManager(store SiteSettingsStore, cfg *AppConfig) (*SettingsManager, error) {
	m := &SettingsManager{
		store:  store,
		locked: make(map[string]string),
	}

	if cfg.EmailFrom != "" && os.Getenv(EnvEmailFrom) != "" {
		m.locked["email_from"] = EnvEmailFrom
	}
	if cfg.DashboardURL != "" && os.Getenv(EnvDashboardURL) != "" {
		m.locked["dashboard_url"] = EnvDashboardURL
	}

	settings, err := m.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	m.settings = settings

	// Apply env-locked overrides so Get() always returns env values for locked fields.
	if _, ok := m.locked["email_from"]; ok {
		m.settings.EmailFrom = cfg.EmailFrom
	}
	if _, ok := m.locked["dashboard_url"]; ok {
		m.settings.DashboardURL = cfg.DashboardURL
	}

	return m, nil
}

// Get returns a copy of the current settings (env-locked fields return env value).
func (m *SettingsManager) Get() SiteSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// DefaultFromAddress returns the site default sender address.
func (m *SettingsManager) DefaultFromAddress() string {
	return strings.TrimSpace(m.Get().EmailFrom)
}

// DashboardURL returns the dashboard base URL, or "" when unset.
func (m *SettingsManager) DashboardURL() string {
	return strings.TrimSpace(m.Get().DashboardURL)
}

// Locked returns the map of field names to env var names for locked settings.
func (m *SettingsManager) Locked() map[string]string {
	result := make(map[string]string, len(m.locked))
	maps.Copy(result, m.locked)
	return result
}

// Update persists incoming. It returns an error if the caller attempts to
// change a locked field.
func (m *SettingsManager) Update(incoming SiteSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if env, ok := m.locked["email_from"]; ok {
		if incoming.EmailFrom != "" && incoming.EmailFrom != m.settings.EmailFrom {
			return &LockedError{Field: "email_from", Env: env}
		}
		incoming.EmailFrom = m.settings.EmailFrom
	}
	if env, ok := m.locked["dashboard_url"]; ok {
		if incoming.DashboardURL != "" && incoming.DashboardURL != m.settings.DashboardURL {
			return &LockedError{Field: "dashboard_url", Env: env}
		}
		incoming.DashboardURL = m.settings.DashboardURL
	}

	if err := m.store.Save(incoming); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	m.settings = incoming
	return nil
}
