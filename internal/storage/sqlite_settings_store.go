package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shaharia-lab/buildnotify/internal/config"
)

// SQLiteSiteSettingsStore implements config.SiteSettingsStore backed by a SQLite database.
type SQLiteSiteSettingsStore struct {
	db *sql.DB
}

// NewSQLiteSiteSettingsStore returns a new SQLiteSiteSettingsStore.
func NewSQLiteSiteSettingsStore(db *sql.DB) *SQLiteSiteSettingsStore {
	return &SQLiteSiteSettingsStore{db: db}
}

// Load returns the persisted site settings. If no row exists yet, it inserts
// an empty row and returns it.
func (s *SQLiteSiteSettingsStore) Load() (config.SiteSettings, error) {
	var ss config.SiteSettings

	ctx := context.Background()
	err := s.db.QueryRowContext(ctx, `
		SELECT email_from, dashboard_url FROM site_settings WHERE id = 1`).Scan(
		&ss.EmailFrom, &ss.DashboardURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.Save(ss); err != nil {
			return ss, fmt.Errorf("initializing default site settings: %w", err)
		}
		return ss, nil
	}
	if err != nil {
		return ss, fmt.Errorf("loading site settings: %w", err)
	}
	return ss, nil
}

// Save persists the site settings (single row, id=1).
func (s *SQLiteSiteSettingsStore) Save(settings config.SiteSettings) error {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_settings (id, email_from, dashboard_url)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email_from = excluded.email_from,
			dashboard_url = excluded.dashboard_url`,
		settings.EmailFrom, settings.DashboardURL,
	)
	if err != nil {
		return fmt.Errorf("saving site settings: %w", err)
	}
	return nil
}
