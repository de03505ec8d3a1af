package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.
)

type migration struct {
	version int
	sql     string
}

// migrations are applied in order, each exactly once. schema_migrations
// records the versions already applied.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE site_settings (
    id            INTEGER PRIMARY KEY CHECK (id = 1),
    email_from    TEXT NOT NULL DEFAULT '',
    dashboard_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE project_notifiers (
    project      TEXT PRIMARY KEY,
    recipients   TEXT NOT NULL DEFAULT '[]',
    from_address TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL
);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE notification_log (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    dispatch_id     TEXT NOT NULL,
    project         TEXT NOT NULL DEFAULT '',
    build_label     INTEGER NOT NULL DEFAULT 0,
    event_type      TEXT NOT NULL,
    provider        TEXT NOT NULL DEFAULT '',
    subject         TEXT NOT NULL DEFAULT '',
    recipient_count INTEGER NOT NULL DEFAULT 0,
    status          TEXT NOT NULL,
    error_msg       TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL
);
CREATE INDEX idx_notification_log_created ON notification_log(created_at);
CREATE INDEX idx_notification_log_project ON notification_log(project, build_label);
`,
	},
}

// pragmas are applied to every connection opened by OpenDB.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// OpenDB opens the notifier database at dbPath, creating the file and its
// directory when missing, and brings the schema up to date. fresh reports
// whether the schema was created by this call, which is when the notifiers
// file gets seeded.
func OpenDB(ctx context.Context, dbPath string) (db *sql.DB, fresh bool, err error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, false, fmt.Errorf("creating database directory: %w", err)
	}

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, false, fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, db.Close())
		}
	}()

	// One connection: SQLite allows a single writer and the notifier
	// writes far less than it waits on SMTP.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return nil, false, fmt.Errorf("setting %q: %w", p, err)
		}
	}

	fresh, err = migrate(ctx, db)
	if err != nil {
		return nil, false, fmt.Errorf("migrating schema: %w", err)
	}
	return db, fresh, nil
}

// migrate applies the pending migrations and reports whether the first one
// was among them.
func migrate(ctx context.Context, db *sql.DB) (bool, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL
	)`); err != nil {
		return false, fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied int
	if err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&applied); err != nil {
		return false, fmt.Errorf("reading schema version: %w", err)
	}
	if applied > len(migrations) {
		return false, fmt.Errorf("database schema version %d is newer than this binary supports (%d)", applied, len(migrations))
	}

	for _, m := range migrations[applied:] {
		err := withTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				m.version, time.Now().UTC())
			return err
		})
		if err != nil {
			return false, fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return applied == 0, nil
}

// withTx runs fn inside a transaction, committing when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}
