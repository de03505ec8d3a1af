package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLiteProjectNotifierStore implements ProjectNotifierStore backed by SQLite.
type SQLiteProjectNotifierStore struct {
	db *sql.DB
}

// NewSQLiteProjectNotifierStore returns a new SQLiteProjectNotifierStore.
func NewSQLiteProjectNotifierStore(db *sql.DB) *SQLiteProjectNotifierStore {
	return &SQLiteProjectNotifierStore{db: db}
}

// Get returns the notifier configured for project, or nil if there is none.
func (s *SQLiteProjectNotifierStore) Get(ctx context.Context, project string) (*ProjectNotifier, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT project, recipients, from_address, created_at, updated_at
		FROM project_notifiers WHERE project = ?`, project)

	pn, err := scanProjectNotifier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading notifier for project %q: %w", project, err)
	}
	return pn, nil
}

// Save upserts pn. CreatedAt is preserved across updates.
func (s *SQLiteProjectNotifierStore) Save(ctx context.Context, pn *ProjectNotifier) error {
	if strings.TrimSpace(pn.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	recipients := pn.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	raw, err := json.Marshal(recipients)
	if err != nil {
		return fmt.Errorf("encoding recipients: %w", err)
	}

	now := time.Now().UTC()
	if pn.CreatedAt.IsZero() {
		pn.CreatedAt = now
	}
	pn.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO project_notifiers (project, recipients, from_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project) DO UPDATE SET
			recipients = excluded.recipients,
			from_address = excluded.from_address,
			updated_at = excluded.updated_at`,
		pn.Project, string(raw), pn.FromAddress, pn.CreatedAt, pn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving notifier for project %q: %w", pn.Project, err)
	}
	return nil
}

// List returns all configured notifiers ordered by project.
func (s *SQLiteProjectNotifierStore) List(ctx context.Context) ([]*ProjectNotifier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project, recipients, from_address, created_at, updated_at
		FROM project_notifiers ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("querying project notifiers: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]*ProjectNotifier, 0)
	for rows.Next() {
		pn, err := scanProjectNotifier(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project notifier row: %w", err)
		}
		out = append(out, pn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project notifier rows: %w", err)
	}
	return out, nil
}

// Delete removes the notifier of project.
func (s *SQLiteProjectNotifierStore) Delete(ctx context.Context, project string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_notifiers WHERE project = ?`, project)
	if err != nil {
		return fmt.Errorf("deleting notifier for project %q: %w", project, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProjectNotifier(r rowScanner) (*ProjectNotifier, error) {
	var pn ProjectNotifier
	var raw string
	if err := r.Scan(&pn.Project, &raw, &pn.FromAddress, &pn.CreatedAt, &pn.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &pn.Recipients); err != nil {
		return nil, fmt.Errorf("decoding recipients: %w", err)
	}
	return &pn, nil
}
