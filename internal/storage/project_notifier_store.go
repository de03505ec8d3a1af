package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a row addressed by key does not exist.
var ErrNotFound = errors.New("not found")

// ProjectNotifier is the persisted e-mail notifier configuration of one project.
type ProjectNotifier struct {
	Project     string    `json:"project"`
	Recipients  []string  `json:"recipients"`
	FromAddress string    `json:"from_address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectNotifierStore persists per-project notifier configuration.
type ProjectNotifierStore interface {
	// Get returns the notifier of project, or nil when none is configured.
	Get(ctx context.Context, project string) (*ProjectNotifier, error)
	// Save inserts or replaces the notifier of pn.Project.
	Save(ctx context.Context, pn *ProjectNotifier) error
	// List returns every configured notifier ordered by project name.
	List(ctx context.Context) ([]*ProjectNotifier, error)
	// Delete removes the notifier of project. It returns ErrNotFound when
	// there is none.
	Delete(ctx context.Context, project string) error
}
