package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"sync"

	"github.com/shaharia-lab/buildnotify/internal/config"
	"github.com/shaharia-lab/buildnotify/internal/eventbus"
	"github.com/shaharia-lab/buildnotify/internal/notification"
	"github.com/shaharia-lab/buildnotify/internal/project"
	"github.com/shaharia-lab/buildnotify/internal/storage"
)

// ProjectNotifierRequest is the editable part of a project notifier.
type ProjectNotifierRequest struct {
	Recipients []string `json:"recipients"`
	From       string   `json:"from_address"`
}

// SiteSettingsResponse is the site configuration together with the fields
// pinned by environment variables.
type SiteSettingsResponse struct {
	Settings config.SiteSettings `json:"settings"`
	Locked   map[string]string   `json:"locked"`
}

// NotificationService manages project notifiers, site settings and the
// delivery log, and routes build events to the right notifier.
type NotificationService interface {
	// HandleBuildEvent hands e to the notifier of its project. Projects
	// without a notifier are ignored.
	HandleBuildEvent(ctx context.Context, e eventbus.Event) error
	// GetProjectNotifier returns the notifier configuration of name.
	GetProjectNotifier(ctx context.Context, name string) (*storage.ProjectNotifier, error)
	// UpdateProjectNotifier creates or replaces the notifier of name. A live
	// notifier picks up the change on its next event.
	UpdateProjectNotifier(ctx context.Context, name string, req ProjectNotifierRequest) (*storage.ProjectNotifier, error)
	// DeleteProjectNotifier removes the notifier of name.
	DeleteProjectNotifier(ctx context.Context, name string) error
	// ListProjectNotifiers returns every configured notifier.
	ListProjectNotifiers(ctx context.Context) ([]*storage.ProjectNotifier, error)
	// GetSiteSettings returns the site-wide defaults.
	GetSiteSettings() SiteSettingsResponse
	// UpdateSiteSettings validates and persists new site-wide defaults.
	UpdateSiteSettings(incoming config.SiteSettings) (SiteSettingsResponse, error)
	// TestNotification sends a test e-mail to the recipients of name.
	TestNotification(ctx context.Context, name string) error
	// ListLog returns the most recent delivery log entries.
	ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error)
	// SeedFromRegistry stores every registry notifier whose project has no
	// notifier yet and returns how many were added.
	SeedFromRegistry(ctx context.Context, reg *config.NotifierRegistry) (int, error)
}

// notificationServiceImpl implements NotificationService.
type notificationServiceImpl struct {
	settingsMgr *config.SettingsManager
	notifiers   storage.ProjectNotifierStore
	deliveries  storage.NotificationStore
	transport   notification.Transport
	composer    *notification.Composer
	observer    notification.Observer
	logger      *slog.Logger

	mu   sync.Mutex
	live map[string]*notification.Notifier
}

// NewNotificationService creates a new NotificationService. observer may be nil.
func NewNotificationService(
	settingsMgr *config.SettingsManager,
	notifiers storage.ProjectNotifierStore,
	deliveries storage.NotificationStore,
	transport notification.Transport,
	composer *notification.Composer,
	observer notification.Observer,
	logger *slog.Logger,
) NotificationService {
	if composer == nil {
		composer = notification.NewComposer("", "")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationServiceImpl{
		settingsMgr: settingsMgr,
		notifiers:   notifiers,
		deliveries:  deliveries,
		transport:   transport,
		composer:    composer,
		observer:    observer,
		logger:      logger,
		live:        make(map[string]*notification.Notifier),
	}
}

func (s *notificationServiceImpl) HandleBuildEvent(ctx context.Context, e eventbus.Event) error {
	if e.Build == nil {
		return &ValidationError{Field: "build", Message: "event carries no build"}
	}

	n, err := s.notifierFor(ctx, e.Build.ProjectName())
	if err != nil {
		return err
	}
	if n == nil {
		s.logger.DebugContext(ctx, "no notifier configured for project",
			"project", e.Build.ProjectName(), "label", e.Build.Label())
		return nil
	}

	switch e.Kind {
	case eventbus.BuildFinished:
		return n.BuildFinished(ctx, e.Build)
	case eventbus.BuildFixed:
		var previous notification.Build
		if e.Previous != nil {
			previous = e.Previous
		}
		return n.BuildFixed(ctx, e.Build, previous)
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown event kind %q", e.Kind)}
	}
}

// notifierFor returns the live notifier of name, creating it from the
// stored configuration on first use. It returns nil when the project has
// no notifier.
func (s *notificationServiceImpl) notifierFor(ctx context.Context, name string) (*notification.Notifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.live[name]; ok {
		return n, nil
	}

	pn, err := s.notifiers.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading notifier of %q: %w", name, err)
	}
	if pn == nil {
		return nil, nil
	}

	opts := []notification.Option{
		notification.WithLogger(s.logger.With("project", name)),
		notification.WithComposer(s.composer),
		notification.WithRecipients(pn.Recipients...),
		notification.WithFrom(pn.FromAddress),
		notification.WithDeliveryLog(s.deliveries),
	}
	if s.observer != nil {
		opts = append(opts, notification.WithObserver(s.observer))
	}
	n := notification.New(s.transport, s.settingsMgr, opts...)
	s.live[name] = n
	return n, nil
}

func (s *notificationServiceImpl) GetProjectNotifier(ctx context.Context, name string) (*storage.ProjectNotifier, error) {
	pn, err := s.notifiers.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading notifier of %q: %w", name, err)
	}
	if pn == nil {
		return nil, &NotFoundError{Project: name}
	}
	return pn, nil
}

func (s *notificationServiceImpl) UpdateProjectNotifier(ctx context.Context, name string, req ProjectNotifierRequest) (*storage.ProjectNotifier, error) {
	p, err := project.New(name)
	if err != nil {
		return nil, &ValidationError{Field: "project", Message: err.Error()}
	}
	recipients, err := normalizeRecipients(req.Recipients)
	if err != nil {
		return nil, err
	}
	from := strings.TrimSpace(req.From)
	if from != "" {
		if _, err := mail.ParseAddress(from); err != nil {
			return nil, &ValidationError{Field: "from_address", Message: fmt.Sprintf("invalid address %q", from)}
		}
	}

	pn := &storage.ProjectNotifier{
		Project:     p.Name(),
		Recipients:  recipients,
		FromAddress: from,
	}
	if err := s.notifiers.Save(ctx, pn); err != nil {
		return nil, fmt.Errorf("saving notifier of %q: %w", p.Name(), err)
	}

	s.mu.Lock()
	if n, ok := s.live[p.Name()]; ok {
		n.SetRecipients(recipients...)
		n.SetFrom(from)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "project notifier updated",
		"project", p.Name(), "recipients", len(recipients))

	return s.GetProjectNotifier(ctx, p.Name())
}

func (s *notificationServiceImpl) DeleteProjectNotifier(ctx context.Context, name string) error {
	if err := s.notifiers.Delete(ctx, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Project: name}
		}
		return fmt.Errorf("deleting notifier of %q: %w", name, err)
	}

	s.mu.Lock()
	delete(s.live, name)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "project notifier deleted", "project", name)
	return nil
}

func (s *notificationServiceImpl) ListProjectNotifiers(ctx context.Context) ([]*storage.ProjectNotifier, error) {
	list, err := s.notifiers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing notifiers: %w", err)
	}
	return list, nil
}

func (s *notificationServiceImpl) GetSiteSettings() SiteSettingsResponse {
	return SiteSettingsResponse{
		Settings: s.settingsMgr.Get(),
		Locked:   s.settingsMgr.Locked(),
	}
}

func (s *notificationServiceImpl) UpdateSiteSettings(incoming config.SiteSettings) (SiteSettingsResponse, error) {
	incoming.EmailFrom = strings.TrimSpace(incoming.EmailFrom)
	incoming.DashboardURL = strings.TrimSpace(incoming.DashboardURL)

	if incoming.EmailFrom != "" {
		if _, err := mail.ParseAddress(incoming.EmailFrom); err != nil {
			return SiteSettingsResponse{}, &ValidationError{
				Field: "email_from", Message: fmt.Sprintf("invalid address %q", incoming.EmailFrom),
			}
		}
	}
	if incoming.DashboardURL != "" {
		u, err := url.Parse(incoming.DashboardURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return SiteSettingsResponse{}, &ValidationError{
				Field: "dashboard_url", Message: "must be an absolute http or https URL",
			}
		}
	}

	if err := s.settingsMgr.Update(incoming); err != nil {
		var locked *config.LockedError
		if errors.As(err, &locked) {
			return SiteSettingsResponse{}, &ValidationError{Field: locked.Field, Err: err}
		}
		return SiteSettingsResponse{}, fmt.Errorf("saving site settings: %w", err)
	}
	return s.GetSiteSettings(), nil
}

// TestNotification sends a plain test message through the transport. It
// bypasses the notifier so nothing is written to the delivery log.
func (s *notificationServiceImpl) TestNotification(ctx context.Context, name string) error {
	pn, err := s.GetProjectNotifier(ctx, name)
	if err != nil {
		return err
	}
	if len(pn.Recipients) == 0 {
		return &ValidationError{Field: "recipients", Message: "project notifier has no recipients"}
	}

	from := strings.TrimSpace(pn.FromAddress)
	if from == "" {
		from = s.settingsMgr.DefaultFromAddress()
	}
	if from == "" {
		return &ValidationError{Field: "from_address", Message: notification.ErrNoFromAddress.Error()}
	}

	msg := notification.Message{
		Subject: fmt.Sprintf("[%s] %s test notification", s.composer.ProductTag(), pn.Project),
		Body: fmt.Sprintf("This is a test notification for project %s.\n\n"+
			"Your mail settings are working correctly.", pn.Project),
		To:   append([]string(nil), pn.Recipients...),
		From: from,
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, notification.SettingsDiagnostic(s.transport.Settings()), "project", pn.Project)
		return fmt.Errorf("sending test notification: %w", err)
	}
	return nil
}

func (s *notificationServiceImpl) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	return s.deliveries.ListNotifications(ctx, limit)
}

func (s *notificationServiceImpl) SeedFromRegistry(ctx context.Context, reg *config.NotifierRegistry) (int, error) {
	if reg == nil {
		return 0, nil
	}

	seeded := 0
	for _, name := range reg.Projects() {
		existing, err := s.notifiers.Get(ctx, name)
		if err != nil {
			return seeded, fmt.Errorf("loading notifier of %q: %w", name, err)
		}
		if existing != nil {
			continue
		}

		entry, _ := reg.Get(name)
		if _, err := s.UpdateProjectNotifier(ctx, name, ProjectNotifierRequest{
			Recipients: entry.Recipients,
			From:       entry.From,
		}); err != nil {
			return seeded, fmt.Errorf("seeding notifier of %q: %w", name, err)
		}
		seeded++
	}
	return seeded, nil
}

// normalizeRecipients trims addresses, drops blanks and rejects anything
// net/mail cannot parse.
func normalizeRecipients(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for i, addr := range in {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("recipients[%d]", i),
				Message: fmt.Sprintf("invalid address %q", addr),
			}
		}
		out = append(out, addr)
	}
	return out, nil
}
