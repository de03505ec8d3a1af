package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/buildnotify/internal/storage"
)

// ErrUnknownEvent is returned by Handle for events other than Finished and Fixed.
var ErrUnknownEvent = errors.New("notification: unknown event")

// Delivery statuses written to the delivery log.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// SkipReason explains why an event produced no message.
type SkipReason string

const (
	SkipPolicy       SkipReason = "policy"
	SkipNoRecipients SkipReason = "no_recipients"
)

// DeliveryLog persists one entry per delivery attempt.
type DeliveryLog interface {
	LogNotification(ctx context.Context, entry storage.NotificationLogEntry) error
}

// Observer is told about the outcome of every handled event.
type Observer interface {
	Sent(kind EventKind, recipients int)
	Failed(kind EventKind)
	Skipped(kind EventKind, reason SkipReason)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger used for dispatch reports and failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

// WithComposer replaces the default Composer.
func WithComposer(c *Composer) Option {
	return func(n *Notifier) { n.composer = c }
}

// WithDeliveryLog records every delivery attempt in store.
func WithDeliveryLog(store DeliveryLog) Option {
	return func(n *Notifier) { n.deliveries = store }
}

// WithObserver reports event outcomes to o.
func WithObserver(o Observer) Option {
	return func(n *Notifier) { n.observer = o }
}

// WithFrom sets the notifier's own sender address.
func WithFrom(from string) Option {
	return func(n *Notifier) { n.from = from }
}

// WithRecipients sets the initial recipient list.
func WithRecipients(addrs ...string) Option {
	return func(n *Notifier) { n.recipients.Set(addrs...) }
}

// Notifier reacts to build events by e-mailing its recipients.
//
// Handle calls on one Notifier are serialized; reconfiguration through the
// setters waits for an in-flight event to finish.
type Notifier struct {
	mu         sync.Mutex
	recipients RecipientList
	from       string

	transport  Transport
	site       SiteConfig
	composer   *Composer
	reporter   *DispatchReporter
	logger     *slog.Logger
	deliveries DeliveryLog
	observer   Observer
	now        func() time.Time
}

// New creates a Notifier delivering through transport. site may be nil, in
// which case the notifier must be given its own from address.
func New(transport Transport, site SiteConfig, opts ...Option) *Notifier {
	n := &Notifier{
		transport: transport,
		site:      site,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	if n.composer == nil {
		n.composer = NewComposer("", "")
	}
	n.reporter = NewDispatchReporter(n.logger)
	return n
}

// Recipients returns the current recipient list.
func (n *Notifier) Recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.recipients.Addresses()
}

// SetRecipients replaces the recipient list.
func (n *Notifier) SetRecipients(addrs ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recipients.Set(addrs...)
}

// AddRecipient appends addr to the recipient list.
func (n *Notifier) AddRecipient(addr string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recipients.Add(addr)
}

// RemoveRecipient removes every occurrence of addr.
func (n *Notifier) RemoveRecipient(addr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.recipients.Remove(addr)
}

// From returns the notifier's own sender address, which may be empty.
func (n *Notifier) From() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.from
}

// SetFrom sets the notifier's own sender address. An empty value makes the
// notifier fall back on the site default.
func (n *Notifier) SetFrom(from string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.from = from
}

// BuildFinished handles a Finished event for b.
func (n *Notifier) BuildFinished(ctx context.Context, b Build) error {
	return n.Handle(ctx, Finished{Build: b})
}

// BuildFixed handles a Fixed event for b.
func (n *Notifier) BuildFixed(ctx context.Context, b, previous Build) error {
	return n.Handle(ctx, Fixed{Build: b, Previous: previous})
}

// Handle processes e: applies the policy, composes the message, sends it in
// a single transport call and reports the outcome. A transport error is
// logged with the transport settings and returned as is.
func (n *Notifier) Handle(ctx context.Context, e Event) error {
	switch e.(type) {
	case Finished, Fixed:
	default:
		return ErrUnknownEvent
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !shouldNotify(e) {
		n.skipped(e.Kind(), SkipPolicy)
		return nil
	}
	if n.recipients.Len() == 0 {
		n.skipped(e.Kind(), SkipNoRecipients)
		return nil
	}

	from, err := resolveFrom(n.from, n.site)
	if err != nil {
		return err
	}
	dashboardURL := ""
	if n.site != nil {
		dashboardURL = strings.TrimSpace(n.site.DashboardURL())
	}

	msg, err := n.composer.Compose(e, n.recipients.Addresses(), from, dashboardURL)
	if err != nil {
		return err
	}

	b := e.subject()
	entry := storage.NotificationLogEntry{
		DispatchID:     uuid.NewString(),
		Project:        b.ProjectName(),
		BuildLabel:     b.Label(),
		EventType:      string(e.Kind()),
		Provider:       n.transport.Name(),
		Subject:        msg.Subject,
		RecipientCount: len(msg.To),
		Status:         StatusSent,
		CreatedAt:      n.now(),
	}

	if sendErr := n.transport.Send(ctx, msg); sendErr != nil {
		n.logger.ErrorContext(ctx, SettingsDiagnostic(n.transport.Settings()))
		entry.Status = StatusFailed
		entry.ErrorMsg = sendErr.Error()
		n.record(ctx, entry)
		if n.observer != nil {
			n.observer.Failed(e.Kind())
		}
		return sendErr
	}

	n.reporter.Report(ctx, len(msg.To))
	n.record(ctx, entry)
	if n.observer != nil {
		n.observer.Sent(e.Kind(), len(msg.To))
	}
	return nil
}

func (n *Notifier) skipped(kind EventKind, reason SkipReason) {
	if n.observer != nil {
		n.observer.Skipped(kind, reason)
	}
}

func (n *Notifier) record(ctx context.Context, entry storage.NotificationLogEntry) {
	if n.deliveries == nil {
		return
	}
	if err := n.deliveries.LogNotification(ctx, entry); err != nil {
		n.logger.WarnContext(ctx, "failed to record notification delivery",
			"dispatch_id", entry.DispatchID, "project", entry.Project, "error", err)
	}
}
