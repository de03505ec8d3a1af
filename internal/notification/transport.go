// Package notification decides whether a build event warrants an e-mail,
// composes the message and hands it to a delivery Transport.
//
// The entry point is Notifier.Handle, which accepts one of the two build
// lifecycle events (Finished, Fixed). Delivery itself lives behind the
// Transport interface; SMTPTransport is the production implementation.
package notification

import "context"

// Message is a composed notification, produced fresh for every event.
type Message struct {
	Subject string
	Body    string
	To      []string
	From    string
}

// Setting is a single named value of a transport's configuration snapshot.
type Setting struct {
	Key   string
	Value string
}

// Transport is the interface for delivery backends.
type Transport interface {
	// Name returns the transport identifier (e.g. "smtp").
	Name() string
	// Send delivers msg to every address in msg.To as one message.
	Send(ctx context.Context, msg Message) error
	// Settings returns the current configuration snapshot in a stable order.
	// It is used for diagnostics when Send fails.
	Settings() []Setting
}

// SiteConfig exposes the site-wide settings a notifier falls back on.
// Both methods are consulted on every send so runtime changes take effect
// without rebuilding the notifier.
type SiteConfig interface {
	// DefaultFromAddress returns the site default sender, or "" when unset.
	DefaultFromAddress() string
	// DashboardURL returns the dashboard base URL, or "" when unset.
	DashboardURL() string
}
