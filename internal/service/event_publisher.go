package service

import "github.com/shaharia-lab/buildnotify/internal/eventbus"

// EventPublisher is the interface for publishing build events.
// Handlers use this interface to emit events without depending on a concrete
// event bus implementation. Publish reports false when the event was dropped.
type EventPublisher interface {
	Publish(e eventbus.Event) bool
}
