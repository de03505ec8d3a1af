package eventbus

import (
	"time"

	"github.com/shaharia-lab/buildnotify/internal/project"
)

// Kind names a build lifecycle event.
type Kind string

const (
	BuildFinished Kind = "build_finished"
	BuildFixed    Kind = "build_fixed"
)

// Event is a build lifecycle event published by the build orchestrator.
// Previous is only set for BuildFixed.
type Event struct {
	Kind      Kind           `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Build     *project.Build `json:"-"`
	Previous  *project.Build `json:"-"`
}

// Listener is a function that handles an event.
type Listener func(Event)

func (e Event) describe() string {
	if e.Build == nil {
		return ""
	}
	return e.Build.String()
}
