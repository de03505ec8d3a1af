package notification

// Build is the read-only view of a build result the notifier needs.
type Build interface {
	Failed() bool
	Output() string
	Label() int
	ProjectName() string
}

// EventKind identifies a build lifecycle event.
type EventKind string

const (
	KindFinished EventKind = "build_finished"
	KindFixed    EventKind = "build_fixed"
)

// Event is a build lifecycle event. The only implementations are Finished
// and Fixed.
type Event interface {
	Kind() EventKind
	subject() Build
}

// Finished is raised when a build completes, whether it passed or failed.
type Finished struct {
	Build Build
}

// Kind implements Event.
func (Finished) Kind() EventKind { return KindFinished }

func (e Finished) subject() Build { return e.Build }

// Fixed is raised when a build passes after the previous one failed.
// Detecting that transition is the caller's job.
type Fixed struct {
	Build    Build
	Previous Build
}

// Kind implements Event.
func (Fixed) Kind() EventKind { return KindFixed }

func (e Fixed) subject() Build { return e.Build }
