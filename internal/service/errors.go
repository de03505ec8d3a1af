package service

import "fmt"

// NotFoundError reports a project that has no stored notifier.
type NotFoundError struct {
	Project string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no notifier configured for project %q", e.Project)
}

// ValidationError reports a rejected request field. Err holds the
// underlying cause, if any.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field == "" {
		return msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }
