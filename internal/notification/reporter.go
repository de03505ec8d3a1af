package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DispatchReporter logs how many people a message reached.
type DispatchReporter struct {
	logger *slog.Logger
}

// NewDispatchReporter returns a reporter writing to logger, or to
// slog.Default when logger is nil.
func NewDispatchReporter(logger *slog.Logger) *DispatchReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchReporter{logger: logger}
}

// Report logs "Sent e-mail to 1 person" or "Sent e-mail to N people" at
// debug level. Counts below one are ignored.
func (r *DispatchReporter) Report(ctx context.Context, recipientCount int) {
	if recipientCount <= 0 {
		return
	}
	r.logger.DebugContext(ctx, SentSummary(recipientCount))
}

// SentSummary returns the dispatch summary for n recipients.
func SentSummary(n int) string {
	if n == 1 {
		return "Sent e-mail to 1 person"
	}
	return fmt.Sprintf("Sent e-mail to %d people", n)
}

// SettingsDiagnostic renders the message logged when a transport fails:
//
//	Error sending e-mail - current server settings are :
//	  :host = smtp.example.com
//	  :port = 25
func SettingsDiagnostic(settings []Setting) string {
	lines := make([]string, 0, len(settings))
	for _, s := range settings {
		lines = append(lines, fmt.Sprintf("  :%s = %s", s.Key, s.Value))
	}
	return "Error sending e-mail - current server settings are :\n" + strings.Join(lines, "\n")
}
