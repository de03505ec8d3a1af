package notification_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/buildnotify/internal/notification"
)

func TestSentSummary(t *testing.T) {
	assert.Equal(t, "Sent e-mail to 1 person", notification.SentSummary(1))
	assert.Equal(t, "Sent e-mail to 2 people", notification.SentSummary(2))
	assert.Equal(t, "Sent e-mail to 40 people", notification.SentSummary(40))
}

func TestDispatchReporter_Report(t *testing.T) {
	h := &recordingHandler{}
	r := notification.NewDispatchReporter(slog.New(h))

	r.Report(context.Background(), 0)
	r.Report(context.Background(), -3)
	assert.Empty(t, h.all())

	r.Report(context.Background(), 3)
	assert.Equal(t, []logRecord{{Level: slog.LevelDebug, Message: "Sent e-mail to 3 people"}}, h.all())
}

func TestSettingsDiagnostic(t *testing.T) {
	assert.Equal(t, "Error sending e-mail - current server settings are :\n  :foo = 5",
		notification.SettingsDiagnostic([]notification.Setting{{Key: "foo", Value: "5"}}))

	assert.Equal(t, "Error sending e-mail - current server settings are :\n",
		notification.SettingsDiagnostic(nil))
}
