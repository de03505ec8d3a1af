package notification_test

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shaharia-lab/buildnotify/internal/notification"
	"github.com/shaharia-lab/buildnotify/internal/storage"
)

const buildLog = `    blah blah blah
    something built
    tests passed / failed / etc
`

// --- fake build ---

type fakeBuild struct {
	project string
	label   int
	failed  bool
	output  string
}

func (b *fakeBuild) Failed() bool        { return b.failed }
func (b *fakeBuild) Output() string      { return b.output }
func (b *fakeBuild) Label() int          { return b.label }
func (b *fakeBuild) ProjectName() string { return b.project }

func passingBuild() *fakeBuild {
	return &fakeBuild{project: "myproj", label: 5, output: buildLog}
}

func failingBuild() *fakeBuild {
	return &fakeBuild{project: "myproj", label: 5, failed: true, output: buildLog}
}

// --- fake transport ---

type fakeTransport struct {
	sent     []notification.Message
	err      error
	settings []notification.Setting
}

func (t *fakeTransport) Name() string { return "fake" }

func (t *fakeTransport) Send(_ context.Context, msg notification.Message) error {
	t.sent = append(t.sent, msg)
	return t.err
}

func (t *fakeTransport) Settings() []notification.Setting { return t.settings }

// --- fake site configuration ---

type fakeSite struct {
	from      string
	dashboard string
	fromCalls int
}

func (s *fakeSite) DefaultFromAddress() string {
	s.fromCalls++
	return s.from
}

func (s *fakeSite) DashboardURL() string { return s.dashboard }

// --- recording log handler ---

type logRecord struct {
	Level   slog.Level
	Message string
}

type recordingHandler struct {
	mu      sync.Mutex
	records []logRecord
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, logRecord{Level: r.Level, Message: r.Message})
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) all() []logRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]logRecord(nil), h.records...)
}

func (h *recordingHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

// --- stub delivery log ---

type stubDeliveryLog struct {
	entries []storage.NotificationLogEntry
	err     error
}

func (s *stubDeliveryLog) LogNotification(_ context.Context, entry storage.NotificationLogEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

// --- recording observer ---

type recordingObserver struct {
	sent    []int
	failed  []notification.EventKind
	skipped []notification.SkipReason
}

func (o *recordingObserver) Sent(_ notification.EventKind, n int) { o.sent = append(o.sent, n) }
func (o *recordingObserver) Failed(k notification.EventKind)     { o.failed = append(o.failed, k) }
func (o *recordingObserver) Skipped(_ notification.EventKind, r notification.SkipReason) {
	o.skipped = append(o.skipped, r)
}

// newTestNotifier wires a notifier with the standard recipients and from
// address used by most tests.
func newTestNotifier(transport notification.Transport, site notification.SiteConfig, opts ...notification.Option) (*notification.Notifier, *recordingHandler) {
	h := &recordingHandler{}
	base := []notification.Option{
		notification.WithLogger(slog.New(h)),
		notification.WithRecipients("jeremystellsmith@gmail.com", "jeremy@thoughtworks.com"),
		notification.WithFrom("cruisecontrol@thoughtworks.com"),
	}
	return notification.New(transport, site, append(base, opts...)...), h
}
