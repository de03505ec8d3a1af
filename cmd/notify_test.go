package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/buildnotify/internal/config"
	"github.com/shaharia-lab/buildnotify/internal/notification"
)

type fakeTransport struct {
	sent []notification.Message
	err  error
}

func (t *fakeTransport) Name() string { return "fake" }

func (t *fakeTransport) Send(_ context.Context, msg notification.Message) error {
	t.sent = append(t.sent, msg)
	return t.err
}

func (t *fakeTransport) Settings() []notification.Setting {
	return []notification.Setting{{Key: "address", Value: "smtp.example.com"}}
}

func useTransport(t *testing.T, tr notification.Transport) {
	t.Helper()
	old := newTransport
	newTransport = func(*config.AppConfig) notification.Transport { return tr }
	t.Cleanup(func() { newTransport = old })
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.AppConfig{
		DataDir:       dir,
		NotifiersFile: filepath.Join(dir, "notifiers.yaml"),
		ProductTag:    "CruiseControl",
		EmailFrom:     "ci@example.com",
		LogLevel:      "debug",
	}
}

func runCmd(t *testing.T, cfg *config.AppConfig, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(cfg)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNotify_FailedBuild(t *testing.T) {
	tr := &fakeTransport{}
	useTransport(t, tr)
	cfg := testConfig(t)

	logFile := filepath.Join(t.TempDir(), "build.log")
	require.NoError(t, os.WriteFile(logFile, []byte("tests failed: 3"), 0600))

	stdout, stderr, err := runCmd(t, cfg, "", "notify", "--project", "myproj", "--label", "5",
		"--failed", "--output-file", logFile, "--to", "a@example.com, b@example.com")
	require.NoError(t, err)

	require.Len(t, tr.sent, 1)
	msg := tr.sent[0]
	assert.Equal(t, "[CruiseControl] myproj build 5 failed", msg.Subject)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.To)
	assert.Equal(t, "ci@example.com", msg.From)
	assert.Contains(t, msg.Body, "tests failed: 3")

	assert.Equal(t, "myproj build 5: Sent e-mail to 2 people\n", stdout)
	assert.Contains(t, stderr, "Sent e-mail to 2 people")
}

func TestNotify_PassingBuildSendsNothing(t *testing.T) {
	tr := &fakeTransport{}
	useTransport(t, tr)

	stdout, _, err := runCmd(t, testConfig(t), "", "notify", "--project", "myproj", "--label", "6", "--to", "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, tr.sent)
	assert.Equal(t, "myproj build 6: passed, nothing sent\n", stdout)
}

func TestNotify_FixedReadsStdin(t *testing.T) {
	tr := &fakeTransport{}
	useTransport(t, tr)

	_, _, err := runCmd(t, testConfig(t), "all green", "notify", "--project", "myproj", "--label", "7",
		"--fixed", "--output-file", "-", "--to", "a@example.com", "--from", "team@example.com")
	require.NoError(t, err)

	require.Len(t, tr.sent, 1)
	assert.Equal(t, "[CruiseControl] myproj build 7 fixed", tr.sent[0].Subject)
	assert.Equal(t, "team@example.com", tr.sent[0].From)
	assert.Contains(t, tr.sent[0].Body, "all green")
}

func TestNotify_RecipientsFromNotifiersFile(t *testing.T) {
	tr := &fakeTransport{}
	useTransport(t, tr)
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.NotifiersFile, []byte(`
myproj:
  recipients: [dev@example.com]
  from: myproj-ci@example.com
`), 0600))

	_, _, err := runCmd(t, cfg, "", "notify", "--project", "myproj", "--label", "5", "--failed")
	require.NoError(t, err)

	require.Len(t, tr.sent, 1)
	assert.Equal(t, []string{"dev@example.com"}, tr.sent[0].To)
	assert.Equal(t, "myproj-ci@example.com", tr.sent[0].From)

	_, _, err = runCmd(t, cfg, "", "notify", "--project", "unknown", "--label", "5", "--failed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
}

func TestNotify_TransportFailure(t *testing.T) {
	tr := &fakeTransport{err: errors.New("connection refused")}
	useTransport(t, tr)

	_, stderr, err := runCmd(t, testConfig(t), "", "notify", "--project", "myproj", "--label", "5",
		"--failed", "--to", "a@example.com")
	require.Error(t, err)
	assert.Equal(t, "connection refused", err.Error())
	assert.Contains(t, stderr, "Error sending e-mail - current server settings are :")
	assert.Contains(t, stderr, ":address = smtp.example.com")
}

func TestNotify_NoFromAddress(t *testing.T) {
	tr := &fakeTransport{}
	useTransport(t, tr)
	cfg := testConfig(t)
	cfg.EmailFrom = ""

	_, _, err := runCmd(t, cfg, "", "notify", "--project", "myproj", "--label", "5", "--failed", "--to", "a@example.com")
	require.ErrorIs(t, err, notification.ErrNoFromAddress)
	assert.Empty(t, tr.sent)
}

func TestNotify_FlagValidation(t *testing.T) {
	useTransport(t, &fakeTransport{})
	cfg := testConfig(t)

	_, _, err := runCmd(t, cfg, "", "notify", "--project", "myproj", "--label", "5", "--failed", "--fixed")
	assert.Error(t, err)

	_, _, err = runCmd(t, cfg, "", "notify", "--label", "5")
	assert.Error(t, err)

	_, _, err = runCmd(t, cfg, "", "notify", "--project", "myproj", "--label", "0", "--failed", "--to", "a@example.com")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := runCmd(t, testConfig(t), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "buildnotify dev (commit unknown, built unknown)\n", stdout)
}

func TestPrintBanner(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	printBanner(&buf, "v1.0.0", "http://localhost:8995", "/tmp/logs/system.log")

	out := buf.String()
	assert.Contains(t, out, "buildnotify v1.0.0")
	assert.Contains(t, out, "http://localhost:8995/api")
	assert.Contains(t, out, "/tmp/logs/system.log")
}
