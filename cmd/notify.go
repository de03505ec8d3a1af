package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/buildnotify/internal/config"
	"github.com/shaharia-lab/buildnotify/internal/logger"
	"github.com/shaharia-lab/buildnotify/internal/notification"
	"github.com/shaharia-lab/buildnotify/internal/project"
)

// newTransport is replaced in tests.
var newTransport = func(cfg *config.AppConfig) notification.Transport {
	return notification.NewSMTPTransport(smtpConfig(cfg))
}

type notifyOptions struct {
	project    string
	label      int
	failed     bool
	fixed      bool
	outputFile string
	to         string
	from       string
}

// NewNotifyCmd returns the "notify" subcommand, a one-shot send for build
// scripts that do not talk to a running server.
func NewNotifyCmd(cfg *config.AppConfig) *cobra.Command {
	var opts notifyOptions

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send the notification for one build result",
		Long: `Send the e-mail for one build result using the SMTP_* settings from the
environment. A passing build sends nothing unless --fixed is given.
Recipients come from --to, or from the project's entry in the notifiers file.`,
		Example: `  buildnotify notify --project myproj --label 5 --failed --output-file build.log
  buildnotify notify --project myproj --label 6 --fixed --to dev@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotify(cmd, cfg, newTransport(cfg), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.project, "project", "", "Project name")
	f.IntVar(&opts.label, "label", 0, "Build label (number)")
	f.BoolVar(&opts.failed, "failed", false, "The build failed")
	f.BoolVar(&opts.fixed, "fixed", false, "The build passed after a failure")
	f.StringVar(&opts.outputFile, "output-file", "", `File holding the build log ("-" for stdin)`)
	f.StringVar(&opts.to, "to", "", "Comma separated recipients (overrides the notifiers file)")
	f.StringVar(&opts.from, "from", "", "Sender address (defaults to BUILDNOTIFY_EMAIL_FROM)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("label")
	cmd.MarkFlagsMutuallyExclusive("failed", "fixed")

	return cmd
}

func runNotify(cmd *cobra.Command, cfg *config.AppConfig, transport notification.Transport, opts notifyOptions) error {
	p, err := project.New(opts.project)
	if err != nil {
		return err
	}
	output, err := readBuildOutput(cmd.InOrStdin(), opts.outputFile)
	if err != nil {
		return err
	}
	status := project.StatusSuccess
	if opts.failed {
		status = project.StatusFailed
	}
	b, err := project.NewBuild(p, opts.label, status, output)
	if err != nil {
		return err
	}

	recipients, from, err := notifyRecipients(cfg, p.Name(), opts)
	if err != nil {
		return err
	}

	outcome := &cliOutcome{}
	n := notification.New(transport, envSite{cfg: cfg},
		notification.WithLogger(logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.SlogLevel())),
		notification.WithComposer(notification.NewComposer(cfg.ProductTag, cfg.DashboardNote)),
		notification.WithRecipients(recipients...),
		notification.WithFrom(from),
		notification.WithObserver(outcome),
	)

	if opts.fixed {
		err = n.BuildFixed(cmd.Context(), b, nil)
	} else {
		err = n.BuildFinished(cmd.Context(), b)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), outcome.summary(b))
	return nil
}

// notifyRecipients resolves recipients and sender from the flags, falling
// back on the project's entry in the notifiers file.
func notifyRecipients(cfg *config.AppConfig, name string, opts notifyOptions) ([]string, string, error) {
	recipients := notification.ParseRecipients(opts.to)
	from := strings.TrimSpace(opts.from)
	if len(recipients) > 0 {
		return recipients, from, nil
	}

	registry, err := config.LoadNotifierRegistry(cfg.NotifiersFile)
	if err != nil {
		return nil, "", fmt.Errorf("loading notifier registry: %w", err)
	}
	entry, ok := registry.Get(name)
	if !ok {
		return nil, "", fmt.Errorf("no recipients: pass --to or declare %q in %s", name, cfg.NotifiersFile)
	}
	if from == "" {
		from = entry.From
	}
	return entry.Recipients, from, nil
}

func readBuildOutput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	}
	if err != nil {
		return "", fmt.Errorf("reading build output: %w", err)
	}
	return string(data), nil
}

// envSite serves the site defaults straight from the environment config.
type envSite struct {
	cfg *config.AppConfig
}

func (s envSite) DefaultFromAddress() string { return strings.TrimSpace(s.cfg.EmailFrom) }
func (s envSite) DashboardURL() string       { return strings.TrimSpace(s.cfg.DashboardURL) }

// cliOutcome remembers what the notifier did with the event.
type cliOutcome struct {
	sent    int
	skipped notification.SkipReason
}

func (o *cliOutcome) Sent(_ notification.EventKind, n int) { o.sent = n }
func (o *cliOutcome) Failed(notification.EventKind)        {}
func (o *cliOutcome) Skipped(_ notification.EventKind, r notification.SkipReason) {
	o.skipped = r
}

func (o *cliOutcome) summary(b *project.Build) string {
	switch {
	case o.sent > 0:
		return fmt.Sprintf("%s: %s", b, notification.SentSummary(o.sent))
	case o.skipped == notification.SkipNoRecipients:
		return fmt.Sprintf("%s: no recipients, nothing sent", b)
	default:
		return fmt.Sprintf("%s: passed, nothing sent", b)
	}
}
