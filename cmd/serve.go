package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/buildnotify/internal/api"
	"github.com/shaharia-lab/buildnotify/internal/buildinfo"
	"github.com/shaharia-lab/buildnotify/internal/config"
	"github.com/shaharia-lab/buildnotify/internal/eventbus"
	"github.com/shaharia-lab/buildnotify/internal/logger"
	"github.com/shaharia-lab/buildnotify/internal/metrics"
	"github.com/shaharia-lab/buildnotify/internal/notification"
	"github.com/shaharia-lab/buildnotify/internal/scheduler"
	"github.com/shaharia-lab/buildnotify/internal/server"
	"github.com/shaharia-lab/buildnotify/internal/service"
	"github.com/shaharia-lab/buildnotify/internal/storage"
)

// NewServeCmd returns the "serve" subcommand that starts the HTTP server.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notification API server",
		Long: `Start the buildnotify HTTP server. CI servers report build results to
/api/projects/{name}/builds/{label}/finished and .../fixed; failures and fixes
are e-mailed to the project's recipients.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(cmd.OutOrStdout(), buildinfo.Version, serverURL, logFile)

			if err := runServe(cmd.Context(), cfg); err != nil {
				fmt.Fprintf(os.Stderr, "An error occurred. Please check the logs at: %s\n", logFile)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	return cmd
}

func runServe(parent context.Context, cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", cfg.DataDir, err)
	}

	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logCloser.Close() //nolint:errcheck

	sysLogger.Info("buildnotify starting",
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.CommitSHA),
		slog.String("build_date", buildinfo.BuildDate),
	)

	db, fresh, err := storage.OpenDB(ctx, cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	settingsMgr, err := config.NewSettingsManager(storage.NewSQLiteSiteSettingsStore(db), cfg)
	if err != nil {
		return fmt.Errorf("initializing settings: %w", err)
	}

	deliveries := storage.NewSQLiteNotificationStore(db)
	collector := metrics.New()
	transport := notification.NewSMTPTransport(smtpConfig(cfg))
	notificationSvc := service.NewNotificationService(
		settingsMgr,
		storage.NewSQLiteProjectNotifierStore(db),
		deliveries,
		transport,
		notification.NewComposer(cfg.ProductTag, cfg.DashboardNote),
		collector,
		sysLogger,
	)

	registry, err := config.LoadNotifierRegistry(cfg.NotifiersFile)
	if err != nil {
		return fmt.Errorf("loading notifier registry: %w", err)
	}
	seeded, err := notificationSvc.SeedFromRegistry(ctx, registry)
	if err != nil {
		return fmt.Errorf("seeding project notifiers: %w", err)
	}
	sysLogger.Info("project notifiers loaded",
		"fresh_database", fresh, "declared", registry.Len(), "seeded", seeded)

	// Sends must survive shutdown so queued events drain.
	handleCtx := context.WithoutCancel(ctx)
	bus := eventbus.New(eventbus.WithLogger(sysLogger))
	bus.Subscribe(func(e eventbus.Event) {
		if err := notificationSvc.HandleBuildEvent(handleCtx, e); err != nil {
			attrs := []any{"kind", e.Kind, "error", err}
			if e.Build != nil {
				attrs = append(attrs, "project", e.Build.ProjectName(), "label", e.Build.Label())
			}
			sysLogger.Error("build notification failed", attrs...)
		}
	})
	defer bus.Close()

	sched, err := scheduler.New(scheduler.Config{
		Store:     deliveries,
		Retention: cfg.LogRetention,
		Logger:    sysLogger,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			sysLogger.Warn("stopping scheduler", "error", err)
		}
	}()

	apiSrv := api.New(notificationSvc, bus, collector, sysLogger)
	srv := server.New(apiSrv, collector.Handler(), cfg.Port, sysLogger)

	sysLogger.Info("server ready", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	return srv.Run(ctx)
}

// smtpConfig maps the SMTP_* environment settings onto the transport config.
func smtpConfig(cfg *config.AppConfig) notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		Encryption: cfg.SMTPEncryption,
	}
}
