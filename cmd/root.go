package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/buildnotify/internal/config"
)

// NewRootCmd returns the buildnotify command tree.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "buildnotify",
		Short: "E-mail notifications for CI builds",
		Long: `buildnotify e-mails a project's recipients when a build fails and when a
failing build is fixed. Run "buildnotify serve" for the HTTP service or
"buildnotify notify" for a one-shot send from a build script.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewServeCmd(cfg))
	root.AddCommand(NewNotifyCmd(cfg))
	root.AddCommand(NewUpdateCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

// Execute runs the root command.
func Execute(cfg *config.AppConfig) {
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
