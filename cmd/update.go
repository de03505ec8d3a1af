package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/buildnotify/internal/buildinfo"
)

const releaseSlug = "shaharia-lab/buildnotify"

// releaseUpdater is the part of selfupdate.Updater the command drives.
type releaseUpdater interface {
	DetectLatest(ctx context.Context, repo selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

type updateOptions struct {
	yes   bool
	check bool
}

// NewUpdateCmd returns the "update" subcommand that self-updates the binary.
func NewUpdateCmd() *cobra.Command {
	var opts updateOptions

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update buildnotify to the latest release",
		Long: `Check GitHub releases for a newer version of buildnotify and replace the
running binary with it. Pre-releases are only offered to pre-release builds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := buildinfo.Semver()
			if err != nil {
				return fmt.Errorf("cannot update a development build; install a tagged release first")
			}
			updater, err := selfupdate.NewUpdater(selfupdate.Config{
				Prerelease: current.Prerelease() != "",
			})
			if err != nil {
				return fmt.Errorf("creating updater: %w", err)
			}
			return runUpdate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), updater, current.String(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Only report whether an update is available")
	return cmd
}

func runUpdate(ctx context.Context, in io.Reader, out io.Writer, updater releaseUpdater, current string, opts updateOptions) error {
	fmt.Fprintf(out, "Current version: %s\n", current)
	fmt.Fprint(out, "Checking for updates... ")

	release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		fmt.Fprintln(out)
		return fmt.Errorf("checking for updates: %w", err)
	}
	if !found || !release.GreaterThan(current) {
		fmt.Fprintln(out, "already up to date.")
		return nil
	}
	fmt.Fprintf(out, "found %s\n", release.Version())

	if opts.check {
		return nil
	}
	if !opts.yes && !confirm(in, out, fmt.Sprintf("Update to %s?", release.Version())) {
		fmt.Fprintln(out, "Update canceled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("updating to %s: %w", release.Version(), err)
	}

	fmt.Fprintf(out, "Updated to %s. Restart buildnotify to use the new version.\n", release.Version())
	return nil
}

// confirm asks a yes/no question and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
