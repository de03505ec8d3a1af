package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	bannerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b91c1c"))
	bannerLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(10)
	bannerValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d"))
	bannerBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
)

// printBanner writes the startup banner. It is the only output visible in
// the terminal during normal operation; all structured logs go to the log
// file instead.
func printBanner(w io.Writer, version, serverURL, logFile string) {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, bannerLabel.Render(label), bannerValue.Render(value))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		bannerTitle.Render("buildnotify "+version),
		"",
		row("API", serverURL+"/api"),
		row("Metrics", serverURL+"/metrics"),
		row("Logs", logFile),
	)
	fmt.Fprintln(w, bannerBox.Render(body))
}
