// Package cli wires the Metronome commands and the dashboard TUI.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mheikkola/metronome/internal/api"
	"github.com/mheikkola/metronome/internal/config"
	"github.com/mheikkola/metronome/internal/dashboard"
)

// App holds the wired dependencies used by CLI commands.
type App struct {
	Config *config.Config
	Client api.Client
	Orch   *dashboard.Orchestrator

	// IsInteractive reports whether stdin is a terminal; the dashboard
	// command refuses to start the TUI without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "metronome" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "metronome",
		Short: "Initiative and decision tracker with a live sync workflow",
	}

	root.AddCommand(
		newDashboardCmd(app),
		newStatusCmd(app),
		newServeCmd(app),
		newInitCmd(app),
	)

	return root
}
