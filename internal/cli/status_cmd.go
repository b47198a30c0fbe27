package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mheikkola/metronome/internal/cli/formatter"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a one-shot dashboard snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Orch.Refresh(context.Background()); err != nil {
				return fmt.Errorf("fetching dashboard: %w", err)
			}

			store := app.Orch.Store()
			out := formatter.FormatStatus(
				store.Summary(),
				app.Orch.Partitions(),
				store.ActionsByInitiative(),
				time.Now(),
			)
			fmt.Println(out)
			return nil
		},
	}
}
