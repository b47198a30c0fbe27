package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mheikkola/metronome/internal/config"
)

func newInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default metronome.yml into the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path("")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
