package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mheikkola/metronome/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference ops backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = app.Config.Server.Listen
			}
			if dbPath == "" {
				dbPath = app.Config.Server.DBPath
			}

			db, err := server.OpenDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			fmt.Printf("metronome backend listening on %s (db %s)\n", listen, dbPath)
			return http.ListenAndServe(listen, server.New(db))
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from metronome.yml)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from metronome.yml)")

	return cmd
}
