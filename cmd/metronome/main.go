package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/mheikkola/metronome/internal/api"
	"github.com/mheikkola/metronome/internal/cli"
	"github.com/mheikkola/metronome/internal/config"
	"github.com/mheikkola/metronome/internal/dashboard"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	workspace := os.Getenv("METRONOME_WORKSPACE")

	cfg, err := config.Load(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// metronome.yml provides the backend settings; METRONOME_API_* env
	// variables override them per invocation.
	apiCfg := api.ApplyEnv(api.Config{
		Endpoint:  cfg.Backend.Endpoint,
		Token:     cfg.Backend.Token,
		TimeoutMs: cfg.Backend.TimeoutMs,
	})

	client := api.NewHTTPClient(apiCfg)

	app := &cli.App{
		Config: cfg,
		Client: client,
		Orch:   dashboard.New(client, cfg.Permissions(), time.Now),
	}

	// Detect interactive terminal for the dashboard entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
