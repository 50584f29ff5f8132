package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/app"
	"github.com/abhisek/geogem/internal/examples"
	"github.com/abhisek/geogem/internal/llm"
	"github.com/abhisek/geogem/internal/remote"
	"github.com/abhisek/geogem/internal/screen"
	"github.com/abhisek/geogem/internal/screens/home"
)

// runApp opens the store, builds dependencies, and launches the TUI. start,
// when set, opens a screen over home.
func runApp(cmd *cobra.Command, start func(h *home.Screen) screen.Screen) error {
	ctx := cmd.Context()
	cfg, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	client, err := remote.New(cfg.Remote(), eventRepo)
	if err != nil {
		return fmt.Errorf("remote client: %w", err)
	}

	opts := app.Options{
		Home: home.Deps{
			Backend: client,
			Reports: st.ReportRepo(),
			Timeout: cfg.Timeout,
		},
		Start: start,
	}

	if cfg.LLM.Enabled() {
		provider, err := llm.NewProvider(ctx, cfg.LLM, eventRepo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Generated examples will be unavailable.")
		} else {
			exCfg := examples.DefaultConfig()
			if cfg.LLM.Timeout > 0 {
				exCfg.Timeout = cfg.LLM.Timeout
			}
			opts.Home.Examples = examples.NewService(provider, exCfg)
		}
	}

	return app.Run(opts)
}
