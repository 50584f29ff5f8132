package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/config"
	"github.com/abhisek/geogem/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local GeoGem server backed by the SQLite word bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetString("seed")
		addr, _ := cmd.Flags().GetString("addr")
		quiet, _ := cmd.Flags().GetBool("quiet")

		cfg, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		if addr == "" {
			addr = cfg.ListenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if seed != "" {
			f, err := os.Open(seed)
			if err != nil {
				return fmt.Errorf("open seed: %w", err)
			}
			n, err := server.Seed(ctx, st, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("seed %s: %w", seed, err)
			}
			fmt.Printf("Seeded %d words from %s\n", n, seed)
		}

		var opts []server.Option
		if !quiet {
			opts = append(opts, server.WithRequestLog())
		}
		fmt.Printf("Serving GeoGem on http://%s/\n", addr)
		return server.New(st, opts...).Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("seed", "", "JSON file of blocks and words loaded before serving")
	serveCmd.Flags().String("addr", "", "Listen address (default GEOGEM_LISTEN or "+config.DefaultListenAddr+")")
	serveCmd.Flags().Bool("quiet", false, "Do not log requests")
}
