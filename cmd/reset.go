package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/remote"
)

var resetCmd = &cobra.Command{
	Use:   "reset <block>",
	Short: "Reset the learning progress of a block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("resetting %q forgets every learned word in it; rerun with --yes", args[0])
		}

		cfg, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := remote.New(cfg.Remote(), st.EventRepo())
		if err != nil {
			return fmt.Errorf("remote client: %w", err)
		}

		ctx, cancel := context.WithTimeout(remote.WithPurpose(cmd.Context(), "reset"), cfg.Timeout)
		defer cancel()
		if err := client.ResetBlock(ctx, args[0]); err != nil {
			return fmt.Errorf("reset %s (%s error): %w", args[0], remote.Kind(err), err)
		}
		fmt.Printf("Progress of %s reset.\n", args[0])
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
