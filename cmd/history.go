package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/screens/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		block, _ := cmd.Flags().GetString("block")

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		repo := st.ReportRepo()
		reports, err := repo.ListReports(ctx, limit)
		if block != "" {
			reports, err = repo.ReportsForBlock(ctx, block, limit)
		}
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		if len(reports) == 0 {
			fmt.Println("No quizzes finished yet.")
			return nil
		}

		fmt.Printf("%-17s  %-12s %-16s %s\n", "Finished", "Block", "Mode", "Result")
		fmt.Println(strings.Repeat("─", 64))
		undelivered := 0
		for _, r := range reports {
			fmt.Println(history.Line(r))
			if !r.Delivered {
				undelivered++
			}
		}
		if undelivered > 0 {
			fmt.Printf("\n! %d result(s) were not delivered to the server.\n", undelivered)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", history.Limit, "Maximum number of quizzes to show")
	historyCmd.Flags().String("block", "", "Only show quizzes of this block")
}
