package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/geogem/internal/llm"
	"github.com/abhisek/geogem/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect logged server and LLM requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		target, _ := cmd.Flags().GetString("target")
		failed, _ := cmd.Flags().GetBool("failed")

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.EventRepo().QueryRequests(ctx, store.QueryOpts{Limit: limit, Target: target, Failed: failed})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No requests logged.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-6s  %-28s  %-4s  %-3s  %-7s  %s\n",
			"ID", "Timestamp", "Target", "Operation", "HTTP", "Try", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 96))

		var cost float64
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorKind
			}
			op := e.Operation
			if len(op) > 28 {
				op = op[:28]
			}
			fmt.Printf("%-5d  %-19s  %-6s  %-28s  %-4d  %-3d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Target,
				op,
				e.StatusCode,
				e.Attempts,
				e.LatencyMs,
				ok,
			)
			if e.Target == "llm" {
				if c := llm.LookupCost(e.Operation); c != nil {
					cost += c.Cost(e.InputTokens, e.OutputTokens)
				}
			}
		}
		if cost > 0 {
			fmt.Printf("\nEstimated LLM cost: $%.4f\n", cost)
		}
		return nil
	},
}

var requestsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of a logged request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		e, err := s.EventRepo().GetRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Target:    %s\n", e.Target)
		fmt.Printf("Operation: %s\n", e.Operation)
		if e.Method != "" {
			fmt.Printf("Request:   %s %s\n", e.Method, e.URL)
			fmt.Printf("Status:    %d\n", e.StatusCode)
		}
		if e.Purpose != "" {
			fmt.Printf("Purpose:   %s\n", e.Purpose)
		}
		if e.Target == "llm" {
			fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			if c := llm.LookupCost(e.Operation); c != nil {
				fmt.Printf("Cost:      $%.6f\n", c.Cost(e.InputTokens, e.OutputTokens))
			}
		}
		fmt.Printf("Latency:   %dms over %d attempt(s)\n", e.LatencyMs, e.Attempts)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     [%s] %s\n", e.ErrorKind, e.ErrorMessage)
		}

		fmt.Println()
		fmt.Println(sep)
		fmt.Println("REQUEST")
		fmt.Println(sep)
		if e.RequestBody != "" {
			fmt.Println(e.RequestBody)
		} else {
			fmt.Println("(not captured)")
		}

		fmt.Println(sep)
		fmt.Println("RESPONSE")
		fmt.Println(sep)
		if e.ResponseBody != "" {
			fmt.Println(e.ResponseBody)
		} else {
			fmt.Println("(not captured)")
		}
		return nil
	},
}

func init() {
	requestsListCmd.Flags().Int("limit", 20, "Maximum number of requests to show")
	requestsListCmd.Flags().String("target", "", "Only show \"remote\" or \"llm\" requests")
	requestsListCmd.Flags().Bool("failed", false, "Only show failed requests")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsViewCmd)
}
