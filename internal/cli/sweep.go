package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/safeguardian/autopilot/internal/automation"
)

func newSweepCmd(configPath *string) *cobra.Command {
	var agentID string
	var email string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one automation sweep and print the results",
		Long: `Authenticate, run the automation decision over every open conversation of
the agent and print one result per conversation. The password is read from
AUTOPILOT_PASSWORD or prompted interactively.

Examples:
  autopilot sweep --email ops@example.com
  autopilot sweep --agent helpdesk --email ops@example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			if agentID == "" {
				agentID = app.cfg.DefaultAgent
			}

			password, err := resolvePassword()
			if err != nil {
				return err
			}
			if _, err := app.client.Login(cmd.Context(), email, password, ""); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			spin.Suffix = fmt.Sprintf(" sweeping open conversations of %s...", agentID)
			spin.Start()
			results, err := app.runner.Sweep(cmd.Context(), agentID)
			spin.Stop()
			if err != nil {
				return err
			}

			printResults(results)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "Agent to sweep (default: configured default agent)")
	cmd.Flags().StringVar(&email, "email", "", "Account email used to authenticate")
	cmd.MarkFlagRequired("email") //nolint:errcheck // flag exists

	return cmd
}

func printResults(results []automation.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Conversation", "Outcome", "Entry", "Confidence", "Reason"})

	sent := 0
	for _, result := range results {
		if result.ReplySent {
			sent++
			t.AppendRow(table.Row{
				result.ConversationID,
				color.GreenString("SENT"),
				result.EntryID,
				fmt.Sprintf("%.2f", result.Confidence),
				"",
			})
			continue
		}
		t.AppendRow(table.Row{
			result.ConversationID,
			color.YellowString("SKIPPED"),
			"",
			"",
			result.Reason,
		})
	}
	t.Render()

	fmt.Printf("%d conversation(s) evaluated, %d reply(ies) sent\n", len(results), sent)
}
