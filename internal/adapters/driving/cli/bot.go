package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Answer questions asked by mentioning the app in Slack",
	Long: `Connects to Slack over Socket Mode and answers every mention of the
app in the mention's thread, followed by the "Relevant Sources" it drew on.

Requires SLACK_TOKEN (bot token) and SLACK_APP_TOKEN (app-level token with
connections:write). Runs in the foreground until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	if runSlackBot == nil {
		return errors.New("slack bot not configured")
	}

	cmd.Println("Slack bot running. Press Ctrl+C to stop.")
	err := runSlackBot(cmd.Context())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
