package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
)

var (
	syncShowHistory  bool
	syncHistoryLimit int
)

var syncCmd = &cobra.Command{
	Use:   "sync [source]",
	Short: "Synchronise conversations into collections",
	Long: `Fetches messages from configured sources, embeds new or changed
messages and writes them to their collections.
If a source name is provided, only that source is synchronised.
Otherwise, all sources are synchronised.

Use --history to list recorded runs instead of syncing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncShowHistory, "history", false, "show recorded sync runs")
	syncCmd.Flags().IntVarP(&syncHistoryLimit, "limit", "n", 10, "number of runs to show with --history")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncShowHistory {
		return runSyncHistory(cmd, args)
	}

	if syncEngine == nil {
		return errors.New("sync service not configured")
	}

	ctx := cmd.Context()

	if len(args) > 0 {
		// Sync specific source
		source, err := findSource(args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Synchronising source: %s...\n", source.Name)

		report, err := syncWithProgress(ctx, cmd, syncEngine, source)
		if report != nil {
			printReport(cmd, report)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	}

	// Sync all sources
	cmd.Println("Synchronising all sources...")

	reports, err := syncEngine.SyncAll(ctx)
	for _, report := range reports {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("%d sources synchronised.\n", len(reports))
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	engine driving.SyncEngine,
	source domain.Source,
) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}

	// Start sync in goroutine
	resultCh := make(chan result, 1)
	go func() {
		report, err := engine.Sync(ctx, source)
		resultCh <- result{report: report, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resultCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := engine.Status(ctx, source.Name)
			if statusErr == nil && status != nil && status.MessagesProcessed > lastCount {
				cmd.Printf("\rProcessing... %d messages", status.MessagesProcessed)
				lastCount = status.MessagesProcessed
			}
		}
	}
}

func printReport(cmd *cobra.Command, report *domain.SyncReport) {
	if report.SourceEmpty {
		cmd.Printf("%s: channel not found, nothing synchronised\n", render(cmd, headingStyle, report.Source))
		return
	}

	cmd.Printf("%s -> %s: %d fetched, %d inserted, %d updated, %d unchanged, %d failed",
		render(cmd, headingStyle, report.Source), report.Collection,
		report.Total, report.Inserted, report.Updated, report.Skipped, report.Failed)
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		cmd.Printf(" (%s)", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	cmd.Println()

	for _, failure := range report.Failures {
		cmd.Printf("  %s %s [%s]: %v\n", render(cmd, failStyle, "x"), failure.MessageID, failure.Stage, failure.Err)
	}
}

func runSyncHistory(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	source := ""
	if len(args) > 0 {
		source = args[0]
	}

	runs, err := runHistory.History(cmd.Context(), source, syncHistoryLimit)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}

	for i := range runs {
		run := &runs[i]
		cmd.Printf("%s  %-12s %s  +%d ~%d =%d !%d\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Source,
			render(cmd, mutedStyle, run.RunID),
			run.Inserted, run.Updated, run.Skipped, run.Failed)
	}
	return nil
}
