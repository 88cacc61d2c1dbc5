package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/services"
)

var scheduleEvery string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Synchronise all sources on an interval",
	Long: `Runs a sync of every source immediately and then once per interval,
in the foreground, until interrupted. A run that is still in progress when
the next one is due causes that tick to be skipped.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleEvery, "interval", "", "time between runs (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if syncEngine == nil {
		return errors.New("sync service not configured")
	}

	interval := scheduleInterval
	if scheduleEvery != "" {
		settings := domain.Settings{Scheduler: domain.SchedulerSettings{Interval: scheduleEvery}}
		parsed, err := settings.ScheduleInterval()
		if err != nil {
			return err
		}
		interval = parsed
	}

	var mu sync.Mutex
	scheduler := services.NewScheduler(interval, syncEngine)
	scheduler.OnRun = func(reports []*domain.SyncReport, err error) {
		mu.Lock()
		defer mu.Unlock()
		for _, report := range reports {
			printReport(cmd, report)
		}
		if err != nil {
			cmd.PrintErrf("scheduled sync: %v\n", err)
		}
	}

	cmd.Printf("Synchronising every %s. Press Ctrl+C to stop.\n", scheduler.Interval())
	err := scheduler.Start(cmd.Context())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
