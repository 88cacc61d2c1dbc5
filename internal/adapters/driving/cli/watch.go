package cli

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadrag/internal/connectors/export"
	"github.com/custodia-labs/threadrag/internal/core/domain"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-sync export sources when their files change",
	Long: `Synchronises every export source once, then watches the export files
and synchronises a source again whenever its file is written.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", export.DefaultDebounce, "quiet period before a change triggers a sync")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if syncEngine == nil {
		return errors.New("sync service not configured")
	}
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	byPath := make(map[string]domain.Source)
	paths := make([]string, 0)
	for _, src := range sourceService.Sources() {
		if src.Type != domain.SourceExport {
			continue
		}
		path := filepath.Clean(export.ExpandPath(src.Channel))
		byPath[path] = src
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return errors.New("no export sources configured")
	}

	ctx := cmd.Context()
	var mu sync.Mutex
	syncSource := func(src domain.Source) {
		report, err := syncEngine.Sync(ctx, src)
		mu.Lock()
		defer mu.Unlock()
		if report != nil {
			printReport(cmd, report)
		}
		if err != nil {
			cmd.PrintErrf("sync %s: %v\n", src.Name, err)
		}
	}

	for _, path := range paths {
		syncSource(byPath[path])
	}

	cmd.Printf("Watching %d export files. Press Ctrl+C to stop.\n", len(paths))
	watcher := export.NewWatcher(paths, watchDebounce)
	err := watcher.Run(ctx, func(path string) {
		if src, ok := byPath[path]; ok {
			syncSource(src)
		}
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
