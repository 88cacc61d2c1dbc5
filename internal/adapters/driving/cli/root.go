// Package cli provides the threadrag command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// Services bundles what the commands drive.
type Services struct {
	Sync      driving.SyncEngine
	History   driving.RunHistory
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Stats     driving.StatsService
	Sources   driving.SourceService

	// Ping checks the embedding provider. Optional.
	Ping func(ctx context.Context) error

	// Bot serves Slack mentions until ctx is done. Optional.
	Bot func(ctx context.Context) error

	// TopK and Threshold are the configured query defaults.
	TopK      int
	Threshold float64

	// ScheduleInterval is the configured time between scheduled syncs.
	ScheduleInterval time.Duration

	// Close releases clients and stores. Optional.
	Close func() error
}

// Loader builds the services for a config file path.
// An empty path selects the default location.
type Loader func(ctx context.Context, configPath string) (*Services, error)

// skipLoad marks commands that run without configuration.
const skipLoad = "threadrag/skip-load"

var (
	version = "dev"

	configPath string
	verbose    bool

	loader        Loader
	closeServices func() error

	syncEngine       driving.SyncEngine
	runHistory       driving.RunHistory
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	statsService     driving.StatsService
	sourceService    driving.SourceService
	pingEmbedding    func(ctx context.Context) error
	runSlackBot      func(ctx context.Context) error

	defaultTopK      = domain.DefaultTopK
	defaultThreshold = domain.DefaultThreshold
	scheduleInterval = domain.DefaultScheduleInterval
)

var rootCmd = &cobra.Command{
	Use:   "threadrag",
	Short: "Retrieval-augmented answers over team conversations",
	Long: `threadrag indexes Slack channels, GitHub issues and Slack export files
into vector collections and answers questions grounded in those conversations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return releaseServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.threadrag/config.toml)")
}

// Execute runs the root command. load builds the services after flags are parsed.
func Execute(ctx context.Context, load Loader, buildVersion string) error {
	loader = load
	if buildVersion != "" {
		version = buildVersion
	}
	// cmd.Print* writes to stderr unless an output is set.
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := releaseServices(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func loadServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if loader == nil || cmd.Annotations[skipLoad] == "true" {
		return nil
	}

	svc, err := loader(cmd.Context(), configPath)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return err
	}
	setServices(svc)
	return nil
}

func setServices(svc *Services) {
	syncEngine = svc.Sync
	runHistory = svc.History
	retrievalService = svc.Retrieval
	answerService = svc.Answer
	statsService = svc.Stats
	sourceService = svc.Sources
	pingEmbedding = svc.Ping
	runSlackBot = svc.Bot
	closeServices = svc.Close

	if svc.TopK > 0 {
		defaultTopK = svc.TopK
	}
	defaultThreshold = svc.Threshold
	if svc.ScheduleInterval > 0 {
		scheduleInterval = svc.ScheduleInterval
	}
}

func releaseServices() error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}

// findSource returns the configured source with the given name.
func findSource(name string) (domain.Source, error) {
	if sourceService == nil {
		return domain.Source{}, errors.New("source service not configured")
	}
	for _, src := range sourceService.Sources() {
		if src.Name == name {
			return src, nil
		}
	}
	return domain.Source{}, fmt.Errorf("source %q: %w", name, domain.ErrNotFound)
}
