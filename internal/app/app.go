// Package app wires settings, adapters and core services into the
// services the driving adapters use. Every client is built once here
// and injected; nothing below this package reads process-wide state.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/threadrag/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/threadrag/internal/adapters/driven/config/file"
	storagefile "github.com/custodia-labs/threadrag/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/threadrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/threadrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/threadrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/threadrag/internal/adapters/driving/slackbot"
	"github.com/custodia-labs/threadrag/internal/connectors/export"
	"github.com/custodia-labs/threadrag/internal/connectors/github"
	"github.com/custodia-labs/threadrag/internal/connectors/slack"
	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
	"github.com/custodia-labs/threadrag/internal/core/services"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// App holds the wired application.
type App struct {
	Settings *domain.Settings

	Registry  *services.ConnectorRegistry
	Sync      *services.SyncEngine
	Retrieval *services.RetrievalEngine
	Answer    *services.AnswerService
	Stats     *services.StatsService
	Sources   *services.SourceCatalog

	store      driven.VectorStore
	embedder   driven.EmbeddingService
	completion driven.CompletionService
	index      driven.VectorIndex
}

// Load reads the configuration at configPath (or the default location)
// and builds the CLI services from it.
func Load(ctx context.Context, configPath string) (*cli.Services, error) {
	store, err := openConfig(configPath)
	if err != nil {
		return nil, err
	}

	settings, err := store.Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded configuration from %s", store.Path())

	app, err := New(ctx, settings)
	if err != nil {
		return nil, err
	}
	return app.Services()
}

func openConfig(configPath string) (*configfile.ConfigStore, error) {
	if configPath != "" {
		return configfile.NewConfigStoreAt(configPath), nil
	}
	return configfile.NewConfigStore("")
}

// New validates settings and builds every adapter and service.
// Resources opened before a failure are released.
func New(ctx context.Context, settings *domain.Settings) (app *App, err error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	app = &App{Settings: settings}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	if err := os.MkdirAll(settings.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	retry, err := retryPolicy(settings)
	if err != nil {
		return nil, err
	}

	var runStore driven.SyncRunStore
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		app.store = memory.NewVectorStore()
		runStore = memory.NewSyncRunStore()
	default:
		sqliteStore, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, err
		}
		app.store = sqliteStore
		runStore = sqliteStore.RunStore()
	}

	var staging driven.StagingStore
	switch settings.Sync.Staging {
	case domain.StagingFile:
		staging = storagefile.NewStagingStore(filepath.Join(settings.DataDir, "staging"))
	default:
		staging = memory.NewStagingStore()
	}

	app.embedder, err = ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return nil, err
	}

	// Answer generation is optional; sync and query work without it.
	if cerr := settings.ValidateCompletion(); cerr != nil {
		logger.Warn("Answer generation disabled: %v", cerr)
	} else if completion, cerr := ai.CreateCompletionService(settings.Completion); cerr != nil {
		logger.Warn("Answer generation disabled: %v", cerr)
	} else {
		app.completion = completion
	}

	app.Registry = NewRegistry(settings.Credentials)

	app.index, err = app.store.Collection(ctx, settings.QueryCollection())
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", settings.QueryCollection(), err)
	}

	app.Sync = services.NewSyncEngine(
		app.Registry,
		app.store,
		app.embedder,
		staging,
		storagefile.NewAuditLog(settings.DataDir),
		runStore,
		retry,
		settings.Sources,
	)
	app.Retrieval = services.NewRetrievalEngine(app.embedder, app.index, retry)

	app.Answer = services.NewAnswerService(
		app.Retrieval, app.completion, settings.Retrieval.TopK, settings.Retrieval.Threshold)
	app.Stats = services.NewStatsService(app.store)
	app.Sources = services.NewSourceCatalog(app.Registry, settings.Sources)

	logger.Debug("Wired %d source(s), storage %s, staging %s",
		len(settings.Sources), settings.Storage.Backend, settings.Sync.Staging)
	return app, nil
}

// NewRegistry registers a builder for every implemented source type.
// Jira stays unregistered and fails with ErrNotImplemented.
func NewRegistry(creds domain.CredentialSettings) *services.ConnectorRegistry {
	registry := services.NewConnectorRegistry()
	registry.Register(domain.SourceSlack, slack.Builder(creds.SlackToken))
	registry.Register(domain.SourceGitHub, github.Builder(creds.GitHubToken))
	registry.Register(domain.SourceExport, export.Build)
	return registry
}

func retryPolicy(settings *domain.Settings) (services.RetryPolicy, error) {
	base, maxDelay, err := settings.RetryDelays()
	if err != nil {
		return services.RetryPolicy{}, err
	}
	return services.RetryPolicy{
		MaxAttempts: settings.Sync.RetryAttempts,
		BaseDelay:   base,
		MaxDelay:    maxDelay,
	}, nil
}

// Services exposes the app to the CLI.
func (a *App) Services() (*cli.Services, error) {
	interval, err := a.Settings.ScheduleInterval()
	if err != nil {
		return nil, err
	}

	return &cli.Services{
		Sync:      a.Sync,
		History:   a.Sync,
		Retrieval: a.Retrieval,
		Answer:    a.Answer,
		Stats:     a.Stats,
		Sources:   a.Sources,
		Ping: func(ctx context.Context) error {
			return ai.PingEmbedding(ctx, a.embedder)
		},
		Bot:              a.RunBot,
		TopK:             a.Settings.Retrieval.TopK,
		Threshold:        a.Settings.Retrieval.Threshold,
		ScheduleInterval: interval,
		Close:            a.Close,
	}, nil
}

// RunBot serves Slack mentions with the answer service until ctx is done.
func (a *App) RunBot(ctx context.Context) error {
	if a.completion == nil {
		return domain.NewConfigurationError("completion", "the bot needs a completion provider")
	}
	creds := a.Settings.Credentials
	bot, err := slackbot.New(a.Answer, slackbot.Config{
		BotToken: creds.SlackToken,
		AppToken: creds.SlackAppToken,
	})
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}

// Close releases clients and the vector store.
func (a *App) Close() error {
	var errs []error
	if a.embedder != nil {
		errs = append(errs, a.embedder.Close())
	}
	if a.completion != nil {
		errs = append(errs, a.completion.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
