package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

func testSettings(t *testing.T) *domain.Settings {
	t.Helper()
	settings := domain.DefaultSettings()
	settings.DataDir = t.TempDir()
	settings.Embedding.APIKey = "sk-test"
	settings.Completion.APIKey = "sk-test"
	settings.Storage.Backend = domain.StorageMemory
	settings.Credentials.SlackToken = "xoxb-test"
	settings.Sources = []domain.Source{
		{Name: "eng", Type: domain.SourceSlack, Channel: "engineering"},
		{Name: "archive", Type: domain.SourceExport, Channel: filepath.Join(settings.DataDir, "general.json")},
	}
	return &settings
}

func TestNew_MemoryBackend(t *testing.T) {
	settings := testSettings(t)

	app, err := New(context.Background(), settings)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Sync)
	assert.NotNil(t, app.Retrieval)
	assert.NotNil(t, app.Answer)
	assert.NotNil(t, app.Stats)
	assert.Len(t, app.Sources.Sources(), 2)
	assert.NotNil(t, app.completion)
}

func TestNew_SQLiteBackend(t *testing.T) {
	settings := testSettings(t)
	settings.Storage.Backend = domain.StorageSQLite
	settings.Sync.Staging = domain.StagingFile

	app, err := New(context.Background(), settings)
	require.NoError(t, err)

	entries, err := os.ReadDir(settings.DataDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	assert.NoError(t, app.Close())
}

func TestNew_InvalidSettings(t *testing.T) {
	settings := testSettings(t)
	settings.Embedding.APIKey = ""

	app, err := New(context.Background(), settings)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNew_CompletionOptional(t *testing.T) {
	settings := testSettings(t)
	settings.Completion.Provider = "bogus"

	app, err := New(context.Background(), settings)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.completion)
	assert.NotNil(t, app.Answer)
}

func TestApp_RunBot_RequiresCredentials(t *testing.T) {
	settings := testSettings(t)
	settings.Credentials.SlackToken = "xoxb-test"

	app, err := New(context.Background(), settings)
	require.NoError(t, err)
	defer app.Close()

	err = app.RunBot(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "SLACK_APP_TOKEN")
}

func TestApp_RunBot_RequiresCompletion(t *testing.T) {
	settings := testSettings(t)
	settings.Completion.Provider = "bogus"
	settings.Credentials.SlackToken = "xoxb-test"
	settings.Credentials.SlackAppToken = "xapp-test"

	app, err := New(context.Background(), settings)
	require.NoError(t, err)
	defer app.Close()

	assert.ErrorIs(t, app.RunBot(context.Background()), domain.ErrConfiguration)
}

func TestNew_RetryPolicyFromSettings(t *testing.T) {
	settings := testSettings(t)
	settings.Sync.RetryAttempts = 2
	settings.Sync.RetryBaseDelay = "10ms"
	settings.Sync.RetryMaxDelay = "40ms"

	policy, err := retryPolicy(settings)
	require.NoError(t, err)
	assert.Equal(t, 2, policy.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, 40*time.Millisecond, policy.MaxDelay)
}

func TestApp_Services(t *testing.T) {
	settings := testSettings(t)
	settings.Retrieval.TopK = 7
	settings.Retrieval.Threshold = 0.75
	settings.Scheduler.Interval = "15m"

	app, err := New(context.Background(), settings)
	require.NoError(t, err)

	svc, err := app.Services()
	require.NoError(t, err)
	assert.Equal(t, 7, svc.TopK)
	assert.InDelta(t, 0.75, svc.Threshold, 1e-9)
	assert.Equal(t, 15*time.Minute, svc.ScheduleInterval)
	assert.NotNil(t, svc.Ping)
	assert.NotNil(t, svc.Bot)
	require.NotNil(t, svc.Close)
	assert.NoError(t, svc.Close())
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry(domain.CredentialSettings{SlackToken: "xoxb", GitHubToken: "ghp"})

	assert.Equal(t,
		[]domain.SourceType{domain.SourceExport, domain.SourceGitHub, domain.SourceSlack},
		registry.SupportedTypes())

	_, err := registry.Create(context.Background(), domain.Source{
		Name: "tickets", Type: domain.SourceJira, Channel: "OPS",
	})
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	connector, err := registry.Create(context.Background(), domain.Source{
		Name: "archive", Type: domain.SourceExport, Channel: "/tmp/general.json",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceExport, connector.Type())
}

func TestLoad(t *testing.T) {
	t.Setenv("THREADRAG_DATA_DIR", "")
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	configPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`data_dir = %q

[embedding]
provider = "ollama"
model = "nomic-embed-text"

[completion]
provider = "ollama"
model = "llama3.2"

[retrieval]
top_k = 4
threshold = 0.5

[storage]
backend = "memory"

[[sources]]
name = "archive"
type = "export"
channel = %q
`, dataDir, filepath.Join(dir, "general.json"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	svc, err := Load(context.Background(), configPath)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 4, svc.TopK)
	assert.InDelta(t, 0.5, svc.Threshold, 1e-9)
	require.Len(t, svc.Sources.Sources(), 1)
	assert.Equal(t, "archive", svc.Sources.Sources()[0].Name)
	assert.DirExists(t, dataDir)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[storage\nbackend ="), 0o600))

	_, err := Load(context.Background(), configPath)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
