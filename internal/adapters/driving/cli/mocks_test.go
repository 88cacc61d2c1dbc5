package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
)

// mockSyncEngine implements driving.SyncEngine for testing.
type mockSyncEngine struct {
	mu         sync.Mutex
	report     *domain.SyncReport
	reports    []*domain.SyncReport
	err        error
	synced     []string
	syncAllRun int
}

func (m *mockSyncEngine) Sync(_ context.Context, source domain.Source) (*domain.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced = append(m.synced, source.Name)
	if m.report != nil {
		return m.report, m.err
	}
	return &domain.SyncReport{Source: source.Name, Collection: source.CollectionName()}, m.err
}

func (m *mockSyncEngine) SyncAll(_ context.Context) ([]*domain.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncAllRun++
	return m.reports, m.err
}

func (m *mockSyncEngine) Status(_ context.Context, _ string) (*driving.SyncStatus, error) {
	return nil, nil
}

func (m *mockSyncEngine) syncedSources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.synced...)
}

// mockRunHistory implements driving.RunHistory for testing.
type mockRunHistory struct {
	runs      []domain.SyncReport
	err       error
	gotSource string
	gotLimit  int
}

func (m *mockRunHistory) History(_ context.Context, source string, limit int) ([]domain.SyncReport, error) {
	m.gotSource = source
	m.gotLimit = limit
	return m.runs, m.err
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	results      []domain.RetrievalResult
	err          error
	gotQuery     string
	gotTopK      int
	gotThreshold float64
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	query string,
	topK int,
	threshold float64,
) ([]domain.RetrievalResult, error) {
	m.gotQuery = query
	m.gotTopK = topK
	m.gotThreshold = threshold
	return m.results, m.err
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	answer      *domain.Answer
	err         error
	gotQuestion string
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.gotQuestion = question
	return m.answer, m.err
}

// mockStatsService implements driving.StatsService for testing.
type mockStatsService struct {
	stats []domain.CollectionStats
	err   error
}

func (m *mockStatsService) Stats(_ context.Context) ([]domain.CollectionStats, error) {
	return m.stats, m.err
}

// mockSourceService implements driving.SourceService for testing.
type mockSourceService struct {
	sources  []domain.Source
	channels []string
	err      error
}

func (m *mockSourceService) Sources() []domain.Source {
	return m.sources
}

func (m *mockSourceService) Channels(_ context.Context, _ string) ([]string, error) {
	return m.channels, m.err
}

// withServices installs svc for the duration of a test.
func withServices(t *testing.T, svc *Services) {
	t.Helper()
	setServices(svc)
	t.Cleanup(func() {
		setServices(&Services{})
		defaultTopK = domain.DefaultTopK
		defaultThreshold = domain.DefaultThreshold
		scheduleInterval = domain.DefaultScheduleInterval
	})
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

// executeContext is execute with a caller-controlled context.
// Flags are restored to their defaults afterwards.
func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	// Subcommands keep the first context they saw unless reset.
	setContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		setContext(child, ctx)
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
