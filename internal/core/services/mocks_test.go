package services

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// --- Shared mock implementations for service tests ---

// mockConnector implements driven.Connector for testing.
type mockConnector struct {
	mu           sync.Mutex
	sourceType   domain.SourceType
	messages     []domain.Message
	fetchErr     error
	fetchBlock   chan struct{}
	permalinks   map[string]string
	permalinkErr error
	onPermalink  func(id string)
	channels     []string
	closed       bool
}

func (m *mockConnector) Type() domain.SourceType { return m.sourceType }

func (m *mockConnector) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	if m.fetchBlock != nil {
		select {
		case <-m.fetchBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]domain.Message, len(m.messages))
	for i := range m.messages {
		out[i] = m.messages[i]
		out[i].Replies = append([]domain.Reply(nil), m.messages[i].Replies...)
	}
	return out, nil
}

func (m *mockConnector) Permalink(_ context.Context, id string) (string, error) {
	if m.onPermalink != nil {
		m.onPermalink(id)
	}
	if m.permalinkErr != nil {
		return "", m.permalinkErr
	}
	return m.permalinks[id], nil
}

func (m *mockConnector) List(_ context.Context) ([]string, error) { return m.channels, nil }

func (m *mockConnector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConnector) setReply(id string, index int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].Replies[index].Text = text
		}
	}
}

// registryWith returns a registry that always hands out the given connector.
func registryWith(conn driven.Connector, types ...domain.SourceType) *ConnectorRegistry {
	r := NewConnectorRegistry()
	for _, t := range types {
		r.Register(t, func(_ context.Context, _ domain.Source) (driven.Connector, error) {
			return conn, nil
		})
	}
	return r
}

// mockEmbedder implements driven.EmbeddingService with deterministic vectors.
type mockEmbedder struct {
	mu        sync.Mutex
	dims      int
	calls     map[string]int
	vectors   map[string][]float32
	errs      map[string]error
	transient int
	onEmbed   func(text string)
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{
		dims:    dims,
		calls:   make(map[string]int),
		vectors: make(map[string][]float32),
		errs:    make(map[string]error),
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls[text]++
	hook := m.onEmbed
	if m.transient > 0 {
		m.transient--
		m.mu.Unlock()
		return nil, domain.ErrTransient
	}
	if err, ok := m.errs[text]; ok {
		m.mu.Unlock()
		return nil, err
	}
	vec, ok := m.vectors[text]
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}
	if ok {
		return vec, nil
	}
	return hashVector(text, m.dims), nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embedding" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func (m *mockEmbedder) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockEmbedder) callsFor(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[text]
}

// hashVector derives a stable non-zero vector from text.
func hashVector(text string, dims int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float32, dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(seed%1000)/1000 + 0.001
	}
	return vec
}

// mockIndex implements driven.VectorIndex returning preset matches.
type mockIndex struct {
	name     string
	dims     int
	matches  []domain.VectorMatch
	queryErr error
	lastK    int
	queries  int
}

func (m *mockIndex) Name() string { return m.name }

func (m *mockIndex) Get(_ context.Context, _ ...string) ([]domain.VectorRecord, error) {
	return nil, nil
}

func (m *mockIndex) Add(_ context.Context, _ domain.VectorRecord) error    { return nil }
func (m *mockIndex) Update(_ context.Context, _ domain.VectorRecord) error { return nil }

func (m *mockIndex) Query(_ context.Context, _ []float32, k int) ([]domain.VectorMatch, error) {
	m.queries++
	m.lastK = k
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if len(m.matches) > k {
		return m.matches[:k], nil
	}
	return m.matches, nil
}

func (m *mockIndex) Count(_ context.Context) (int, error)      { return len(m.matches), nil }
func (m *mockIndex) Dimensions(_ context.Context) (int, error) { return m.dims, nil }

// mockCompletion implements driven.CompletionService for testing.
type mockCompletion struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockCompletion) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	return m.reply, m.err
}

func (m *mockCompletion) ModelName() string { return "mock-completion" }
func (m *mockCompletion) Close() error      { return nil }

// mockRetrieval implements driving.RetrievalService for testing.
type mockRetrieval struct {
	results       []domain.RetrievalResult
	err           error
	lastQuery     string
	lastTopK      int
	lastThreshold float64
}

func (m *mockRetrieval) Retrieve(_ context.Context, query string, topK int, threshold float64) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	m.lastThreshold = threshold
	return m.results, m.err
}

// fastRetry keeps retry tests quick.
func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}
