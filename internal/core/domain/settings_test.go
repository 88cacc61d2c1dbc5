package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() Settings {
	s := DefaultSettings()
	s.Embedding.APIKey = "sk-test"
	s.Credentials.SlackToken = "xoxb-test"
	s.Sources = []Source{{Name: "general", Type: SourceSlack, Channel: "general"}}
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, DefaultEmbeddingModel, s.Embedding.Model)
	assert.Equal(t, 10, s.Retrieval.TopK)
	assert.InDelta(t, 0.6, s.Retrieval.Threshold, 1e-9)
	assert.Equal(t, StagingMemory, s.Sync.Staging)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)

	base, maxDelay, err := s.RetryDelays()
	require.NoError(t, err)
	assert.Equal(t, DefaultRetryBaseDelay, base)
	assert.Equal(t, DefaultRetryMaxDelay, maxDelay)

	interval, err := s.ScheduleInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, interval)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"valid", func(*Settings) {}, ""},
		{"missing api key", func(s *Settings) { s.Embedding.APIKey = "" }, "embedding.api_key"},
		{"ollama needs no key", func(s *Settings) {
			s.Embedding.Provider = AIProviderOllama
			s.Embedding.APIKey = ""
		}, ""},
		{"unknown provider", func(s *Settings) { s.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"zero top k", func(s *Settings) { s.Retrieval.TopK = 0 }, "retrieval.top_k"},
		{"threshold too high", func(s *Settings) { s.Retrieval.Threshold = 1.5 }, "retrieval.threshold"},
		{"bad staging", func(s *Settings) { s.Sync.Staging = "s3" }, "sync.staging"},
		{"bad backend", func(s *Settings) { s.Storage.Backend = "chroma" }, "storage.backend"},
		{"bad delay", func(s *Settings) { s.Sync.RetryBaseDelay = "soon" }, "sync.retry_base_delay"},
		{"bad interval", func(s *Settings) { s.Scheduler.Interval = "-1h" }, "scheduler.interval"},
		{"missing slack token", func(s *Settings) { s.Credentials.SlackToken = "" }, "credentials.slack_token"},
		{"missing github token", func(s *Settings) {
			s.Sources = append(s.Sources, Source{Name: "issues", Type: SourceGitHub, Channel: "acme/api"})
		}, "credentials.github_token"},
		{"duplicate source", func(s *Settings) {
			s.Sources = append(s.Sources, s.Sources[0])
		}, "sources.general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestSettings_ValidateCompletion(t *testing.T) {
	s := validSettings()
	assert.Error(t, s.ValidateCompletion())

	s.Completion.APIKey = "sk-test"
	assert.NoError(t, s.ValidateCompletion())

	s.Completion.Provider = AIProviderOllama
	s.Completion.APIKey = ""
	assert.NoError(t, s.ValidateCompletion())
}

func TestSettings_SourceLookup(t *testing.T) {
	s := validSettings()

	src, err := s.Source("general")
	require.NoError(t, err)
	assert.Equal(t, SourceSlack, src.Type)

	_, err = s.Source("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSettings_QueryCollection(t *testing.T) {
	s := validSettings()
	assert.Equal(t, "slack", s.QueryCollection())

	s.Retrieval.Collection = "slack_messages"
	assert.Equal(t, "slack_messages", s.QueryCollection())

	empty := DefaultSettings()
	assert.Equal(t, "slack", empty.QueryCollection())
}
