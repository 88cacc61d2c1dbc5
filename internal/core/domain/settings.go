package domain

import (
	"fmt"
	"time"
)

// Default settings values.
const (
	DefaultTopK              = 10
	DefaultThreshold         = 0.6
	DefaultEmbeddingModel    = "text-embedding-ada-002"
	DefaultCompletionModel   = "gpt-4o-mini"
	DefaultScheduleInterval  = time.Hour
	DefaultRetryAttempts     = 4
	DefaultRetryBaseDelay    = 500 * time.Millisecond
	DefaultRetryMaxDelay     = 8 * time.Second
	DefaultRequestsPerSecond = 5.0
)

// AIProvider identifies an AI service provider for embeddings or completion.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// StagingMode selects where fetched messages are staged before processing.
type StagingMode string

const (
	// StagingMemory keeps the fetched batch in memory.
	StagingMemory StagingMode = "memory"

	// StagingFile writes the fetched batch to <data_dir>/<collection>_messages.json.
	StagingFile StagingMode = "file"
)

// StorageBackend selects the vector index implementation.
type StorageBackend string

const (
	// StorageSQLite persists collections in <data_dir>/vectors.db.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps collections in process memory.
	StorageMemory StorageBackend = "memory"
)

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider          AIProvider `toml:"provider"`
	Model             string     `toml:"model"`
	BaseURL           string     `toml:"base_url,omitempty"`
	APIKey            string     `toml:"api_key,omitempty"`
	RequestsPerSecond float64    `toml:"requests_per_second,omitempty"`
}

// CompletionSettings configures the answer-generation provider.
type CompletionSettings struct {
	Provider AIProvider `toml:"provider"`
	Model    string     `toml:"model"`
	BaseURL  string     `toml:"base_url,omitempty"`
	APIKey   string     `toml:"api_key,omitempty"`
}

// RetrievalSettings configures query behaviour.
type RetrievalSettings struct {
	// TopK is the number of nearest neighbours requested from the index.
	TopK int `toml:"top_k"`

	// Threshold is the inclusive minimum similarity for a result.
	Threshold float64 `toml:"threshold"`

	// Collection is the collection queried. Defaults to the first source's collection.
	Collection string `toml:"collection,omitempty"`
}

// SyncSettings configures the sync engine.
type SyncSettings struct {
	// RetryAttempts is the total attempts per embedding/index call.
	RetryAttempts int `toml:"retry_attempts"`

	// RetryBaseDelay is the first backoff delay (Go duration string).
	RetryBaseDelay string `toml:"retry_base_delay"`

	// RetryMaxDelay caps the backoff delay (Go duration string).
	RetryMaxDelay string `toml:"retry_max_delay"`

	// Staging selects the staging store.
	Staging StagingMode `toml:"staging"`
}

// SchedulerSettings configures scheduled syncs.
type SchedulerSettings struct {
	// Interval is the time between scheduled syncs (Go duration string).
	Interval string `toml:"interval"`
}

// StorageSettings configures the vector index.
type StorageSettings struct {
	Backend StorageBackend `toml:"backend"`
}

// CredentialSettings holds platform tokens. Usually supplied through the environment.
type CredentialSettings struct {
	SlackToken  string `toml:"slack_token,omitempty"`
	GitHubToken string `toml:"github_token,omitempty"`

	// SlackAppToken is the app-level token (xapp-) the bot opens its
	// Socket Mode connection with.
	SlackAppToken string `toml:"slack_app_token,omitempty"`
}

// Settings is the complete application configuration.
type Settings struct {
	DataDir     string             `toml:"data_dir,omitempty"`
	Embedding   EmbeddingSettings  `toml:"embedding"`
	Completion  CompletionSettings `toml:"completion"`
	Retrieval   RetrievalSettings  `toml:"retrieval"`
	Sync        SyncSettings       `toml:"sync"`
	Scheduler   SchedulerSettings  `toml:"scheduler"`
	Storage     StorageSettings    `toml:"storage"`
	Credentials CredentialSettings `toml:"credentials"`
	Sources     []Source           `toml:"sources"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:          AIProviderOpenAI,
			Model:             DefaultEmbeddingModel,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Completion: CompletionSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultCompletionModel,
		},
		Retrieval: RetrievalSettings{
			TopK:      DefaultTopK,
			Threshold: DefaultThreshold,
		},
		Sync: SyncSettings{
			RetryAttempts:  DefaultRetryAttempts,
			RetryBaseDelay: DefaultRetryBaseDelay.String(),
			RetryMaxDelay:  DefaultRetryMaxDelay.String(),
			Staging:        StagingMemory,
		},
		Scheduler: SchedulerSettings{
			Interval: DefaultScheduleInterval.String(),
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}

// RetryDelays parses the configured backoff delays.
func (s *Settings) RetryDelays() (base, maxDelay time.Duration, err error) {
	base, err = parseDuration("sync.retry_base_delay", s.Sync.RetryBaseDelay, DefaultRetryBaseDelay)
	if err != nil {
		return 0, 0, err
	}
	maxDelay, err = parseDuration("sync.retry_max_delay", s.Sync.RetryMaxDelay, DefaultRetryMaxDelay)
	if err != nil {
		return 0, 0, err
	}
	return base, maxDelay, nil
}

// ScheduleInterval parses the configured scheduler interval.
func (s *Settings) ScheduleInterval() (time.Duration, error) {
	return parseDuration("scheduler.interval", s.Scheduler.Interval, DefaultScheduleInterval)
}

// Source returns the configured source with the given name.
func (s *Settings) Source(name string) (*Source, error) {
	for i := range s.Sources {
		if s.Sources[i].Name == name {
			return &s.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("source %q: %w", name, ErrNotFound)
}

// QueryCollection returns the collection used for retrieval.
func (s *Settings) QueryCollection() string {
	if s.Retrieval.Collection != "" {
		return s.Retrieval.Collection
	}
	if len(s.Sources) > 0 {
		return s.Sources[0].CollectionName()
	}
	return string(SourceSlack)
}

// Validate checks the settings needed to sync and retrieve.
// Completion settings are checked separately by ValidateCompletion.
func (s *Settings) Validate() error {
	if !s.Embedding.Provider.IsValid() {
		return NewConfigurationError("embedding.provider",
			fmt.Sprintf("unknown provider %q", s.Embedding.Provider))
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return NewConfigurationError("embedding.api_key", "OPENAI_API_KEY is not set")
	}
	if s.Retrieval.TopK <= 0 {
		return NewConfigurationError("retrieval.top_k", "must be positive")
	}
	if s.Retrieval.Threshold < 0 || s.Retrieval.Threshold > 1 {
		return NewConfigurationError("retrieval.threshold", "must be within [0, 1]")
	}
	if s.Sync.RetryAttempts <= 0 {
		return NewConfigurationError("sync.retry_attempts", "must be positive")
	}
	switch s.Sync.Staging {
	case StagingMemory, StagingFile:
	default:
		return NewConfigurationError("sync.staging", fmt.Sprintf("unknown staging mode %q", s.Sync.Staging))
	}
	switch s.Storage.Backend {
	case StorageSQLite, StorageMemory:
	default:
		return NewConfigurationError("storage.backend", fmt.Sprintf("unknown backend %q", s.Storage.Backend))
	}
	if _, _, err := s.RetryDelays(); err != nil {
		return err
	}
	if _, err := s.ScheduleInterval(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(s.Sources))
	for i := range s.Sources {
		src := &s.Sources[i]
		if err := src.Validate(); err != nil {
			return err
		}
		if seen[src.Name] {
			return NewConfigurationError("sources."+src.Name, "duplicate source name")
		}
		seen[src.Name] = true

		switch src.Type {
		case SourceSlack:
			if s.Credentials.SlackToken == "" {
				return NewConfigurationError("credentials.slack_token", "SLACK_TOKEN is not set")
			}
		case SourceGitHub:
			if s.Credentials.GitHubToken == "" {
				return NewConfigurationError("credentials.github_token", "GITHUB_TOKEN is not set")
			}
		}
	}
	return nil
}

// ValidateCompletion checks the settings needed for answer generation.
func (s *Settings) ValidateCompletion() error {
	if !s.Completion.Provider.IsValid() {
		return NewConfigurationError("completion.provider",
			fmt.Sprintf("unknown provider %q", s.Completion.Provider))
	}
	if s.Completion.Provider.RequiresAPIKey() && s.Completion.APIKey == "" {
		return NewConfigurationError("completion.api_key", "OPENAI_API_KEY is not set")
	}
	return nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, NewConfigurationError(field, fmt.Sprintf("invalid duration %q", value))
	}
	if d <= 0 {
		return 0, NewConfigurationError(field, "must be positive")
	}
	return d, nil
}
