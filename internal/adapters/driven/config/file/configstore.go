package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file name inside the config directory.
const ConfigFile = "config.toml"

// ConfigStore is a TOML file implementation of driven.ConfigStore.
type ConfigStore struct {
	mu        sync.Mutex
	configDir string
	filePath  string
	getenv    func(string) string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.threadrag.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".threadrag")
	}

	return &ConfigStore{
		configDir: configDir,
		filePath:  filepath.Join(configDir, ConfigFile),
		getenv:    os.Getenv,
	}, nil
}

// NewConfigStoreAt creates a config store for an explicit file path.
func NewConfigStoreAt(path string) *ConfigStore {
	return &ConfigStore{
		configDir: filepath.Dir(path),
		filePath:  path,
		getenv:    os.Getenv,
	}
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads the settings file over the defaults and applies the environment.
func (s *ConfigStore) Load() (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := loadDotEnv(s.configDir); err != nil {
		return nil, err
	}

	settings := domain.DefaultSettings()
	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file yet - defaults plus environment
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", s.filePath, err)
	default:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, s.filePath, err)
		}
	}

	ApplyEnv(&settings, s.getenv)

	if settings.DataDir == "" {
		settings.DataDir = filepath.Join(s.configDir, "data")
	}
	return &settings, nil
}

// Save writes the settings to the TOML file with restricted permissions.
// Credentials are never written; they belong in the environment.
func (s *ConfigStore) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *settings
	out.Credentials = domain.CredentialSettings{}
	out.Embedding.APIKey = ""
	out.Completion.APIKey = ""

	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}
