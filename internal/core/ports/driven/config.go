package driven

import "github.com/custodia-labs/threadrag/internal/core/domain"

// ConfigStore loads and persists application settings.
type ConfigStore interface {
	// Load returns the settings with defaults applied and environment
	// overrides resolved. A missing file yields the defaults.
	Load() (*domain.Settings, error)

	// Save writes the settings to the backing file.
	Save(settings *domain.Settings) error

	// Path returns the location of the backing file.
	Path() string
}
