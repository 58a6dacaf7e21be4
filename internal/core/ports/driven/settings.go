package driven

import "github.com/custodia-labs/railkm/internal/core/domain"

// SettingsStore persists application settings.
// Implementations handle the file format and environment overrides.
type SettingsStore interface {
	// Load reads settings, applying defaults for missing values.
	Load() (domain.Settings, error)

	// Save writes settings to storage. Secrets are never written.
	Save(settings domain.Settings) error

	// Path returns the settings file path.
	Path() string
}
