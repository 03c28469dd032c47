package driving

import "github.com/custodia-labs/naiverag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults,
	// with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Set persists a single dotted key such as "chunking.size".
	Set(key, value string) error

	// Validate checks the effective settings.
	Validate() error

	// RequireCredential returns domain.ErrMissingCredential when no API key
	// is available.
	RequireCredential() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns the location of the backing config file.
	ConfigPath() string
}
