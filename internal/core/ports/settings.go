package ports

import "go.trai.ch/lingo/internal/core/domain"

// SettingsLoader reads user-level defaults.
type SettingsLoader interface {
	Load() (domain.Settings, error)
}
