package ports

import "github.com/bnema/packybar/internal/domain"

type SettingsStore interface {
	Load() (domain.Settings, error)
	Save(settings domain.Settings) error
}
