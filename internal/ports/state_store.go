package ports

import "github.com/bnema/packybar/internal/domain"

// StateStore persists the last refresh snapshot so a restarted process can
// render cached data and skip redundant ring redraws.
type StateStore interface {
	Load() (domain.Snapshot, error)
	Save(snapshot domain.Snapshot) error
}
