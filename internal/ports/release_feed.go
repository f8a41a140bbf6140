package ports

import (
	"context"

	"github.com/bnema/packybar/internal/domain"
)

// ReleaseFeed reads release metadata and downloads artifacts.
type ReleaseFeed interface {
	Latest(ctx context.Context) (domain.Release, error)
	Download(ctx context.Context, url, destDir string) (string, error)
}
