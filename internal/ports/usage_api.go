package ports

import (
	"context"

	"github.com/bnema/packybar/internal/domain"
)

// UsageAPI is the read-only billing backend. AccountInfo is mandatory for a
// refresh cycle; the other two are best-effort and return (nil, nil) rather
// than an error wherever the backend cannot serve them.
type UsageAPI interface {
	AccountInfo(ctx context.Context) (domain.AccountInfo, error)
	UsageStats(ctx context.Context) (*domain.UsageStats, error)
	SubscriptionPeriod(ctx context.Context) (*domain.Period, error)
}
