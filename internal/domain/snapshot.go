package domain

import "time"

// Snapshot is the last refresh outcome, kept for re-rendering without a
// refetch. On a failed mandatory fetch the previous values survive and only
// LastError is set.
type Snapshot struct {
	FetchedAt     time.Time
	Info          *AccountInfo
	Usage         *UsageStats
	Period        *Period
	LastError     string
	RingSignature string
}

func (s Snapshot) HasData() bool {
	return s.Info != nil
}
