package domain

import "time"

// Period is the current billing cycle reported by the subscriptions endpoint.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}
