package domain

import "time"

// Cycle is the billing period used for day counts and renewal warnings.
type Cycle struct {
	Start time.Time
	End   time.Time
}

// RenewalState classifies how close the cycle end is.
type RenewalState int

const (
	RenewalOK RenewalState = iota
	RenewalSoon
	RenewalExpired
)

// renewalWarnDays is the inclusive days-left threshold below which the
// renewal warning becomes active.
const renewalWarnDays = 3

// ResolveCycle picks the billing cycle, in priority order: the explicit
// subscription period, then the plan-expiry timestamp with the cycle start
// pinned to day 1 of the expiry month, then the current calendar month.
func ResolveCycle(period *Period, planExpiry, now time.Time) Cycle {
	if period != nil && !period.IsZero() {
		return Cycle{Start: period.Start, End: period.End}
	}

	if !planExpiry.IsZero() {
		start := time.Date(planExpiry.Year(), planExpiry.Month(), 1, 0, 0, 0, 0, planExpiry.Location())
		return Cycle{Start: start, End: planExpiry}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Cycle{Start: start, End: start.AddDate(0, 1, -1)}
}

// DaysLeft counts the days remaining in the cycle, inclusive of today.
// Zero or negative means the cycle has ended.
func (c Cycle) DaysLeft(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := c.End.In(now.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, now.Location())

	return int(endDay.Sub(today).Hours()/24) + 1
}

// TotalDays counts the cycle length in days, inclusive of both endpoints.
func (c Cycle) TotalDays() int {
	if c.Start.IsZero() || c.End.IsZero() {
		return 0
	}

	start := time.Date(c.Start.Year(), c.Start.Month(), c.Start.Day(), 0, 0, 0, 0, c.Start.Location())
	end := time.Date(c.End.Year(), c.End.Month(), c.End.Day(), 0, 0, 0, 0, c.Start.Location())

	return int(end.Sub(start).Hours()/24) + 1
}

// Renewal returns the warning state for the given instant.
func (c Cycle) Renewal(now time.Time) RenewalState {
	days := c.DaysLeft(now)
	switch {
	case days <= 0:
		return RenewalExpired
	case days <= renewalWarnDays:
		return RenewalSoon
	default:
		return RenewalOK
	}
}
