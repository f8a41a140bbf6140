package domain

import "time"

// AccountInfo is the billing snapshot returned by the users/info endpoint.
// It is replaced wholesale on every successful refresh and never persisted
// beyond the state snapshot.
type AccountInfo struct {
	DailyBudget   float64
	DailySpent    float64
	MonthlyBudget float64
	MonthlySpent  float64
	Balance       *float64
	PlanExpiresAt time.Time
}

// PercentUsed returns spent/budget as a percentage clamped to [0, 100].
// A non-positive budget yields 0.
func PercentUsed(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}

	pct := spent / budget * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Remaining returns budget - spent, floored at zero.
func Remaining(spent, budget float64) float64 {
	remaining := budget - spent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RoundHalfAway rounds to the nearest integer with ties away from zero.
func RoundHalfAway(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
