package domain

// UsageStats carries the optional call-count statistics, available only for
// signed-token credentials.
type UsageStats struct {
	TodayCalls *int
	Trend      []TrendPoint
}

// TrendPoint is one day of the 30-day call trend.
type TrendPoint struct {
	Date  string
	Calls int
}

// TrendSummary aggregates the trend into a total and a per-day average
// (ties rounded away from zero). ok is false when no trend data exists.
func (u UsageStats) TrendSummary() (total, average int, ok bool) {
	if len(u.Trend) == 0 {
		return 0, 0, false
	}

	for _, point := range u.Trend {
		total += point.Calls
	}

	return total, RoundHalfAway(float64(total) / float64(len(u.Trend))), true
}
