package domain

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentUsed(t *testing.T) {
	tests := []struct {
		name   string
		spent  float64
		budget float64
		want   float64
	}{
		{name: "quarter", spent: 25, budget: 100, want: 25},
		{name: "over budget clamps to 100", spent: 150, budget: 100, want: 100},
		{name: "zero budget", spent: 50, budget: 0, want: 0},
		{name: "negative budget", spent: 50, budget: -10, want: 0},
		{name: "negative spent clamps to 0", spent: -5, budget: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentUsed(tt.spent, tt.budget), 1e-9)
		})
	}
}

func TestRemaining(t *testing.T) {
	assert.InDelta(t, 75, Remaining(25, 100), 1e-9)
	assert.InDelta(t, 0, Remaining(150, 100), 1e-9)
	assert.InDelta(t, 0, Remaining(0, 0), 1e-9)
}

func TestRoundHalfAway(t *testing.T) {
	assert.Equal(t, 3, RoundHalfAway(2.5))
	assert.Equal(t, -3, RoundHalfAway(-2.5))
	assert.Equal(t, 0, RoundHalfAway(0.49))
	assert.Equal(t, 0, RoundHalfAway(-0.49))
	assert.Equal(t, 2, RoundHalfAway(2.0))
}

func TestTrendSummary(t *testing.T) {
	stats := UsageStats{Trend: []TrendPoint{
		{Date: "2025-03-01", Calls: 10},
		{Date: "2025-03-02", Calls: 15},
	}}

	total, average, ok := stats.TrendSummary()
	require.True(t, ok)
	assert.Equal(t, 25, total)
	assert.Equal(t, 13, average) // 12.5 rounds away from zero

	_, _, ok = UsageStats{}.TrendSummary()
	assert.False(t, ok)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want Version
	}{
		{raw: "v1.2.0", want: Version{1, 2, 0}},
		{raw: "1.1.9", want: Version{1, 1, 9}},
		{raw: "2", want: Version{2, 0, 0}},
		{raw: "abc", want: Version{0, 0, 0}},
		{raw: "release-1.2.3-beta4", want: Version{1, 2, 3}},
		{raw: "", want: Version{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVersion(tt.raw))
		})
	}
}

func TestVersionNewerThan(t *testing.T) {
	assert.True(t, ParseVersion("v1.2.0").NewerThan(ParseVersion("1.1.9")))
	assert.True(t, ParseVersion("2").NewerThan(ParseVersion("1.9.9")))
	assert.False(t, ParseVersion("v0.9.0").NewerThan(ParseVersion("1.0.0")))
	assert.False(t, ParseVersion("1.0.0").NewerThan(ParseVersion("1.0.0")))
}

func signedToken(t *testing.T, payload string) Credential {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return Credential(header + "." + body + ".sig")
}

func TestCredentialIsSignedToken(t *testing.T) {
	assert.True(t, signedToken(t, `{"sub":"u-1"}`).IsSignedToken())
	assert.False(t, Credential("sk-opaque-api-key").IsSignedToken())
	assert.False(t, Credential("only.two").IsSignedToken())
	assert.False(t, Credential("!!!.???.sig").IsSignedToken())
	assert.False(t, Credential("").IsSignedToken())
}

func TestCredentialUserID(t *testing.T) {
	assert.Equal(t, "u-42", signedToken(t, `{"user_id":"u-42","sub":"fallback"}`).UserID())
	assert.Equal(t, "fallback", signedToken(t, `{"sub":"fallback"}`).UserID())
	assert.Empty(t, Credential("sk-opaque").UserID())
}

func TestCredentialExpiresAt(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, `{"sub":"u-1","exp":1748779200}`)

	assert.True(t, token.ExpiresAt().Equal(expiry))
	assert.True(t, signedToken(t, `{"sub":"u-1"}`).ExpiresAt().IsZero())
	assert.True(t, Credential("sk-opaque").ExpiresAt().IsZero())
}

func TestResolveCycleFromPeriod(t *testing.T) {
	period := &Period{
		Start: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	cycle := ResolveCycle(period, time.Time{}, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, period.Start, cycle.Start)
	assert.Equal(t, period.End, cycle.End)
}

func TestResolveCycleFromPlanExpiry(t *testing.T) {
	expiry := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	cycle := ResolveCycle(nil, expiry, now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), cycle.Start)
	assert.Equal(t, expiry, cycle.End)

	assert.Equal(t, 3, cycle.DaysLeft(now))
	assert.Equal(t, RenewalSoon, cycle.Renewal(now))
}

func TestResolveCycleCalendarFallback(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	cycle := ResolveCycle(nil, time.Time{}, now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), cycle.Start)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), cycle.End)
	assert.Equal(t, 31, cycle.TotalDays())
}

func TestCycleRenewalExpired(t *testing.T) {
	cycle := Cycle{
		Start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, RenewalExpired, cycle.Renewal(now))
	assert.LessOrEqual(t, cycle.DaysLeft(now), 0)
}
