package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/packybar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeAPI struct {
	info      domain.AccountInfo
	infoErr   error
	infoCalls int

	usage     *domain.UsageStats
	usageErr  error
	period    *domain.Period
	periodErr error
}

func (a *fakeAPI) AccountInfo(context.Context) (domain.AccountInfo, error) {
	a.infoCalls++
	return a.info, a.infoErr
}

func (a *fakeAPI) UsageStats(context.Context) (*domain.UsageStats, error) {
	return a.usage, a.usageErr
}

func (a *fakeAPI) SubscriptionPeriod(context.Context) (*domain.Period, error) {
	return a.period, a.periodErr
}

type fakeStateStore struct {
	snapshot domain.Snapshot
	saves    int
}

func (s *fakeStateStore) Load() (domain.Snapshot, error) {
	return s.snapshot, nil
}

func (s *fakeStateStore) Save(snapshot domain.Snapshot) error {
	s.snapshot = snapshot
	s.saves++
	return nil
}

func TestRefreshSuccessCachesOutcome(t *testing.T) {
	calls := 7
	api := &fakeAPI{
		info:  domain.AccountInfo{DailyBudget: 100, DailySpent: 25},
		usage: &domain.UsageStats{TodayCalls: &calls},
		period: &domain.Period{
			Start: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}
	store := &fakeStateStore{}
	clock := &fakeClock{now: time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)}

	refresher := NewRefresher(api, store, clock)
	require.NoError(t, refresher.Refresh(context.Background(), true))

	snapshot, phase := refresher.Snapshot()
	assert.Equal(t, PhaseOK, phase)
	require.NotNil(t, snapshot.Info)
	assert.InDelta(t, 25, snapshot.Info.DailySpent, 1e-9)
	require.NotNil(t, snapshot.Usage)
	assert.Equal(t, 7, *snapshot.Usage.TodayCalls)
	require.NotNil(t, snapshot.Period)
	assert.Empty(t, snapshot.LastError)
	assert.Equal(t, 1, store.saves)
}

func TestRefreshDebouncesNonForcedCalls(t *testing.T) {
	api := &fakeAPI{info: domain.AccountInfo{DailyBudget: 100}}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	refresher := NewRefresher(api, nil, clock)

	require.NoError(t, refresher.Refresh(context.Background(), false))
	require.NoError(t, refresher.Refresh(context.Background(), false))
	assert.Equal(t, 1, api.infoCalls)

	// A forced call ignores the debounce window.
	require.NoError(t, refresher.Refresh(context.Background(), true))
	assert.Equal(t, 2, api.infoCalls)

	clock.Advance(3 * time.Second)
	require.NoError(t, refresher.Refresh(context.Background(), false))
	assert.Equal(t, 3, api.infoCalls)
}

func TestRefreshErrorRetainsPreviousValues(t *testing.T) {
	api := &fakeAPI{info: domain.AccountInfo{DailyBudget: 100, DailySpent: 40}}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	refresher := NewRefresher(api, &fakeStateStore{}, clock)

	require.NoError(t, refresher.Refresh(context.Background(), true))

	api.infoErr = domain.NewStatusError(502)
	err := refresher.Refresh(context.Background(), true)
	require.Error(t, err)

	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 502, statusErr.Status)

	snapshot, phase := refresher.Snapshot()
	assert.Equal(t, PhaseError, phase)
	require.NotNil(t, snapshot.Info)
	assert.InDelta(t, 40, snapshot.Info.DailySpent, 1e-9)
	assert.Contains(t, snapshot.LastError, "502")
}

func TestRefreshSwallowsOptionalFetchFailures(t *testing.T) {
	api := &fakeAPI{
		info:      domain.AccountInfo{DailyBudget: 100},
		usageErr:  errors.New("usage backend down"),
		periodErr: errors.New("subscriptions backend down"),
	}
	refresher := NewRefresher(api, nil, &fakeClock{now: time.Unix(1_700_000_000, 0)})

	require.NoError(t, refresher.Refresh(context.Background(), true))

	snapshot, phase := refresher.Snapshot()
	assert.Equal(t, PhaseOK, phase)
	assert.Nil(t, snapshot.Usage)
	assert.Nil(t, snapshot.Period)
}

func TestNewRefresherLoadsCachedSnapshot(t *testing.T) {
	store := &fakeStateStore{snapshot: domain.Snapshot{
		Info:      &domain.AccountInfo{DailyBudget: 100, DailySpent: 10},
		FetchedAt: time.Unix(1_700_000_000, 0),
	}}

	refresher := NewRefresher(&fakeAPI{}, store, &fakeClock{now: time.Unix(1_700_000_100, 0)})

	snapshot, phase := refresher.Snapshot()
	assert.Equal(t, PhaseOK, phase)
	require.NotNil(t, snapshot.Info)
	assert.InDelta(t, 10, snapshot.Info.DailySpent, 1e-9)
}

func TestSetRingSignaturePersists(t *testing.T) {
	store := &fakeStateStore{}
	refresher := NewRefresher(&fakeAPI{}, store, &fakeClock{now: time.Unix(1_700_000_000, 0)})

	refresher.SetRingSignature("p42-c1-threshold-r0-l42")

	snapshot, _ := refresher.Snapshot()
	assert.Equal(t, "p42-c1-threshold-r0-l42", snapshot.RingSignature)
	assert.Equal(t, "p42-c1-threshold-r0-l42", store.snapshot.RingSignature)
}

func TestExpiryTrackerFiresOnce(t *testing.T) {
	tracker := &ExpiryTracker{}
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	token := testSignedToken(t, `{"sub":"u-1","exp":1748779200}`) // 2025-06-01

	assert.True(t, tracker.CrossedExpiry(token, now))
	assert.False(t, tracker.CrossedExpiry(token, now.Add(time.Minute)))

	// A replaced credential resets the one-time flag.
	other := testSignedToken(t, `{"sub":"u-2","exp":1748779200}`)
	assert.True(t, tracker.CrossedExpiry(other, now))
}

func TestExpiryTrackerIgnoresUnexpiredAndOpaque(t *testing.T) {
	tracker := &ExpiryTracker{}
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	token := testSignedToken(t, `{"sub":"u-1","exp":1748779200}`)
	assert.False(t, tracker.CrossedExpiry(token, now))
	assert.False(t, tracker.CrossedExpiry(domain.Credential("sk-opaque"), now))
}
