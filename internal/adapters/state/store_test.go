package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/packybar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptySnapshot(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "state.toml"))

	snapshot, err := store.Load()
	require.NoError(t, err)
	assert.False(t, snapshot.HasData())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "state.toml"))

	balance := 3.5
	calls := 12
	snapshot := domain.Snapshot{
		FetchedAt: time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC),
		Info: &domain.AccountInfo{
			DailyBudget:   100,
			DailySpent:    25,
			MonthlyBudget: 200,
			MonthlySpent:  50,
			Balance:       &balance,
			PlanExpiresAt: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		Usage: &domain.UsageStats{
			TodayCalls: &calls,
			Trend: []domain.TrendPoint{
				{Date: "2025-03-02", Calls: 10},
				{Date: "2025-03-03", Calls: 12},
			},
		},
		Period: &domain.Period{
			Start: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		RingSignature: "p25-c0-threshold-r0-l",
	}

	require.NoError(t, store.Save(snapshot))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded.Info)
	assert.InDelta(t, 25, loaded.Info.DailySpent, 1e-9)
	require.NotNil(t, loaded.Info.Balance)
	assert.InDelta(t, 3.5, *loaded.Info.Balance, 1e-9)
	require.NotNil(t, loaded.Usage)
	assert.Equal(t, 12, *loaded.Usage.TodayCalls)
	assert.Len(t, loaded.Usage.Trend, 2)
	require.NotNil(t, loaded.Period)
	assert.True(t, loaded.Period.Start.Equal(snapshot.Period.Start))
	assert.Equal(t, snapshot.RingSignature, loaded.RingSignature)
	assert.True(t, loaded.FetchedAt.Equal(snapshot.FetchedAt))
}

func TestLoadCorruptFileReturnsEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o600))

	snapshot, err := NewStoreAt(path).Load()
	require.NoError(t, err)
	assert.False(t, snapshot.HasData())
}

func TestLoadRejectsUnknownSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 99\nlast_error = \"stale\"\n"), 0o600))

	snapshot, err := NewStoreAt(path).Load()
	require.NoError(t, err)
	assert.Empty(t, snapshot.LastError)
}
