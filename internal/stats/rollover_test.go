package stats_test

import (
	"io"
	"testing"
	"time"

	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededDay(t *testing.T, store *memoryStore) *stats.Aggregator {
	t.Helper()

	agg, _ := newAggregator(store)
	agg.RecordSample(stats.Sample{Online: true, Load: 40}, day1, 12)
	agg.RecordSample(stats.Sample{Online: true, Load: 44}, day1.Add(30*time.Second), 12)
	agg.RecordSample(stats.Sample{Online: true, Load: 10}, day1.Add(time.Hour), 13)
	agg.SetPublicationHandle("msg-1")
	agg.MarkPublished(13)
	return agg
}

func TestRolloverFinalizesPriorDay(t *testing.T) {
	store := &memoryStore{}
	agg := seededDay(t, store)

	r := agg.RolloverIfNeeded("2024-01-02")

	require.True(t, r.RolledOver)
	require.NotNil(t, r.Finalized)
	assert.Equal(t, "2024-01-01", r.Finalized.DayKey)
	assert.InDelta(t, 42.0, stats.NewRecap(r.Finalized).PeakHourlyAverage, 1e-9)

	assert.Equal(t, "2024-01-02", r.Stats.DayKey)
	assert.Empty(t, r.Stats.HourlyBuckets)
	assert.Nil(t, r.Stats.LastPublishedHour)
	assert.Nil(t, r.Stats.LastKnownState)
	assert.Nil(t, r.Stats.LastSampleTimestamp)
	assert.Equal(t, stats.TransitionCounts{}, r.Stats.TransitionCounts)
	assert.Zero(t, r.Stats.OnlineSeconds+r.Stats.OfflineSeconds)
	assert.Equal(t, "msg-1", r.Stats.CarryoverPublicationHandle)

	assert.Equal(t, "2024-01-02", store.last().DayKey, "new record is persisted")
}

func TestRolloverIsIdempotentPerDate(t *testing.T) {
	store := &memoryStore{}
	agg := seededDay(t, store)

	first := agg.RolloverIfNeeded("2024-01-02")
	saves := len(store.saved)
	second := agg.RolloverIfNeeded("2024-01-02")

	assert.True(t, first.RolledOver)
	assert.False(t, second.RolledOver)
	assert.Nil(t, second.Finalized)
	assert.Equal(t, "2024-01-02", second.Stats.DayKey)
	assert.Len(t, store.saved, saves, "no-op does not persist")
}

func TestSameDayIsNoop(t *testing.T) {
	store := &memoryStore{}
	agg := seededDay(t, store)
	saves := len(store.saved)

	r := agg.RolloverIfNeeded("2024-01-01")

	assert.False(t, r.RolledOver)
	assert.Nil(t, r.Finalized)
	assert.Equal(t, int64(3), r.Stats.PlayerSampleTotal)
	assert.Len(t, store.saved, saves)
}

func TestFinalizedSnapshotIsImmutable(t *testing.T) {
	agg := seededDay(t, &memoryStore{})

	r := agg.RolloverIfNeeded("2024-01-02")
	next := day1.Add(24 * time.Hour)
	agg.RecordSample(stats.Sample{Online: true, Load: 100}, next, 12)
	agg.MarkPublished(12)

	assert.Equal(t, stats.HourBucket{SampleCount: 2, PlayerSum: 84}, r.Finalized.HourlyBuckets[12])
	assert.Equal(t, int64(3), r.Finalized.PlayerSampleTotal)
	require.NotNil(t, r.Finalized.LastPublishedHour)
	assert.Equal(t, 13, *r.Finalized.LastPublishedHour)
}

func TestRestartOnNewDayRollsOverPersistedRecord(t *testing.T) {
	persisted := stats.NewDailyStats("2024-01-01")
	persisted.HourlyBuckets[23] = stats.HourBucket{SampleCount: 1, PlayerSum: 7}
	persisted.PlayerSumTotal = 7
	persisted.PlayerSampleTotal = 1

	store := &memoryStore{initial: persisted}
	agg := stats.NewAggregator(store, "2024-01-02", logger.New(io.Discard))

	// Load returns the persisted day as-is; the first tick finalizes it.
	assert.Equal(t, "2024-01-01", agg.Stats().DayKey)
}
