package stats_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/mcwatch/internal/stats"
	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{3661 * time.Second, "01:01:01"},
		{24 * time.Hour, "24:00:00"},
		{90*time.Minute + 1500*time.Millisecond, "01:30:01"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stats.FormatClock(tt.in), tt.in.String())
	}
}

func TestNewRecap(t *testing.T) {
	s := stats.NewDailyStats("2024-01-01")
	s.HourlyBuckets[8] = stats.HourBucket{SampleCount: 4, PlayerSum: 10}
	s.HourlyBuckets[20] = stats.HourBucket{SampleCount: 2, PlayerSum: 9}
	s.PlayerSumTotal = 19
	s.PlayerSampleTotal = 6
	s.OnlineSeconds = 3 * 3600
	s.OfflineSeconds = 3600
	s.TransitionCounts = stats.TransitionCounts{ToOnline: 2, ToOffline: 3}

	r := stats.NewRecap(s)

	assert.Equal(t, "2024-01-01", r.DayKey)
	assert.Equal(t, 3*time.Hour, r.Online)
	assert.Equal(t, time.Hour, r.Offline)
	assert.Equal(t, 2, r.ToOnline)
	assert.Equal(t, 3, r.ToOffline)
	assert.InDelta(t, 19.0/6.0, r.MeanLoad, 1e-9)
	assert.InDelta(t, 4.5, r.PeakHourlyAverage, 1e-9)
	assert.InDelta(t, 75.0, r.Availability(), 1e-9)
	assert.Equal(t, int64(6), r.Samples)
	assert.Equal(t, 2, r.Hourly.Present())
}

func TestRecapOfEmptyDay(t *testing.T) {
	r := stats.NewRecap(stats.NewDailyStats("2024-01-01"))

	assert.Zero(t, r.MeanLoad)
	assert.Zero(t, r.PeakHourlyAverage)
	assert.Zero(t, r.Availability())
	assert.Zero(t, r.Hourly.Present())
}
