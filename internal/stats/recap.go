package stats

import (
	"fmt"
	"time"
)

// Recap is the reporting view of a finalized day.
type Recap struct {
	DayKey            string
	Online            time.Duration
	Offline           time.Duration
	ToOnline          int
	ToOffline         int
	MeanLoad          float64
	PeakHourlyAverage float64
	Samples           int64
	Hourly            HourlyDataset
}

// NewRecap summarizes a record. The record is not retained.
func NewRecap(s *DailyStats) Recap {
	return Recap{
		DayKey:            s.DayKey,
		Online:            time.Duration(s.OnlineSeconds) * time.Second,
		Offline:           time.Duration(s.OfflineSeconds) * time.Second,
		ToOnline:          s.TransitionCounts.ToOnline,
		ToOffline:         s.TransitionCounts.ToOffline,
		MeanLoad:          s.MeanLoad(),
		PeakHourlyAverage: s.PeakHourlyAverage(),
		Samples:           s.PlayerSampleTotal,
		Hourly:            s.HourlyDataset(),
	}
}

// Availability returns the online share of tracked time in percent, or 0
// when no time has been tracked.
func (r Recap) Availability() float64 {
	total := r.Online + r.Offline
	if total <= 0 {
		return 0
	}
	return float64(r.Online) / float64(total) * 100
}

// FormatClock renders d as HH:MM:SS, truncated to whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
