package stats

import (
	"math"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
)

// Aggregator owns the live DailyStats record. It is not safe for concurrent
// use; the poll loop calls it from a single goroutine, one tick at a time.
type Aggregator struct {
	stats *DailyStats
	store Store
	log   logger.Logger
}

// NewAggregator rehydrates the live record from store, or starts a fresh
// one dated dayKey.
func NewAggregator(store Store, dayKey string, log logger.Logger) *Aggregator {
	return &Aggregator{
		stats: store.Load(dayKey),
		store: store,
		log:   log,
	}
}

// Stats returns a snapshot of the live record.
func (a *Aggregator) Stats() *DailyStats {
	return a.stats.Clone()
}

// RecordSample folds one sample observed at now, in local hour hourKey, into
// the live record, persists it and returns a snapshot of the result.
func (a *Aggregator) RecordSample(sample Sample, now time.Time, hourKey int) *DailyStats {
	a.stats.record(sample, now, hourKey)
	a.persist()
	return a.stats.Clone()
}

func (s *DailyStats) record(sample Sample, now time.Time, hourKey int) {
	// The elapsed interval belongs to the state in effect during it.
	if s.LastSampleTimestamp != nil {
		delta := int64(math.Round(now.Sub(*s.LastSampleTimestamp).Seconds()))
		delta = max(0, delta)
		if s.LastKnownState != nil && *s.LastKnownState {
			s.OnlineSeconds += delta
		} else {
			s.OfflineSeconds += delta
		}
	}
	ts := now
	s.LastSampleTimestamp = &ts

	switch {
	case s.LastKnownState == nil:
		online := sample.Online
		s.LastKnownState = &online
	case sample.Online != *s.LastKnownState:
		if sample.Online {
			s.TransitionCounts.ToOnline++
		} else {
			s.TransitionCounts.ToOffline++
		}
		online := sample.Online
		s.LastKnownState = &online
	}

	load := int64(0)
	if sample.Online {
		load = int64(sample.Load)
	}

	if s.HourlyBuckets == nil {
		s.HourlyBuckets = make(map[int]HourBucket)
	}
	bucket := s.HourlyBuckets[hourKey]
	bucket.PlayerSum += load
	bucket.SampleCount++
	s.HourlyBuckets[hourKey] = bucket

	s.PlayerSumTotal += load
	s.PlayerSampleTotal++
}

func (a *Aggregator) persist() {
	if err := a.store.Save(a.stats); err != nil {
		// The in-memory record stays authoritative; the next successful
		// save carries every mutation since.
		var coded errors.Error
		if !errors.As(err, &coded) {
			coded = errors.New().Wrap(errors.ErrPersistenceWrite, err)
		}
		a.log.ErrorWithCode(coded).
			Str("day", a.stats.DayKey).
			Msg("Failed to persist stats")
	}
}
