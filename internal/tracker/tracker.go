// Package tracker drives the daily statistics from one status sample per
// poll tick.
package tracker

import (
	"context"
	"time"

	"codeberg.org/mutker/mcwatch/internal/clock"
	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
)

// Sink receives the tracker's reports.
type Sink interface {
	// PublishHourly publishes the hourly dataset, updating the artifact
	// behind handle when there is one, and returns the handle to keep.
	PublishHourly(ctx context.Context, dataset stats.HourlyDataset, dayKey, handle string) (string, error)
	PublishDailyRecap(ctx context.Context, recap stats.Recap) error
}

// Archive keeps finalized days.
type Archive interface {
	Record(ctx context.Context, snapshot *stats.DailyStats) error
}

type TickResult struct {
	DayKey     string
	Hour       int
	RolledOver bool
	// Finalized is the prior day when RolledOver is set.
	Finalized *stats.DailyStats
	Published bool
	Stats     *stats.DailyStats
}

// Tracker owns the live record. Tick must not be called concurrently.
type Tracker struct {
	agg      *stats.Aggregator
	calendar *clock.Calendar
	sink     Sink
	archive  Archive
	log      logger.Logger
}

// New returns a tracker over agg. archive may be nil.
func New(agg *stats.Aggregator, calendar *clock.Calendar, sink Sink, archive Archive, log logger.Logger) *Tracker {
	return &Tracker{
		agg:      agg,
		calendar: calendar,
		sink:     sink,
		archive:  archive,
		log:      log,
	}
}

// Stats returns a snapshot of the live record.
func (t *Tracker) Stats() *stats.DailyStats {
	return t.agg.Stats()
}

// Tick applies one sample observed at now. Only an invalid sample is an
// error; in that case nothing is recorded. Sink and archive failures are
// logged and retried on later ticks where that makes sense.
func (t *Tracker) Tick(ctx context.Context, sample stats.Sample, now time.Time) (TickResult, error) {
	if err := sample.Validate(); err != nil {
		return TickResult{}, err
	}

	result := TickResult{
		DayKey: t.calendar.DayKey(now),
		Hour:   t.calendar.Hour(now),
	}

	// the prior day is reported before the fresh record replaces it on disk,
	// so a crash in between replays the rollover on restart
	if live := t.agg.Stats(); live.DayKey != result.DayKey {
		t.finalize(ctx, live)
	}
	r := t.agg.RolloverIfNeeded(result.DayKey)
	if r.RolledOver {
		result.RolledOver = true
		result.Finalized = r.Finalized
	}

	snapshot := t.agg.RecordSample(sample, now, result.Hour)

	if t.agg.ShouldPublish(result.Hour) {
		result.Published = t.publishHourly(ctx, result.DayKey, result.Hour, snapshot.CarryoverPublicationHandle)
	}

	result.Stats = t.agg.Stats()
	return result, nil
}

func (t *Tracker) finalize(ctx context.Context, day *stats.DailyStats) {
	if err := t.sink.PublishDailyRecap(ctx, stats.NewRecap(day)); err != nil {
		t.log.ErrorWithCode(coded(errors.ErrPublishFailed, err)).
			Str("day", day.DayKey).
			Msg("Failed to publish daily recap")
	}

	if t.archive == nil {
		return
	}
	if err := t.archive.Record(ctx, day); err != nil {
		t.log.ErrorWithCode(coded(errors.ErrArchiveFailed, err)).
			Str("day", day.DayKey).
			Msg("Failed to archive daily stats")
	}
}

func (t *Tracker) publishHourly(ctx context.Context, dayKey string, hour int, handle string) bool {
	newHandle, err := t.sink.PublishHourly(ctx, t.agg.HourlyDataset(), dayKey, handle)
	if err != nil {
		// the gate stays open, so the next tick retries
		t.log.WarnWithCode(coded(errors.ErrPublishFailed, err)).
			Str("day", dayKey).
			Int("hour", hour).
			Msg("Failed to publish hourly report")
		return false
	}

	t.agg.SetPublicationHandle(newHandle)
	t.agg.MarkPublished(hour)

	t.log.Debug().
		Str("day", dayKey).
		Int("hour", hour).
		Str("handle", newHandle).
		Msg("Hourly report published")

	return true
}

func coded(code errors.ErrorCode, err error) errors.Error {
	var c errors.Error
	if errors.As(err, &c) {
		return c
	}
	return errors.New().Wrap(code, err)
}
