package stats

// Rollover is the outcome of a day boundary check.
type Rollover struct {
	RolledOver bool
	// Finalized is a deep copy of the prior day, nil without rollover.
	Finalized *DailyStats
	// Stats is a snapshot of the live record after the check.
	Stats *DailyStats
}

// RolloverIfNeeded finalizes the live record when currentDayKey differs from
// its day and starts a fresh record for currentDayKey. Calling it again with
// the same key is a no-op.
func (a *Aggregator) RolloverIfNeeded(currentDayKey string) Rollover {
	r := rollover(a.stats, currentDayKey)
	if !r.RolledOver {
		r.Stats = a.stats.Clone()
		return r
	}

	a.log.Info().
		Str("from", r.Finalized.DayKey).
		Str("to", currentDayKey).
		Int64("samples", r.Finalized.PlayerSampleTotal).
		Msg("Day rolled over")

	a.stats = r.Stats
	a.persist()
	r.Stats = a.stats.Clone()
	return r
}

func rollover(stats *DailyStats, currentDayKey string) Rollover {
	if stats.DayKey == currentDayKey {
		return Rollover{Stats: stats}
	}

	next := NewDailyStats(currentDayKey)
	next.CarryoverPublicationHandle = stats.CarryoverPublicationHandle

	return Rollover{
		RolledOver: true,
		Finalized:  stats.Clone(),
		Stats:      next,
	}
}
