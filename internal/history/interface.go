package history

import (
	"context"
	"time"

	"codeberg.org/mutker/mcwatch/internal/stats"
)

// Archive stores finalized days.
type Archive interface {
	// Record stores a finalized day. Recording the same day again replaces
	// the earlier entry.
	Record(ctx context.Context, snapshot *stats.DailyStats) error
	// Days returns up to limit archived days, newest first.
	Days(ctx context.Context, limit int) ([]Day, error)
	Close() error
}

// Day is one archived daily record.
type Day struct {
	DayKey      string
	FinalizedAt time.Time
	Stats       *stats.DailyStats
}

// Recap summarizes the archived day.
func (d Day) Recap() stats.Recap {
	return stats.NewRecap(d.Stats)
}
